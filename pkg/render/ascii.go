package render

import (
	"fmt"
	"strings"

	"github.com/l3aro/go-decision-tree/pkg/graph"
)

// RenderASCII renders g as an indented tree, one line per node, starting from
// every node without a predecessor. Branch edges show their label.
func RenderASCII(g *graph.Graph) string {
	var b strings.Builder

	if g.Len() == 0 {
		b.WriteString("(empty)\n")
		return b.String()
	}

	visited := make(map[string]bool, g.Len())
	for _, root := range g.Roots() {
		b.WriteString(fmt.Sprintf("%s %s\n", styleTag(root.Style), root.DisplayLabel()))
		visited[root.ID] = true
		renderChildren(&b, g, root.ID, "", visited)
	}

	// Nodes only reachable through a cycle are listed so nothing is dropped.
	for _, n := range g.Nodes() {
		if !visited[n.ID] {
			b.WriteString(fmt.Sprintf("%s %s\n", styleTag(n.Style), n.DisplayLabel()))
			visited[n.ID] = true
			renderChildren(&b, g, n.ID, "", visited)
		}
	}

	return b.String()
}

// renderChildren writes the successors of id below it.
func renderChildren(b *strings.Builder, g *graph.Graph, id, prefix string, visited map[string]bool) {
	out := g.Outgoing(id)
	for i, e := range out {
		last := i == len(out)-1
		branch, indent := "├── ", "│   "
		if last {
			branch, indent = "└── ", "    "
		}

		n, ok := g.Node(e.To)
		if !ok {
			continue
		}

		edgeLabel := ""
		if e.Label != "" {
			edgeLabel = e.Label + ": "
		}

		if visited[n.ID] {
			b.WriteString(fmt.Sprintf("%s%s%s(see %s)\n", prefix, branch, edgeLabel, n.ID))
			continue
		}
		visited[n.ID] = true

		b.WriteString(fmt.Sprintf("%s%s%s%s %s\n", prefix, branch, edgeLabel, styleTag(n.Style), n.DisplayLabel()))
		renderChildren(b, g, n.ID, prefix+indent, visited)
	}
}

// styleTag returns a short marker for a node style.
func styleTag(style graph.Style) string {
	switch style {
	case graph.StyleCondition:
		return "[?]"
	case graph.StyleTerminal:
		return "[=]"
	default:
		return "[-]"
	}
}
