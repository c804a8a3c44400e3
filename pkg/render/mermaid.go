package render

import (
	"fmt"
	"strings"

	"github.com/l3aro/go-decision-tree/pkg/graph"
)

// RenderMermaid renders g as a Mermaid flowchart.
func RenderMermaid(g *graph.Graph, opts Options) string {
	var b strings.Builder

	direction := "TD"
	if opts.RankDir == RankLR {
		direction = "LR"
	}
	b.WriteString(fmt.Sprintf("graph %s\n", direction))

	if opts.Title != "" {
		b.WriteString(fmt.Sprintf("    %%%% %s\n", opts.Title))
	}

	for _, n := range g.Nodes() {
		label := mermaidEscapeLabel(wrapLabel(n.DisplayLabel(), opts.WrapWidth))
		b.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", n.ID, label))
	}

	for _, e := range g.Edges() {
		label := ""
		if e.Label != "" {
			label = fmt.Sprintf("|%s|", e.Label)
		}
		b.WriteString(fmt.Sprintf("    %s -->%s %s\n", e.From, label, e.To))
	}

	palette := opts.Palette
	if palette == (Palette{}) {
		palette = DefaultPalette()
	}

	b.WriteString("\n")
	styles := []graph.Style{graph.StyleCondition, graph.StyleTerminal, graph.StyleExpression}
	for _, style := range styles {
		b.WriteString(fmt.Sprintf("    classDef %s fill:%s,stroke:#333,color:#000\n", style, palette.Fill(style)))
	}
	for _, style := range styles {
		var ids []string
		for _, n := range g.Nodes() {
			if n.Style == style {
				ids = append(ids, n.ID)
			}
		}
		if len(ids) > 0 {
			b.WriteString(fmt.Sprintf("    class %s %s\n", strings.Join(ids, ","), style))
		}
	}

	return b.String()
}

// mermaidEscapeLabel makes a label safe inside a quoted Mermaid node label.
func mermaidEscapeLabel(s string) string {
	r := strings.NewReplacer(
		`"`, "#quot;",
		"\n", "<br/>",
	)
	return r.Replace(s)
}
