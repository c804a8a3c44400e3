// Package graph defines the decision tree graph produced by the builder and
// consumed by the renderers.
package graph

import (
	"fmt"
	"strconv"
	"strings"
)

// Style selects how a node is drawn.
type Style string

const (
	StyleCondition  Style = "condition"  // if test
	StyleTerminal   Style = "terminal"   // return statement
	StyleExpression Style = "expression" // bare expression statement
)

// Edge labels used for the first edge of each branch.
const (
	LabelTrue  = "True"
	LabelFalse = "False"
)

// idPrefix is the prefix of every node id.
const idPrefix = "node_"

// Node is a single vertex of the graph.
type Node struct {
	ID    string `json:"id" msgpack:"id"`       // Unique identifier, node_<n>
	Label string `json:"label" msgpack:"label"` // Statement or condition text
	Style Style  `json:"style" msgpack:"style"` // Drawing style
	Line  int    `json:"line,omitempty" msgpack:"line,omitempty"`
}

// DisplayLabel returns the text shown for the node. Condition nodes are
// prefixed so they read as decisions.
func (n Node) DisplayLabel() string {
	if n.Style == StyleCondition {
		return "Condition: " + n.Label
	}
	return n.Label
}

// Edge is a directed connection between two nodes.
type Edge struct {
	From  string `json:"from" msgpack:"from"`
	To    string `json:"to" msgpack:"to"`
	Label string `json:"label,omitempty" msgpack:"label,omitempty"` // "True", "False" or empty
}

// Graph holds nodes in creation order and edges in the order they were drawn.
// The zero value is not usable; call New.
type Graph struct {
	nodes []Node
	index map[string]int
	edges []Edge
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		index: make(map[string]int),
	}
}

// AddNode creates a node with the next id and returns it.
func (g *Graph) AddNode(label string, style Style, line int) Node {
	n := Node{
		ID:    idPrefix + strconv.Itoa(len(g.nodes)),
		Label: label,
		Style: style,
		Line:  line,
	}
	g.index[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	return n
}

// AddEdge appends an edge. Edges are not deduplicated.
func (g *Graph) AddEdge(from, to, label string) {
	g.edges = append(g.edges, Edge{From: from, To: to, Label: label})
}

// Node looks up a node by id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Nodes returns the nodes in creation order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns the edges in the order they were drawn.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Outgoing returns the edges leaving the given node.
func (g *Graph) Outgoing(id string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// EdgesLabeled returns the edges carrying the given label.
func (g *Graph) EdgesLabeled(label string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Label == label {
			out = append(out, e)
		}
	}
	return out
}

// Roots returns the nodes without incoming edges, in creation order.
func (g *Graph) Roots() []Node {
	hasIncoming := make(map[string]bool, len(g.edges))
	for _, e := range g.edges {
		hasIncoming[e.To] = true
	}
	var roots []Node
	for _, n := range g.nodes {
		if !hasIncoming[n.ID] {
			roots = append(roots, n)
		}
	}
	return roots
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Validate checks the structural invariants: ids are unique and strictly
// increasing, and every edge joins two known nodes.
func (g *Graph) Validate() error {
	last := -1
	for i, n := range g.nodes {
		seq, err := Seq(n.ID)
		if err != nil {
			return fmt.Errorf("node %d: %w", i, err)
		}
		if seq <= last {
			return fmt.Errorf("node %s: id not increasing (previous %d)", n.ID, last)
		}
		last = seq
	}
	for i, e := range g.edges {
		if _, ok := g.index[e.From]; !ok {
			return fmt.Errorf("edge %d: unknown source %s", i, e.From)
		}
		if _, ok := g.index[e.To]; !ok {
			return fmt.Errorf("edge %d: unknown target %s", i, e.To)
		}
	}
	return nil
}

// Seq returns the numeric sequence part of a node id.
func Seq(id string) (int, error) {
	if !strings.HasPrefix(id, idPrefix) {
		return 0, fmt.Errorf("malformed node id %q", id)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(id, idPrefix))
	if err != nil {
		return 0, fmt.Errorf("malformed node id %q: %w", id, err)
	}
	return n, nil
}

// Document is the serializable form of a graph.
type Document struct {
	Nodes []Node `json:"nodes" msgpack:"nodes"`
	Edges []Edge `json:"edges" msgpack:"edges"`
}

// Document returns the serializable form of the graph.
func (g *Graph) Document() Document {
	return Document{
		Nodes: g.Nodes(),
		Edges: g.Edges(),
	}
}

// FromDocument rebuilds a graph from its serialized form and validates it.
func FromDocument(doc Document) (*Graph, error) {
	g := New()
	for _, n := range doc.Nodes {
		if _, dup := g.index[n.ID]; dup {
			return nil, fmt.Errorf("duplicate node id %s", n.ID)
		}
		g.index[n.ID] = len(g.nodes)
		g.nodes = append(g.nodes, n)
	}
	g.edges = append(g.edges, doc.Edges...)
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
