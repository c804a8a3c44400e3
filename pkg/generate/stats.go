package generate

import (
	"context"

	"github.com/l3aro/go-decision-tree/pkg/decision"
	"github.com/l3aro/go-decision-tree/pkg/graph"
	"github.com/l3aro/go-decision-tree/pkg/stmt"
)

// Stats summarizes a statement tree and the decision tree built from it.
type Stats struct {
	Statements map[stmt.Kind]int   `json:"statements"` // Statements per kind, drawn or not
	Nodes      map[graph.Style]int `json:"nodes"`
	TrueEdges  int                 `json:"true_edges"`
	FalseEdges int                 `json:"false_edges"`
	ChainEdges int                 `json:"chain_edges"` // Unlabeled edges
	Roots      int                 `json:"roots"`       // Nodes nothing points to
}

// NewStats counts the statements of tree and the nodes and edges of g.
func NewStats(tree *stmt.Tree, g *graph.Graph) *Stats {
	s := &Stats{
		Statements: tree.Count(),
		Nodes:      make(map[graph.Style]int),
		TrueEdges:  len(g.EdgesLabeled(graph.LabelTrue)),
		FalseEdges: len(g.EdgesLabeled(graph.LabelFalse)),
		ChainEdges: len(g.EdgesLabeled("")),
		Roots:      len(g.Roots()),
	}
	for _, n := range g.Nodes() {
		s.Nodes[n.Style]++
	}
	return s
}

// StatsFile parses a Python file and summarizes it and its decision tree.
func StatsFile(ctx context.Context, input string) (*Stats, error) {
	tree, err := parseFile(ctx, input)
	if err != nil {
		return nil, err
	}
	return NewStats(tree, decision.Build(tree)), nil
}
