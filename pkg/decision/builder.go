// Package decision builds decision tree graphs from statement trees.
//
// The walk creates one node per conditional, return statement and bare
// expression statement, chains the statements of a sequence, and attaches
// each branch to its conditional with a "True" or "False" edge. Branches
// never rejoin: after a conditional, the walk continues from the
// conditional's own predecessor.
package decision

import (
	"github.com/l3aro/go-decision-tree/pkg/graph"
	"github.com/l3aro/go-decision-tree/pkg/stmt"
)

// cursor is the traversal state handed to and returned from every visit.
type cursor struct {
	current    string // id of the most recent node in the active context, "" if none
	suppressed bool   // the caller wires the edge into this visit's nodes
}

// builder accumulates nodes and edges for one Build call.
type builder struct {
	g *graph.Graph
}

// Build walks the tree and returns its decision graph. It never fails:
// statements it does not draw are skipped, but their nested statements are
// still visited.
func Build(tree *stmt.Tree) *graph.Graph {
	b := &builder{g: graph.New()}
	if tree != nil {
		b.visitSequence(tree.Body, cursor{})
	}
	return b.g
}

// visit dispatches on the statement kind and returns the cursor for the
// next statement. Suppression, when set, holds for the whole visit.
func (b *builder) visit(s stmt.Statement, c cursor) cursor {
	switch v := s.(type) {
	case *stmt.Conditional:
		b.visitConditional(v, c, true)
		return c
	case *stmt.Terminal:
		return b.visitLeaf(v.Text, graph.StyleTerminal, v.Line, c)
	case *stmt.Expression:
		return b.visitLeaf(v.Text, graph.StyleExpression, v.Line, c)
	case *stmt.Other:
		return b.visitSequence(v.Children, c)
	default:
		return c
	}
}

// visitSequence visits statements in order, threading the cursor through.
func (b *builder) visitSequence(stmts []stmt.Statement, c cursor) cursor {
	for _, s := range stmts {
		c = b.visit(s, c)
	}
	return c
}

// visitLeaf creates a return or expression node.
func (b *builder) visitLeaf(label string, style graph.Style, line int, c cursor) cursor {
	n := b.g.AddNode(label, style, line)
	if c.current != "" && !c.suppressed {
		b.g.AddEdge(c.current, n.ID, "")
	}
	return cursor{current: n.ID, suppressed: c.suppressed}
}

// visitConditional creates the condition node and walks both branches. With
// linkPred set, an existing predecessor gets an unlabeled edge to the
// condition regardless of suppression. It returns the condition's id; the
// caller resumes from the cursor it had before the conditional.
func (b *builder) visitConditional(v *stmt.Conditional, c cursor, linkPred bool) string {
	cond := b.g.AddNode(v.Test, graph.StyleCondition, v.Line)
	if linkPred && c.current != "" {
		b.g.AddEdge(c.current, cond.ID, "")
	}

	b.walkBranch(cond.ID, v.Body, graph.LabelTrue)
	b.walkBranch(cond.ID, v.Orelse, graph.LabelFalse)

	return cond.ID
}

// walkBranch visits the statements of one branch, each one suppressed, and
// draws the connecting edges itself. The node a statement leaves the cursor
// on is wired to the condition with the branch label when it is the first in
// the branch, and chained from the previous cursor otherwise. A conditional
// placed directly in the branch is wired through its condition node instead.
func (b *builder) walkBranch(condID string, stmts []stmt.Statement, label string) {
	current := condID
	first := true
	for _, s := range stmts {
		prev := current
		in := cursor{current: prev, suppressed: true}

		var target string
		if v, ok := s.(*stmt.Conditional); ok {
			target = b.visitConditional(v, in, false)
		} else {
			next := b.visit(s, in)
			if next.current == prev {
				continue
			}
			target = next.current
			current = target
		}

		if first {
			b.g.AddEdge(condID, target, label)
			first = false
		} else {
			b.g.AddEdge(prev, target, "")
		}
	}
}
