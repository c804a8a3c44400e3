package pyparse

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// SyntaxError reports source that tree-sitter could not parse cleanly.
// Line and Column are 1-based.
type SyntaxError struct {
	File    string // Source file, empty for in-memory source
	Line    int
	Column  int
	Msg     string // "invalid syntax" or "missing <token>"
	Snippet string // The offending source line, trimmed
}

func (e *SyntaxError) Error() string {
	var sb strings.Builder
	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(":")
	}
	sb.WriteString(fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg))
	if e.Snippet != "" {
		sb.WriteString(fmt.Sprintf(" near %q", e.Snippet))
	}
	return sb.String()
}

// newSyntaxError locates the first ERROR or MISSING node below root.
func newSyntaxError(root *sitter.Node, content []byte) *SyntaxError {
	node := firstError(root)
	if node == nil {
		node = root
	}

	point := node.StartPoint()
	msg := "invalid syntax"
	if node.IsMissing() {
		msg = "missing " + node.Type()
	}

	return &SyntaxError{
		Line:    int(point.Row) + 1,
		Column:  int(point.Column) + 1,
		Msg:     msg,
		Snippet: sourceLine(content, int(point.Row)),
	}
}

// firstError returns the first ERROR or MISSING node in document order.
func firstError(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if found := firstError(node.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

// sourceLine returns the given 0-based line of content, trimmed.
func sourceLine(content []byte, row int) string {
	lines := strings.Split(string(content), "\n")
	if row < 0 || row >= len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[row])
}
