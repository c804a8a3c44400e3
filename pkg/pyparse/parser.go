// Package pyparse turns Python source into the statement tree consumed by
// the decision tree builder. It uses tree-sitter to parse the source and maps
// the syntax tree onto the closed set of statement kinds in package stmt.
package pyparse

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/l3aro/go-decision-tree/pkg/stmt"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Extensions lists the file extensions treated as Python source.
var Extensions = []string{".py", ".pyw", ".pyi"}

// IsPythonFile reports whether the path has a Python extension.
func IsPythonFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Parse parses Python source into a statement tree. Source that does not
// parse cleanly yields a *SyntaxError.
func Parse(ctx context.Context, content []byte) (*stmt.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parsing source: %w", err)
	}
	if tree == nil {
		return nil, fmt.Errorf("parsing source: no syntax tree produced")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, newSyntaxError(root, content)
	}

	c := &converter{content: content}
	body := c.block(root)
	if c.err != nil {
		return nil, c.err
	}
	return &stmt.Tree{Body: body}, nil
}

// ParseFile reads and parses a Python file.
func ParseFile(ctx context.Context, filePath string) (*stmt.Tree, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", filePath, err)
	}

	tree, err := Parse(ctx, content)
	if err != nil {
		var se *SyntaxError
		if errors.As(err, &se) {
			se.File = filePath
			return nil, se
		}
		return nil, err
	}
	return tree, nil
}

// converter maps tree-sitter nodes onto statements.
type converter struct {
	content []byte
	err     *SyntaxError // first statement tree-sitter accepts but Python 3 rejects
}

// reject records a syntax error at node unless one is already recorded.
func (c *converter) reject(node *sitter.Node, msg string) {
	if c.err != nil {
		return
	}
	point := node.StartPoint()
	c.err = &SyntaxError{
		Line:    int(point.Row) + 1,
		Column:  int(point.Column) + 1,
		Msg:     msg,
		Snippet: sourceLine(c.content, int(point.Row)),
	}
}

// block converts the statement children of a module or block node.
func (c *converter) block(node *sitter.Node) []stmt.Statement {
	var stmts []stmt.Statement
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		stmts = append(stmts, c.statement(child))
	}
	return stmts
}

// statement converts a single statement node.
func (c *converter) statement(node *sitter.Node) stmt.Statement {
	line := int(node.StartPoint().Row) + 1

	switch node.Type() {
	case "if_statement":
		return c.conditional(node)

	case "return_statement":
		return &stmt.Terminal{Text: c.text(node), Line: line}

	// Python 2 forms the grammar still accepts.
	case "print_statement":
		c.reject(node, "Missing parentheses in call to 'print'. Did you mean print(...)?")
		return &stmt.Other{Type: node.Type(), Line: line}
	case "exec_statement":
		c.reject(node, "Missing parentheses in call to 'exec'. Did you mean exec(...)?")
		return &stmt.Other{Type: node.Type(), Line: line}

	case "expression_statement":
		if isAssignment(node) {
			return &stmt.Other{Type: node.Type(), Line: line}
		}
		return &stmt.Expression{Text: c.text(node), Line: line}

	default:
		return &stmt.Other{Type: node.Type(), Children: c.nested(node), Line: line}
	}
}

// conditional converts an if statement. Each elif clause becomes a
// conditional nested as the only statement of the preceding false branch,
// the same shape Python's own AST gives an elif chain.
func (c *converter) conditional(node *sitter.Node) stmt.Statement {
	root := &stmt.Conditional{
		Test: c.condition(node.ChildByFieldName("condition")),
		Body: c.body(node.ChildByFieldName("consequence")),
		Line: int(node.StartPoint().Row) + 1,
	}

	tail := root
	for i := 0; i < int(node.NamedChildCount()); i++ {
		clause := node.NamedChild(i)
		if clause == nil {
			continue
		}
		switch clause.Type() {
		case "elif_clause":
			next := &stmt.Conditional{
				Test: c.condition(clause.ChildByFieldName("condition")),
				Body: c.body(clause.ChildByFieldName("consequence")),
				Line: int(clause.StartPoint().Row) + 1,
			}
			tail.Orelse = []stmt.Statement{next}
			tail = next
		case "else_clause":
			tail.Orelse = c.body(clause.ChildByFieldName("body"))
		}
	}

	return root
}

// body converts a block field, tolerating a missing block.
func (c *converter) body(node *sitter.Node) []stmt.Statement {
	if node == nil {
		return nil
	}
	if node.Type() != "block" {
		return []stmt.Statement{c.statement(node)}
	}
	return c.block(node)
}

// condition renders a condition expression without redundant outer parentheses.
func (c *converter) condition(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	for node.Type() == "parenthesized_expression" && node.NamedChildCount() == 1 {
		inner := node.NamedChild(0)
		if inner == nil || inner.Type() == "comment" {
			break
		}
		node = inner
	}
	return c.text(node)
}

// nested collects the statements held in the blocks of a compound statement
// (loop bodies, try handlers, function and class bodies, match cases),
// in source order.
func (c *converter) nested(node *sitter.Node) []stmt.Statement {
	var stmts []stmt.Statement
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch {
		case child.Type() == "comment":
			continue
		case child.Type() == "block":
			stmts = append(stmts, c.block(child)...)
		case isStatementType(child.Type()):
			stmts = append(stmts, c.statement(child))
		default:
			stmts = append(stmts, c.nested(child)...)
		}
	}
	return stmts
}

// text renders a node as label text. Tokens are joined with the spacing
// Python's own unparser uses: one space around binary, comparison and boolean
// operators and after commas, none inside brackets or around dots. Comments
// are dropped and string literals are kept verbatim.
func (c *converter) text(node *sitter.Node) string {
	toks := c.tokens(node, "", nil)

	var sb strings.Builder
	for i, tok := range toks {
		if i > 0 && spaced(toks[i-1], tok) {
			sb.WriteByte(' ')
		}
		sb.WriteString(tok.text)
	}
	return sb.String()
}

// token is one leaf of an expression as it appears in a label.
type token struct {
	text   string
	start  uint32
	end    uint32
	parent string // type of the enclosing node
	named  bool
}

// tokens collects the leaves below node in source order. String literals are
// single tokens.
func (c *converter) tokens(node *sitter.Node, parent string, out []token) []token {
	switch {
	case node.Type() == "comment" || node.Type() == "line_continuation" || node.StartByte() == node.EndByte():
		return out
	case node.ChildCount() == 0 || node.Type() == "string":
		return append(out, token{
			text:   node.Content(c.content),
			start:  node.StartByte(),
			end:    node.EndByte(),
			parent: parent,
			named:  node.IsNamed(),
		})
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child != nil {
			out = c.tokens(child, node.Type(), out)
		}
	}
	return out
}

// operatorParents are the node types whose anonymous children are operators
// written with a space on both sides.
var operatorParents = map[string]bool{
	"binary_operator":      true,
	"comparison_operator":  true,
	"boolean_operator":     true,
	"augmented_assignment": true,
	"assignment":           true,
}

// prefixParents are the node types whose anonymous operator binds to the
// operand that follows it.
var prefixParents = map[string]bool{
	"unary_operator":   true,
	"list_splat":       true,
	"dictionary_splat": true,
}

// spaced reports whether a space separates a and b in a label.
func spaced(a, b token) bool {
	switch {
	case a.text == "." || b.text == ".":
		return false
	case !a.named && (a.text == "(" || a.text == "[" || a.text == "{"):
		return false
	case !a.named && prefixParents[a.parent]:
		return false
	case !b.named && (b.text == ")" || b.text == "]" || b.text == "}" || b.text == "," || b.text == ":"):
		return false
	case !b.named && (b.text == "(" || b.text == "[") && (b.parent == "argument_list" || b.parent == "subscript"):
		return false
	case !a.named && a.text == ",":
		return true
	case !a.named && a.text == ":" && (a.parent == "pair" || a.parent == "lambda"):
		return true
	case !a.named && operatorParents[a.parent], !b.named && operatorParents[b.parent]:
		return true
	}
	return b.start > a.end
}

// isStatementType reports whether a node type names a statement.
func isStatementType(nodeType string) bool {
	return strings.HasSuffix(nodeType, "_statement") ||
		strings.HasSuffix(nodeType, "_definition")
}

// isAssignment reports whether an expression statement is an assignment,
// which is not drawn.
func isAssignment(node *sitter.Node) bool {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "assignment", "augmented_assignment":
			return true
		}
	}
	return false
}
