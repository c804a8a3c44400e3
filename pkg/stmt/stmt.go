// Package stmt defines the statement tree consumed by the decision tree builder.
// A statement tree is the parsed, structured form of the source being
// visualized: nested sequences of statements, each one of a closed set of kinds.
package stmt

// Kind identifies the variant of a Statement.
type Kind string

const (
	KindConditional Kind = "conditional" // if/else
	KindTerminal    Kind = "terminal"    // return statement
	KindExpression  Kind = "expression"  // bare expression statement
	KindOther       Kind = "other"       // anything else
)

// Statement is one node of a statement tree. The set of implementations is
// closed: Conditional, Terminal, Expression and Other.
type Statement interface {
	Kind() Kind
	statement()
}

// Tree is the root of a statement tree.
type Tree struct {
	Body []Statement `json:"body"`
}

// Conditional is an if statement with its two branches.
type Conditional struct {
	Test   string      `json:"test"`   // Condition expression text
	Body   []Statement `json:"body"`   // Statements run when Test holds
	Orelse []Statement `json:"orelse"` // Statements run otherwise; elif chains nest here
	Line   int         `json:"line"`   // 1-based source line
}

// Terminal is a return statement.
type Terminal struct {
	Text string `json:"text"` // Full statement text, e.g. "return x"
	Line int    `json:"line"`
}

// Expression is a bare expression statement such as a call.
type Expression struct {
	Text string `json:"text"`
	Line int    `json:"line"`
}

// Other is any statement the builder does not draw. Its nested statements
// are still visited.
type Other struct {
	Type     string      `json:"type"`     // Parser node type, e.g. "for_statement"
	Children []Statement `json:"children"` // Nested statements in source order
	Line     int         `json:"line"`
}

func (*Conditional) Kind() Kind { return KindConditional }
func (*Terminal) Kind() Kind    { return KindTerminal }
func (*Expression) Kind() Kind  { return KindExpression }
func (*Other) Kind() Kind       { return KindOther }

func (*Conditional) statement() {}
func (*Terminal) statement()    {}
func (*Expression) statement()  {}
func (*Other) statement()       {}

// Count returns the number of statements of each kind in the tree,
// including nested ones.
func (t *Tree) Count() map[Kind]int {
	counts := make(map[Kind]int)
	if t == nil {
		return counts
	}
	countAll(t.Body, counts)
	return counts
}

func countAll(stmts []Statement, counts map[Kind]int) {
	for _, s := range stmts {
		if s == nil {
			continue
		}
		counts[s.Kind()]++
		switch v := s.(type) {
		case *Conditional:
			countAll(v.Body, counts)
			countAll(v.Orelse, counts)
		case *Other:
			countAll(v.Children, counts)
		}
	}
}
