// Package ast defines the syntax tree the analysis engine consumes.
//
// Front-ends translate their grammar into this tree. Every node is a Kind
// tagged value; the fields that matter for a kind are listed next to it.
package ast

import "fmt"

type Kind int

const (
	KindInvalid Kind = iota

	KindModule        // Name, Body
	KindClassDef      // Name, Decorators, Body
	KindFunctionDef   // Name, Decorators, Params, Body
	KindIf            // Keyword ("if", "elif"), Test, Body, Orelse
	KindFor           // Keyword ("for"), Value (iterable), Body, Orelse
	KindWhile         // Keyword ("while"), Test, Body, Orelse
	KindTry           // Body, Handlers, Orelse, Finally
	KindMatch         // Value (subject), Cases
	KindCase          // Keyword ("case"), Wildcard, Test (guard), Body
	KindComprehension // Value (element), Children (For / If clauses)
	KindCall          // Value (callee), Args
	KindAttribute     // Value (receiver), Name
	KindDecorator     // Name, Value (full expression)
	KindEnumDef       // Name, Decorators, Body (EnumMember nodes in place)
	KindEnumMember    // Name, Value, Text (value source as written)
	KindAssign        // Name (single target, may be empty), Children (targets), Value
	KindClassConstant // Name, Value

	KindHandler  // Keyword ("except"), Value (caught type), Body
	KindBoolOp   // Keyword ("and", "or"), Operands
	KindName     // Name
	KindLiteral  // Text, LiteralKind
	KindExprStmt // Value
	KindLambda   // Params, Value
	KindGeneric  // Text (grammar type), Children
)

var kindNames = [...]string{
	KindInvalid:       "Invalid",
	KindModule:        "Module",
	KindClassDef:      "ClassDef",
	KindFunctionDef:   "FunctionDef",
	KindIf:            "If",
	KindFor:           "For",
	KindWhile:         "While",
	KindTry:           "Try",
	KindMatch:         "Match",
	KindCase:          "Case",
	KindComprehension: "Comprehension",
	KindCall:          "Call",
	KindAttribute:     "Attribute",
	KindDecorator:     "Decorator",
	KindEnumDef:       "EnumDef",
	KindEnumMember:    "EnumMember",
	KindAssign:        "Assign",
	KindClassConstant: "ClassConstant",
	KindHandler:       "Handler",
	KindBoolOp:        "BoolOp",
	KindName:          "Name",
	KindLiteral:       "Literal",
	KindExprStmt:      "ExprStmt",
	KindLambda:        "Lambda",
	KindGeneric:       "Generic",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// LiteralKind classifies a literal's source text.
type LiteralKind string

const (
	LiteralString LiteralKind = "string"
	LiteralNumber LiteralKind = "number"
	LiteralBool   LiteralKind = "bool"
	LiteralNone   LiteralKind = "none"
)

// Position is a 1-based line and a 0-based byte column.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

// Lines returns the inclusive number of lines the span covers.
func (s Span) Lines() int {
	if s.End.Line < s.Start.Line {
		return 0
	}
	return s.End.Line - s.Start.Line + 1
}

// Node is a single syntax tree node. A node owns its children; trees never
// share nodes.
type Node struct {
	Kind Kind
	Span Span

	Name        string
	Text        string
	Keyword     string
	LiteralKind LiteralKind
	Wildcard    bool
	Params      []string

	Decorators []*Node
	Test       *Node
	Value      *Node
	Args       []*Node
	Operands   []*Node
	Body       []*Node
	Orelse     []*Node
	Handlers   []*Node
	Finally    []*Node
	Cases      []*Node
	Children   []*Node
}

// IsScope reports whether the node opens a new declaration scope. Metric
// walks stop at scope boundaries.
func (n *Node) IsScope() bool {
	switch n.Kind {
	case KindFunctionDef, KindClassDef, KindEnumDef, KindLambda:
		return true
	default:
		return false
	}
}

// IsStringLiteral reports whether n is a string literal.
func (n *Node) IsStringLiteral() bool {
	return n != nil && n.Kind == KindLiteral && n.LiteralKind == LiteralString
}
