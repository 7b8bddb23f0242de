// Package asttest builds small analysis trees by hand for tests.
package asttest

import (
	"strconv"

	"excavator/internal/ast"
)

func lines(start, end int) ast.Span {
	return ast.Span{
		Start: ast.Position{Line: start},
		End:   ast.Position{Line: end},
	}
}

func Module(name string, body ...*ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.KindModule, Name: name, Body: body}
}

// Func builds a function spanning lines start..end.
func Func(name string, start, end int, body ...*ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.KindFunctionDef, Name: name, Span: lines(start, end), Body: body}
}

func Class(name string, start, end int, body ...*ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.KindClassDef, Name: name, Span: lines(start, end), Body: body}
}

func Enum(name string, start, end int, body ...*ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.KindEnumDef, Name: name, Span: lines(start, end), Body: body}
}

func Member(name string, value *ast.Node, line int) *ast.Node {
	return &ast.Node{Kind: ast.KindEnumMember, Name: name, Value: value, Span: lines(line, line)}
}

// Decorate attaches decorators to def, outermost first, and returns def.
func Decorate(def *ast.Node, names ...string) *ast.Node {
	for _, n := range names {
		def.Decorators = append(def.Decorators, &ast.Node{Kind: ast.KindDecorator, Name: n, Value: Name(n)})
	}
	return def
}

func Name(s string) *ast.Node {
	return &ast.Node{Kind: ast.KindName, Name: s}
}

// Str is a string literal whose source text is the quoted s.
func Str(s string) *ast.Node {
	return &ast.Node{Kind: ast.KindLiteral, LiteralKind: ast.LiteralString, Text: strconv.Quote(s)}
}

func Num(text string) *ast.Node {
	return &ast.Node{Kind: ast.KindLiteral, LiteralKind: ast.LiteralNumber, Text: text}
}

func Attr(recv *ast.Node, name string) *ast.Node {
	return &ast.Node{Kind: ast.KindAttribute, Value: recv, Name: name}
}

func Call(fn *ast.Node, args ...*ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.KindCall, Value: fn, Args: args}
}

// Method is recv.name(args...).
func Method(recv *ast.Node, name string, args ...*ast.Node) *ast.Node {
	return Call(Attr(recv, name), args...)
}

func Expr(v *ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.KindExprStmt, Value: v}
}

// Doc is a docstring statement.
func Doc(s string) *ast.Node {
	return Expr(Str(s))
}

func Assign(name string, v *ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.KindAssign, Name: name, Value: v}
}

func Pass() *ast.Node {
	return &ast.Node{Kind: ast.KindGeneric, Text: "pass_statement"}
}

func Return(v *ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.KindGeneric, Text: "return_statement", Children: []*ast.Node{v}}
}

// Compare stands in for any comparison; the analysis treats it as opaque.
func Compare(left, right *ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.KindGeneric, Text: "comparison_operator", Children: []*ast.Node{left, right}}
}

func If(test *ast.Node, body []*ast.Node, orelse ...*ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.KindIf, Keyword: "if", Test: test, Body: body, Orelse: orelse}
}

func Elif(test *ast.Node, body []*ast.Node, orelse ...*ast.Node) *ast.Node {
	n := If(test, body, orelse...)
	n.Keyword = "elif"
	return n
}

func For(iter *ast.Node, body ...*ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.KindFor, Keyword: "for", Value: iter, Body: body}
}

func While(test *ast.Node, body ...*ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.KindWhile, Keyword: "while", Test: test, Body: body}
}

func Try(body []*ast.Node, handlers ...*ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.KindTry, Body: body, Handlers: handlers}
}

func Except(body ...*ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.KindHandler, Keyword: "except", Body: body}
}

func Match(subject *ast.Node, cases ...*ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.KindMatch, Value: subject, Cases: cases}
}

// Case builds a match arm; the pattern "_" is the wildcard.
func Case(pattern string, body ...*ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.KindCase, Keyword: "case", Text: pattern, Wildcard: pattern == "_", Body: body}
}

func Or(operands ...*ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.KindBoolOp, Keyword: "or", Operands: operands}
}

func And(operands ...*ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.KindBoolOp, Keyword: "and", Operands: operands}
}

// ListComp is [elt for target in iter if cond...].
func ListComp(elt, iter *ast.Node, conds ...*ast.Node) *ast.Node {
	n := &ast.Node{Kind: ast.KindComprehension, Children: []*ast.Node{
		elt,
		{Kind: ast.KindFor, Keyword: "for", Value: iter},
	}}
	for _, c := range conds {
		n.Children = append(n.Children, &ast.Node{Kind: ast.KindIf, Keyword: "if", Test: c})
	}
	return n
}

func Lambda(body *ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.KindLambda, Body: []*ast.Node{body}}
}
