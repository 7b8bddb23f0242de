// Package python turns Python source into the analysis tree using the
// tree-sitter Python grammar.
package python

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"excavator/internal/ast"
)

var (
	ErrSyntax         = errors.New("syntax error")
	ErrFileTooLarge   = errors.New("file too large")
	ErrInvalidContent = errors.New("invalid content")
)

// DefaultMaxFileSize is used when no limit is configured.
const DefaultMaxFileSize int64 = 1024 * 1024

// enumBases are the base classes that turn a class into an enumeration.
var enumBases = map[string]bool{
	"Enum":     true,
	"IntEnum":  true,
	"StrEnum":  true,
	"Flag":     true,
	"IntFlag":  true,
	"ReprEnum": true,
}

type Option func(*Parser)

// WithMaxFileSize sets the largest input Parse accepts, in bytes.
func WithMaxFileSize(limit int64) Option {
	return func(p *Parser) {
		if limit > 0 {
			p.maxFileSize = limit
		}
	}
}

// Parser is safe for concurrent use; every Parse call gets its own
// tree-sitter parser.
type Parser struct {
	maxFileSize int64
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse builds the module tree for content. The module is named after the
// base name of path without its extension.
func (p *Parser) Parse(ctx context.Context, content []byte, path string) (*ast.Node, error) {
	ctx, span := otel.Tracer("excavator").Start(ctx, "python.Parser.Parse",
		oteltrace.WithAttributes(
			attribute.String("file", path),
			attribute.Int("size_bytes", len(content)),
		))
	defer span.End()

	root, err := p.parse(ctx, content, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return root, nil
}

func (p *Parser) parse(ctx context.Context, content []byte, path string) (*ast.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}
	if int64(len(content)) > p.maxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, path, len(content), p.maxFileSize)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalidContent, path)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("%w: %s: empty tree", ErrSyntax, path)
	}
	if root.HasError() {
		if bad := firstError(root); bad != nil {
			return nil, fmt.Errorf("%w: %s:%d:%d", ErrSyntax, path,
				bad.StartPoint().Row+1, bad.StartPoint().Column)
		}
		return nil, fmt.Errorf("%w: %s", ErrSyntax, path)
	}

	m := &mapper{content: content}
	module := &ast.Node{
		Kind: ast.KindModule,
		Name: ModuleName(path),
		Span: m.span(root),
		Body: m.statements(root),
	}

	slog.Debug("parsed python source",
		slog.String("file", path),
		slog.Int("statements", len(module.Body)))
	return module, nil
}

// ModuleName derives a module name from a file path.
func ModuleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil || !(c.HasError() || c.IsMissing()) {
			continue
		}
		if bad := firstError(c); bad != nil {
			return bad
		}
	}
	return nil
}

// mapper converts tree-sitter nodes into ast nodes. Anything without a
// dedicated mapping becomes a Generic node that keeps its children.
type mapper struct {
	content []byte
}

func (m *mapper) text(n *sitter.Node) string {
	return string(m.content[n.StartByte():n.EndByte()])
}

// span converts tree-sitter points to 1-based lines. A node that ends at
// column 0 ends on the previous line.
func (m *mapper) span(n *sitter.Node) ast.Span {
	start, end := n.StartPoint(), n.EndPoint()
	endLine := int(end.Row) + 1
	endCol := int(end.Column)
	if endCol == 0 && end.Row > start.Row && n.EndByte() > 0 {
		last := int(n.EndByte()) - 1
		endLine--
		endCol = last - (bytes.LastIndexByte(m.content[:last], '\n') + 1)
	}
	return ast.Span{
		Start: ast.Position{Line: int(start.Row) + 1, Column: int(start.Column)},
		End:   ast.Position{Line: endLine, Column: endCol},
	}
}

// namedChildren returns n's named children without comments.
func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c == nil || c.Type() == "comment" {
			continue
		}
		out = append(out, c)
	}
	return out
}

func childOfType(n *sitter.Node, types ...string) *sitter.Node {
	for _, c := range namedChildren(n) {
		for _, t := range types {
			if c.Type() == t {
				return c
			}
		}
	}
	return nil
}

// statements maps the statements of a module or block.
func (m *mapper) statements(n *sitter.Node) []*ast.Node {
	if n == nil {
		return nil
	}
	var out []*ast.Node
	for _, c := range namedChildren(n) {
		out = append(out, m.statement(c))
	}
	return out
}

func (m *mapper) statement(n *sitter.Node) *ast.Node {
	switch n.Type() {
	case "class_definition":
		return m.class(n, nil)
	case "function_definition":
		return m.function(n, nil)
	case "decorated_definition":
		return m.decorated(n)
	case "if_statement":
		return m.ifStatement(n)
	case "for_statement":
		return m.forStatement(n)
	case "while_statement":
		return m.whileStatement(n)
	case "try_statement":
		return m.tryStatement(n)
	case "match_statement":
		return m.matchStatement(n)
	case "expression_statement":
		return m.expressionStatement(n)
	default:
		return m.generic(n)
	}
}

func (m *mapper) decorated(n *sitter.Node) *ast.Node {
	var decorators []*ast.Node
	for _, c := range namedChildren(n) {
		if c.Type() == "decorator" {
			decorators = append(decorators, m.decorator(c))
		}
	}

	def := n.ChildByFieldName("definition")
	if def == nil {
		def = childOfType(n, "function_definition", "class_definition")
	}
	switch {
	case def == nil:
		return m.generic(n)
	case def.Type() == "class_definition":
		return m.class(def, decorators)
	default:
		return m.function(def, decorators)
	}
}

// decorator records the decorator's dotted name; for @foo(x) that is foo.
func (m *mapper) decorator(n *sitter.Node) *ast.Node {
	d := &ast.Node{Kind: ast.KindDecorator, Span: m.span(n)}
	expr := childOfType(n, "identifier", "attribute", "call")
	if expr == nil {
		return d
	}
	d.Value = m.expression(expr)
	if expr.Type() == "call" {
		if fn := expr.ChildByFieldName("function"); fn != nil {
			d.Name = m.text(fn)
		}
		return d
	}
	d.Name = m.text(expr)
	return d
}

func (m *mapper) class(n *sitter.Node, decorators []*ast.Node) *ast.Node {
	node := &ast.Node{
		Kind:       ast.KindClassDef,
		Span:       m.span(n),
		Decorators: decorators,
	}
	if name := n.ChildByFieldName("name"); name != nil {
		node.Name = m.text(name)
	}
	if m.isEnum(n.ChildByFieldName("superclasses")) {
		node.Kind = ast.KindEnumDef
		node.Body = m.enumBody(n.ChildByFieldName("body"))
		return node
	}
	node.Body = m.classBody(n.ChildByFieldName("body"))
	return node
}

func (m *mapper) isEnum(bases *sitter.Node) bool {
	for _, b := range namedChildren(bases) {
		var name string
		switch b.Type() {
		case "identifier":
			name = m.text(b)
		case "attribute":
			if attr := b.ChildByFieldName("attribute"); attr != nil {
				name = m.text(attr)
			}
		}
		if enumBases[name] {
			return true
		}
	}
	return false
}

// classBody maps a class block, turning "NAME: Final = literal" into a
// ClassConstant.
func (m *mapper) classBody(block *sitter.Node) []*ast.Node {
	var out []*ast.Node
	for _, c := range namedChildren(block) {
		if c.Type() == "expression_statement" {
			if assign := childOfType(c, "assignment"); assign != nil && isFinal(m, assign) {
				node := m.assignment(assign)
				if node.Kind == ast.KindAssign && node.Value.Kind == ast.KindLiteral {
					node.Kind = ast.KindClassConstant
					node.Span = m.span(c)
					out = append(out, node)
					continue
				}
			}
		}
		out = append(out, m.statement(c))
	}
	return out
}

func isFinal(m *mapper, assign *sitter.Node) bool {
	t := assign.ChildByFieldName("type")
	if t == nil || assign.ChildByFieldName("right") == nil {
		return false
	}
	text := m.text(t)
	return text == "Final" || strings.HasPrefix(text, "Final[") ||
		text == "typing.Final" || strings.HasPrefix(text, "typing.Final[")
}

// enumBody maps a simple assignment to a single name as an EnumMember.
func (m *mapper) enumBody(block *sitter.Node) []*ast.Node {
	var out []*ast.Node
	for _, c := range namedChildren(block) {
		if c.Type() == "expression_statement" {
			assign := childOfType(c, "assignment")
			if assign != nil {
				left, right := assign.ChildByFieldName("left"), assign.ChildByFieldName("right")
				if left != nil && left.Type() == "identifier" && right != nil {
					out = append(out, &ast.Node{
						Kind:  ast.KindEnumMember,
						Span:  m.span(c),
						Name:  m.text(left),
						Text:  m.text(right),
						Value: m.expression(right),
					})
					continue
				}
			}
		}
		out = append(out, m.statement(c))
	}
	return out
}

func (m *mapper) function(n *sitter.Node, decorators []*ast.Node) *ast.Node {
	node := &ast.Node{
		Kind:       ast.KindFunctionDef,
		Span:       m.span(n),
		Decorators: decorators,
		Body:       m.statements(n.ChildByFieldName("body")),
	}
	if name := n.ChildByFieldName("name"); name != nil {
		node.Name = m.text(name)
	}
	node.Params = m.parameters(n.ChildByFieldName("parameters"))
	return node
}

// parameters lists parameter names in order. The bare "*" and "/"
// separators are not parameters.
func (m *mapper) parameters(n *sitter.Node) []string {
	var names []string
	for _, p := range namedChildren(n) {
		switch p.Type() {
		case "keyword_separator", "positional_separator":
			continue
		case "identifier":
			names = append(names, m.text(p))
		default:
			names = append(names, m.parameterName(p))
		}
	}
	return names
}

func (m *mapper) parameterName(p *sitter.Node) string {
	if name := p.ChildByFieldName("name"); name != nil {
		return m.text(name)
	}
	for _, c := range namedChildren(p) {
		switch c.Type() {
		case "identifier":
			return m.text(c)
		case "list_splat_pattern", "dictionary_splat_pattern":
			return m.parameterName(c)
		}
	}
	return m.text(p)
}

func (m *mapper) ifStatement(n *sitter.Node) *ast.Node {
	node := &ast.Node{
		Kind:    ast.KindIf,
		Keyword: "if",
		Span:    m.span(n),
		Test:    m.optionalExpression(n.ChildByFieldName("condition")),
		Body:    m.statements(n.ChildByFieldName("consequence")),
	}

	var clauses []*sitter.Node
	for _, c := range namedChildren(n) {
		if c.Type() == "elif_clause" || c.Type() == "else_clause" {
			clauses = append(clauses, c)
		}
	}

	// Fold the elif chain from the back so each elif is the Orelse of the
	// branch before it.
	var orelse []*ast.Node
	for i := len(clauses) - 1; i >= 0; i-- {
		c := clauses[i]
		if c.Type() == "else_clause" {
			orelse = m.statements(c.ChildByFieldName("body"))
			continue
		}
		orelse = []*ast.Node{{
			Kind:    ast.KindIf,
			Keyword: "elif",
			Span:    m.span(c),
			Test:    m.optionalExpression(c.ChildByFieldName("condition")),
			Body:    m.statements(c.ChildByFieldName("consequence")),
			Orelse:  orelse,
		}}
	}
	node.Orelse = orelse
	return node
}

func (m *mapper) forStatement(n *sitter.Node) *ast.Node {
	node := &ast.Node{
		Kind:    ast.KindFor,
		Keyword: "for",
		Span:    m.span(n),
		Value:   m.optionalExpression(n.ChildByFieldName("right")),
		Body:    m.statements(n.ChildByFieldName("body")),
	}
	if left := n.ChildByFieldName("left"); left != nil {
		node.Children = []*ast.Node{m.expression(left)}
	}
	if alt := n.ChildByFieldName("alternative"); alt != nil {
		node.Orelse = m.statements(alt.ChildByFieldName("body"))
	}
	return node
}

func (m *mapper) whileStatement(n *sitter.Node) *ast.Node {
	node := &ast.Node{
		Kind:    ast.KindWhile,
		Keyword: "while",
		Span:    m.span(n),
		Test:    m.optionalExpression(n.ChildByFieldName("condition")),
		Body:    m.statements(n.ChildByFieldName("body")),
	}
	if alt := n.ChildByFieldName("alternative"); alt != nil {
		node.Orelse = m.statements(alt.ChildByFieldName("body"))
	}
	return node
}

func (m *mapper) tryStatement(n *sitter.Node) *ast.Node {
	node := &ast.Node{
		Kind: ast.KindTry,
		Span: m.span(n),
		Body: m.statements(n.ChildByFieldName("body")),
	}
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "except_clause", "except_group_clause":
			node.Handlers = append(node.Handlers, m.handler(c))
		case "else_clause":
			node.Orelse = m.statements(c.ChildByFieldName("body"))
		case "finally_clause":
			node.Finally = m.statements(childOfType(c, "block"))
		}
	}
	return node
}

func (m *mapper) handler(n *sitter.Node) *ast.Node {
	keyword := "except"
	if n.Type() == "except_group_clause" {
		keyword = "except*"
	}
	h := &ast.Node{Kind: ast.KindHandler, Keyword: keyword, Span: m.span(n)}
	for _, c := range namedChildren(n) {
		if c.Type() == "block" {
			h.Body = m.statements(c)
			continue
		}
		if h.Value == nil {
			h.Value = m.expression(c)
		}
	}
	return h
}

func (m *mapper) matchStatement(n *sitter.Node) *ast.Node {
	node := &ast.Node{
		Kind:  ast.KindMatch,
		Span:  m.span(n),
		Value: m.optionalExpression(n.ChildByFieldName("subject")),
	}
	// Depending on the grammar version the case clauses sit directly under
	// the match statement or inside its block.
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "case_clause":
			node.Cases = append(node.Cases, m.caseClause(c))
		case "block":
			for _, cc := range namedChildren(c) {
				if cc.Type() == "case_clause" {
					node.Cases = append(node.Cases, m.caseClause(cc))
				}
			}
		}
	}
	return node
}

// caseClause marks the irrefutable "case _:" arm as the wildcard.
func (m *mapper) caseClause(n *sitter.Node) *ast.Node {
	node := &ast.Node{Kind: ast.KindCase, Keyword: "case", Span: m.span(n)}
	var patterns []string
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "block":
			node.Body = m.statements(c)
		case "if_clause":
			if cond := namedChildren(c); len(cond) > 0 {
				node.Test = m.expression(cond[0])
			}
		default:
			patterns = append(patterns, m.text(c))
		}
	}
	node.Text = strings.Join(patterns, ", ")
	node.Wildcard = node.Text == "_" && node.Test == nil
	return node
}

func (m *mapper) expressionStatement(n *sitter.Node) *ast.Node {
	exprs := namedChildren(n)
	if len(exprs) == 1 && exprs[0].Type() == "assignment" {
		node := m.assignment(exprs[0])
		node.Span = m.span(n)
		return node
	}
	stmt := &ast.Node{Kind: ast.KindExprStmt, Span: m.span(n)}
	if len(exprs) == 1 {
		stmt.Value = m.expression(exprs[0])
		return stmt
	}
	stmt.Value = &ast.Node{Kind: ast.KindGeneric, Text: "expression_list", Span: m.span(n), Children: m.expressions(exprs)}
	return stmt
}

// assignment maps "x = value". A target other than a single name, or an
// annotation with no value, is kept as a Generic statement.
func (m *mapper) assignment(n *sitter.Node) *ast.Node {
	left, right := n.ChildByFieldName("left"), n.ChildByFieldName("right")
	if left == nil || right == nil || left.Type() != "identifier" {
		return m.generic(n)
	}
	return &ast.Node{
		Kind:  ast.KindAssign,
		Span:  m.span(n),
		Name:  m.text(left),
		Value: m.expression(right),
	}
}

func (m *mapper) optionalExpression(n *sitter.Node) *ast.Node {
	if n == nil {
		return nil
	}
	return m.expression(n)
}

func (m *mapper) expressions(nodes []*sitter.Node) []*ast.Node {
	out := make([]*ast.Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, m.expression(n))
	}
	return out
}

func (m *mapper) expression(n *sitter.Node) *ast.Node {
	switch n.Type() {
	case "identifier":
		return &ast.Node{Kind: ast.KindName, Span: m.span(n), Name: m.text(n)}
	case "string", "concatenated_string":
		// An f-string is not a literal; what it interpolates is still code.
		if parts := m.interpolations(n); len(parts) > 0 {
			return &ast.Node{Kind: ast.KindGeneric, Text: n.Type(), Span: m.span(n), Children: parts}
		}
		return m.literal(n, ast.LiteralString)
	case "integer", "float":
		return m.literal(n, ast.LiteralNumber)
	case "unary_operator":
		if isSignedNumber(m, n) {
			return m.literal(n, ast.LiteralNumber)
		}
		return m.generic(n)
	case "true", "false":
		return m.literal(n, ast.LiteralBool)
	case "none":
		return m.literal(n, ast.LiteralNone)
	case "attribute":
		node := &ast.Node{Kind: ast.KindAttribute, Span: m.span(n)}
		if obj := n.ChildByFieldName("object"); obj != nil {
			node.Value = m.expression(obj)
		}
		if attr := n.ChildByFieldName("attribute"); attr != nil {
			node.Name = m.text(attr)
		}
		return node
	case "call":
		node := &ast.Node{Kind: ast.KindCall, Span: m.span(n)}
		if fn := n.ChildByFieldName("function"); fn != nil {
			node.Value = m.expression(fn)
		}
		if args := n.ChildByFieldName("arguments"); args != nil {
			if args.Type() == "generator_expression" {
				node.Args = []*ast.Node{m.expression(args)}
			} else {
				node.Args = m.expressions(namedChildren(args))
			}
		}
		return node
	case "boolean_operator":
		node := &ast.Node{Kind: ast.KindBoolOp, Span: m.span(n)}
		if op := n.ChildByFieldName("operator"); op != nil {
			node.Keyword = m.text(op)
		}
		for _, field := range []string{"left", "right"} {
			if c := n.ChildByFieldName(field); c != nil {
				node.Operands = append(node.Operands, m.expression(c))
			}
		}
		return node
	case "conditional_expression":
		// body if test else orelse
		parts := namedChildren(n)
		if len(parts) != 3 {
			return m.generic(n)
		}
		return &ast.Node{
			Kind:    ast.KindIf,
			Keyword: "if",
			Span:    m.span(n),
			Test:    m.expression(parts[1]),
			Body:    []*ast.Node{m.expression(parts[0])},
			Orelse:  []*ast.Node{m.expression(parts[2])},
		}
	case "list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression":
		return m.comprehension(n)
	case "lambda":
		node := &ast.Node{Kind: ast.KindLambda, Span: m.span(n)}
		if body := n.ChildByFieldName("body"); body != nil {
			node.Body = []*ast.Node{m.expression(body)}
		}
		return node
	default:
		return m.generic(n)
	}
}

// interpolations maps the expressions inside the {...} fields of a string,
// including fields nested in a format specifier.
func (m *mapper) interpolations(n *sitter.Node) []*ast.Node {
	var out []*ast.Node
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "string", "format_specifier":
			out = append(out, m.interpolations(c)...)
		case "interpolation", "format_expression":
			if expr := c.ChildByFieldName("expression"); expr != nil {
				out = append(out, m.expression(expr))
			} else if parts := namedChildren(c); len(parts) > 0 {
				out = append(out, m.expression(parts[0]))
			}
			if spec := c.ChildByFieldName("format_specifier"); spec != nil {
				out = append(out, m.interpolations(spec)...)
			}
		}
	}
	return out
}

// isSignedNumber reports whether n is -N or +N for a numeric literal N.
func isSignedNumber(m *mapper, n *sitter.Node) bool {
	arg := n.ChildByFieldName("argument")
	if arg == nil || (arg.Type() != "integer" && arg.Type() != "float") {
		return false
	}
	op := strings.TrimSpace(strings.TrimSuffix(m.text(n), m.text(arg)))
	return op == "-" || op == "+"
}

func (m *mapper) literal(n *sitter.Node, kind ast.LiteralKind) *ast.Node {
	return &ast.Node{Kind: ast.KindLiteral, Span: m.span(n), Text: m.text(n), LiteralKind: kind}
}

// comprehension keeps the element expression first, then one For per
// "for" clause and one If per "if" filter, in source order.
func (m *mapper) comprehension(n *sitter.Node) *ast.Node {
	node := &ast.Node{Kind: ast.KindComprehension, Span: m.span(n)}
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "for_in_clause":
			clause := &ast.Node{
				Kind:    ast.KindFor,
				Keyword: "for",
				Span:    m.span(c),
				Value:   m.optionalExpression(c.ChildByFieldName("right")),
			}
			if left := c.ChildByFieldName("left"); left != nil {
				clause.Children = []*ast.Node{m.expression(left)}
			}
			node.Children = append(node.Children, clause)
		case "if_clause":
			clause := &ast.Node{Kind: ast.KindIf, Keyword: "if", Span: m.span(c)}
			if cond := namedChildren(c); len(cond) > 0 {
				clause.Test = m.expression(cond[0])
			}
			node.Children = append(node.Children, clause)
		default:
			node.Children = append(node.Children, m.expression(c))
		}
	}
	return node
}

// generic keeps an unmapped node's children so nothing inside it is lost
// to the detectors.
func (m *mapper) generic(n *sitter.Node) *ast.Node {
	node := &ast.Node{Kind: ast.KindGeneric, Text: n.Type(), Span: m.span(n)}
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "block":
			node.Body = append(node.Body, m.statements(c)...)
		case "class_definition", "function_definition", "decorated_definition",
			"if_statement", "for_statement", "while_statement", "try_statement",
			"match_statement", "expression_statement":
			node.Body = append(node.Body, m.statement(c))
		default:
			node.Children = append(node.Children, m.expression(c))
		}
	}
	return node
}
