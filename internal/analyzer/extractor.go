package analyzer

import (
	"fmt"

	"excavator/internal/ast"
	actx "excavator/internal/context"
	"excavator/internal/models"
)

// Extraction is the extractor's output: declarations without metrics, plus
// the function nodes the calculator still has to measure.
type Extraction struct {
	Report    *models.AnalysisReport
	Functions map[models.DeclID]*ast.Node
}

type scope int

const (
	scopeModule scope = iota
	scopeClass
	scopeFunction
)

type extractor struct {
	ctx       *actx.AnalysisContext
	report    *models.AnalysisReport
	functions map[models.DeclID]*ast.Node
}

// Extract walks root once, depth-first in source order, and records every
// declaration it finds. module names the root declaration; when empty the
// module node's own name is used.
func Extract(root *ast.Node, module string, c *actx.AnalysisContext) (*Extraction, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil tree", models.ErrMalformedAst)
	}
	if root.Kind != ast.KindModule {
		return nil, models.Malformed(root, "root node is not a module")
	}
	if module == "" {
		module = root.Name
	}
	if module == "" {
		return nil, models.Malformed(root, "module has no name")
	}

	e := &extractor{
		ctx:       c,
		report:    models.NewAnalysisReport(module),
		functions: make(map[models.DeclID]*ast.Node),
	}

	id, err := e.report.Declarations.Add(models.NoParent, models.Declaration{
		Kind:          models.DeclModule,
		Name:          module,
		QualifiedName: module,
		HasDocstring:  hasDocstring(root.Body),
		Span:          root.Span,
	})
	if err != nil {
		return nil, err
	}
	if err := e.body(root.Body, id, module, scopeModule); err != nil {
		return nil, err
	}

	return &Extraction{Report: e.report, Functions: e.functions}, nil
}

func (e *extractor) body(stmts []*ast.Node, parent models.DeclID, prefix string, s scope) error {
	for _, stmt := range stmts {
		if stmt == nil {
			return models.Malformed(nil, "nil statement in body of "+prefix)
		}
		if err := e.statement(stmt, parent, prefix, s); err != nil {
			return err
		}
	}
	return nil
}

func (e *extractor) statement(n *ast.Node, parent models.DeclID, prefix string, s scope) error {
	switch n.Kind {
	case ast.KindClassDef:
		return e.class(n, parent, prefix)
	case ast.KindEnumDef:
		return e.enum(n, parent, prefix)
	case ast.KindFunctionDef:
		return e.function(n, parent, prefix)
	case ast.KindAssign, ast.KindClassConstant:
		if s == scopeClass {
			return e.constant(n, parent, prefix)
		}
		return e.nested(n, parent, prefix)
	default:
		return e.nested(n, parent, prefix)
	}
}

// nested finds definitions inside compound statements (an if guarding a
// def, a def inside a try). They belong to the enclosing declaration.
func (e *extractor) nested(n *ast.Node, parent models.DeclID, prefix string) error {
	var err error
	for _, child := range ast.ChildNodes(n) {
		ast.Inspect(child, func(c *ast.Node) bool {
			if err != nil {
				return false
			}
			switch c.Kind {
			case ast.KindClassDef, ast.KindEnumDef, ast.KindFunctionDef:
				err = e.statement(c, parent, prefix, scopeFunction)
				return false
			case ast.KindLambda:
				return false
			}
			return true
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *extractor) class(n *ast.Node, parent models.DeclID, prefix string) error {
	if n.Name == "" {
		return models.Malformed(n, "class without name")
	}
	if len(n.Body) == 0 {
		return models.Malformed(n, "class without body")
	}
	decorators, err := decoratorNames(n)
	if err != nil {
		return err
	}

	id, err := e.add(parent, models.Declaration{
		Kind:         models.DeclClass,
		Name:         n.Name,
		Decorators:   decorators,
		HasDocstring: hasDocstring(n.Body),
		Span:         n.Span,
	}, prefix)
	if err != nil {
		return err
	}
	return e.body(n.Body, id, e.qualified(id), scopeClass)
}

func (e *extractor) enum(n *ast.Node, parent models.DeclID, prefix string) error {
	if n.Name == "" {
		return models.Malformed(n, "enum without name")
	}
	if len(n.Body) == 0 {
		return models.Malformed(n, "enum without body")
	}
	decorators, err := decoratorNames(n)
	if err != nil {
		return err
	}

	id, err := e.add(parent, models.Declaration{
		Kind:         models.DeclEnum,
		Name:         n.Name,
		Decorators:   decorators,
		HasDocstring: hasDocstring(n.Body),
		Span:         n.Span,
	}, prefix)
	if err != nil {
		return err
	}
	qname := e.qualified(id)

	for _, stmt := range n.Body {
		if stmt == nil {
			return models.Malformed(n, "nil statement in enum body")
		}
		if stmt.Kind != ast.KindEnumMember {
			if err := e.statement(stmt, id, qname, scopeClass); err != nil {
				return err
			}
			continue
		}
		if stmt.Name == "" || stmt.Value == nil {
			return models.Malformed(stmt, "enum member needs a name and a value")
		}
		value := stmt.Text
		if value == "" {
			value = literalText(stmt.Value)
		}
		if _, err := e.add(id, models.Declaration{
			Kind:  models.DeclEnumMember,
			Name:  stmt.Name,
			Span:  stmt.Span,
			Value: value,
		}, qname); err != nil {
			return err
		}
	}
	return nil
}

func (e *extractor) function(n *ast.Node, parent models.DeclID, prefix string) error {
	if n.Name == "" {
		return models.Malformed(n, "function without name")
	}
	if len(n.Body) == 0 {
		return models.Malformed(n, "function without body")
	}
	decorators, err := decoratorNames(n)
	if err != nil {
		return err
	}

	id, err := e.add(parent, models.Declaration{
		Kind:         models.DeclFunction,
		Name:         n.Name,
		Dispatch:     e.ctx.DispatchFor(decorators),
		Decorators:   decorators,
		HasDocstring: hasDocstring(n.Body),
		Span:         n.Span,
		ParamCount:   len(n.Params),
	}, prefix)
	if err != nil {
		return err
	}
	e.functions[id] = n
	return e.body(n.Body, id, e.qualified(id), scopeFunction)
}

// constant records a class-scope assignment of a literal to a single name.
// Anything else assigned at class scope is not a constant.
func (e *extractor) constant(n *ast.Node, parent models.DeclID, prefix string) error {
	if n.Value == nil {
		return models.Malformed(n, "assignment without value")
	}
	if n.Kind == ast.KindAssign && (n.Name == "" || n.Value.Kind != ast.KindLiteral) {
		return e.nested(n, parent, prefix)
	}
	if n.Name == "" {
		return models.Malformed(n, "class constant without name")
	}
	if n.Value.Kind != ast.KindLiteral {
		return models.Malformed(n, "class constant needs a literal value")
	}
	_, err := e.add(parent, models.Declaration{
		Kind:  models.DeclConstant,
		Name:  n.Name,
		Span:  n.Span,
		Value: literalText(n.Value),
	}, prefix)
	return err
}

// add qualifies decl under prefix and stores it. A later definition of a
// name already taken in the same scope, such as a property setter, is
// qualified as name@line instead, with a #N suffix if that collides too.
func (e *extractor) add(parent models.DeclID, decl models.Declaration, prefix string) (models.DeclID, error) {
	decl.QualifiedName = prefix + "." + decl.Name
	if e.taken(decl.QualifiedName) {
		base := fmt.Sprintf("%s@%d", decl.QualifiedName, decl.Span.Start.Line)
		decl.QualifiedName = base
		for i := 2; e.taken(decl.QualifiedName); i++ {
			decl.QualifiedName = fmt.Sprintf("%s#%d", base, i)
		}
	}
	return e.report.Declarations.Add(parent, decl)
}

func (e *extractor) taken(qualifiedName string) bool {
	_, ok := e.report.Declarations.Lookup(qualifiedName)
	return ok
}

func (e *extractor) qualified(id models.DeclID) string {
	return e.report.Declarations.Get(id).QualifiedName
}

// decoratorNames lists decorator names outermost first.
func decoratorNames(n *ast.Node) ([]string, error) {
	if len(n.Decorators) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(n.Decorators))
	for _, d := range n.Decorators {
		if d == nil || d.Kind != ast.KindDecorator || d.Name == "" {
			return nil, models.Malformed(n, "decorator without name")
		}
		names = append(names, d.Name)
	}
	return names, nil
}

// hasDocstring reports whether the first statement of body is a bare string
// literal expression.
func hasDocstring(body []*ast.Node) bool {
	if len(body) == 0 || body[0] == nil {
		return false
	}
	first := body[0]
	return first.Kind == ast.KindExprStmt && first.Value.IsStringLiteral()
}

func literalText(n *ast.Node) string {
	if n != nil && n.Kind == ast.KindLiteral {
		return n.Text
	}
	return ""
}
