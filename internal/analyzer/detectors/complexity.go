package detectors

import (
	"excavator/internal/ast"
	actx "excavator/internal/context"
	"excavator/internal/models"
)

// ComplexityDetector calculates cyclomatic complexity of functions
type ComplexityDetector struct{}

// NewComplexityDetector creates a new complexity detector
func NewComplexityDetector() *ComplexityDetector {
	return &ComplexityDetector{}
}

// Name returns the detector name
func (d *ComplexityDetector) Name() string {
	return "Cyclomatic Complexity Detector"
}

// Detect stores the cyclomatic complexity of fn's body in m
func (d *ComplexityDetector) Detect(fn *ast.Node, c *actx.AnalysisContext, m *models.FunctionMetrics) error {
	complexity, err := d.Complexity(fn.Body, c)
	if err != nil {
		return err
	}
	m.CyclomaticComplexity = complexity
	return nil
}

// Complexity counts decision points in body, starting from 1. Nested
// functions, classes and lambdas are not part of the count.
func (d *ComplexityDetector) Complexity(body []*ast.Node, c *actx.AnalysisContext) (int, error) {
	v := &complexityVisitor{ctx: c, complexity: 1}
	if err := v.visitAll(body, false); err != nil {
		return 0, err
	}
	return v.complexity, nil
}

type complexityVisitor struct {
	ctx        *actx.AnalysisContext
	complexity int
}

func (v *complexityVisitor) visitAll(nodes []*ast.Node, inGuard bool) error {
	for _, n := range nodes {
		if err := v.visit(n, inGuard); err != nil {
			return err
		}
	}
	return nil
}

// visit adds n's decision points. inGuard is true while inside a branch
// condition, the only place short-circuit operators count.
func (v *complexityVisitor) visit(n *ast.Node, inGuard bool) error {
	if n == nil {
		return nil
	}

	switch n.Kind {
	case ast.KindFunctionDef, ast.KindClassDef, ast.KindEnumDef, ast.KindLambda:
		return nil

	case ast.KindIf:
		if err := v.decision(n); err != nil {
			return err
		}
		if err := v.visit(n.Test, true); err != nil {
			return err
		}
		if err := v.visitAll(n.Body, false); err != nil {
			return err
		}
		return v.visitAll(n.Orelse, false)

	case ast.KindFor:
		if err := v.decision(n); err != nil {
			return err
		}
		if err := v.visit(n.Value, false); err != nil {
			return err
		}
		if err := v.visitAll(n.Body, false); err != nil {
			return err
		}
		return v.visitAll(n.Orelse, false)

	case ast.KindWhile:
		if err := v.decision(n); err != nil {
			return err
		}
		if err := v.visit(n.Test, true); err != nil {
			return err
		}
		if err := v.visitAll(n.Body, false); err != nil {
			return err
		}
		return v.visitAll(n.Orelse, false)

	case ast.KindTry:
		for _, part := range [][]*ast.Node{n.Body, n.Handlers, n.Orelse, n.Finally} {
			if err := v.visitAll(part, false); err != nil {
				return err
			}
		}
		return nil

	case ast.KindHandler:
		if err := v.decision(n); err != nil {
			return err
		}
		if err := v.visit(n.Value, false); err != nil {
			return err
		}
		return v.visitAll(n.Body, false)

	case ast.KindMatch:
		if err := v.visit(n.Value, false); err != nil {
			return err
		}
		return v.visitAll(n.Cases, false)

	case ast.KindCase:
		if !v.ctx.IsDecisionKeyword(keywordOf(n)) {
			return models.Unsupported(n, "decision keyword not in the configured grammar subset")
		}
		// The wildcard arm is the fall-through path; it adds no decision.
		if !n.Wildcard {
			v.complexity++
		}
		if err := v.visit(n.Test, true); err != nil {
			return err
		}
		return v.visitAll(n.Body, false)

	case ast.KindBoolOp:
		if len(n.Operands) < 2 {
			return models.Malformed(n, "boolean operator needs at least two operands")
		}
		if !v.ctx.IsDecisionKeyword(keywordOf(n)) {
			return models.Unsupported(n, "decision keyword not in the configured grammar subset")
		}
		if inGuard {
			v.complexity += len(n.Operands) - 1
		}
		return v.visitAll(n.Operands, inGuard)

	case ast.KindComprehension, ast.KindCall, ast.KindAttribute, ast.KindAssign,
		ast.KindClassConstant, ast.KindEnumMember, ast.KindExprStmt, ast.KindDecorator,
		ast.KindName, ast.KindLiteral, ast.KindGeneric:
		return v.visitAll(ast.ChildNodes(n), inGuard)

	default:
		return models.Unsupported(n, "no complexity rule for node kind")
	}
}

func (v *complexityVisitor) decision(n *ast.Node) error {
	if !v.ctx.IsDecisionKeyword(keywordOf(n)) {
		return models.Unsupported(n, "decision keyword not in the configured grammar subset")
	}
	v.complexity++
	return nil
}

// keywordOf returns the node's decision keyword, defaulting to the
// canonical keyword of its kind.
func keywordOf(n *ast.Node) string {
	if n.Keyword != "" {
		return n.Keyword
	}
	switch n.Kind {
	case ast.KindIf:
		return "if"
	case ast.KindFor:
		return "for"
	case ast.KindWhile:
		return "while"
	case ast.KindCase:
		return "case"
	case ast.KindHandler:
		return "except"
	default:
		return ""
	}
}
