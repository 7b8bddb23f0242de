package detectors

import (
	"excavator/internal/ast"
	actx "excavator/internal/context"
	"excavator/internal/models"
)

// FunctionLengthDetector measures a function's line span and flags long methods
type FunctionLengthDetector struct{}

func NewFunctionLengthDetector() *FunctionLengthDetector {
	return &FunctionLengthDetector{}
}

func (d *FunctionLengthDetector) Name() string {
	return "Function Length Detector"
}

// Detect uses the FunctionDef span: the signature line is included, a
// decorator or a detached docstring above the definition is not.
func (d *FunctionLengthDetector) Detect(fn *ast.Node, c *actx.AnalysisContext, m *models.FunctionMetrics) error {
	if fn.Span.End.Line < fn.Span.Start.Line {
		return models.Malformed(fn, "function span ends before it starts")
	}
	m.LineCount = fn.Span.Lines()
	m.IsLongMethod = m.LineCount >= c.LongMethodThreshold
	return nil
}
