package detectors

import (
	"excavator/internal/ast"
	actx "excavator/internal/context"
	"excavator/internal/models"
)

// ExceptionDetector reports whether a function handles exceptions itself
type ExceptionDetector struct{}

func NewExceptionDetector() *ExceptionDetector {
	return &ExceptionDetector{}
}

func (d *ExceptionDetector) Name() string {
	return "Exception Handler Detector"
}

// Detect looks for a try with at least one handler. try/finally alone
// does not count; nested functions are skipped.
func (d *ExceptionDetector) Detect(fn *ast.Node, _ *actx.AnalysisContext, m *models.FunctionMetrics) error {
	found := false
	ast.InspectBody(fn.Body, func(n *ast.Node) bool {
		if n.Kind == ast.KindTry && len(n.Handlers) > 0 {
			found = true
		}
		return !found
	})
	m.HasTryExcept = found
	return nil
}
