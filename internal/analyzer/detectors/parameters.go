package detectors

import (
	"excavator/internal/ast"
	actx "excavator/internal/context"
	"excavator/internal/models"
)

type ParameterDetector struct{}

func NewParameterDetector() *ParameterDetector {
	return &ParameterDetector{}
}

func (d *ParameterDetector) Name() string {
	return "Parameter List Detector"
}

func (d *ParameterDetector) Detect(fn *ast.Node, c *actx.AnalysisContext, m *models.FunctionMetrics) error {
	m.ParameterCount = len(fn.Params)
	m.IsLongParameterList = m.ParameterCount > c.LongParameterListThreshold
	return nil
}
