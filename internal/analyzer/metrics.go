package analyzer

import (
	"fmt"

	"excavator/internal/analyzer/detectors"
	"excavator/internal/ast"
	actx "excavator/internal/context"
	"excavator/internal/models"
)

// Detector fills in its share of a function's metrics. Detectors never
// descend into nested functions, classes or lambdas.
type Detector interface {
	Name() string
	Detect(fn *ast.Node, c *actx.AnalysisContext, m *models.FunctionMetrics) error
}

// Calculator computes FunctionMetrics by running every detector over a
// function body.
type Calculator struct {
	ctx       *actx.AnalysisContext
	detectors []Detector
}

func NewCalculator(c *actx.AnalysisContext) *Calculator {
	return &Calculator{
		ctx: c,
		detectors: []Detector{
			detectors.NewComplexityDetector(),
			detectors.NewFunctionLengthDetector(),
			detectors.NewMessageChainDetector(),
			detectors.NewExceptionDetector(),
			detectors.NewParameterDetector(),
		},
	}
}

// Compute returns the metrics of a single FunctionDef.
func (c *Calculator) Compute(fn *ast.Node) (models.FunctionMetrics, error) {
	var m models.FunctionMetrics
	if fn == nil || fn.Kind != ast.KindFunctionDef {
		return m, models.Malformed(fn, "metrics requested for a non-function node")
	}
	for _, d := range c.detectors {
		if err := d.Detect(fn, c.ctx, &m); err != nil {
			return models.FunctionMetrics{}, fmt.Errorf("%s on %s: %w", d.Name(), fn.Name, err)
		}
	}
	return m, nil
}

// DetectorNames returns the names of all active detectors
func (c *Calculator) DetectorNames() []string {
	names := make([]string, len(c.detectors))
	for i, d := range c.detectors {
		names[i] = d.Name()
	}
	return names
}

// Measure computes metrics for every extracted function and fills in the
// class and module summaries of the report.
func (c *Calculator) Measure(ex *Extraction) error {
	report := ex.Report
	decls := report.Declarations
	for _, id := range decls.OfKind(models.DeclFunction) {
		fn, ok := ex.Functions[id]
		if !ok {
			return fmt.Errorf("%w: no syntax node for %s", models.ErrMalformedAst, decls.Get(id).QualifiedName)
		}
		m, err := c.Compute(fn)
		if err != nil {
			return err
		}
		report.Metrics[decls.Get(id).QualifiedName] = m
	}
	c.summarize(report)
	return nil
}

func (c *Calculator) summarize(report *models.AnalysisReport) {
	decls := report.Declarations
	var sum models.ModuleSummary

	for _, id := range decls.PreOrder() {
		decl := decls.Get(id)
		switch decl.Kind {
		case models.DeclClass:
			sum.Classes++
			report.Classes[decl.QualifiedName] = c.classSummary(report, decl)
		case models.DeclEnum:
			sum.Enums++
			report.Classes[decl.QualifiedName] = c.classSummary(report, decl)
		case models.DeclConstant:
			sum.Constants++
		case models.DeclFunction:
			m := report.Metrics[decl.QualifiedName]
			sum.Functions++
			sum.TotalComplexity += m.CyclomaticComplexity
			sum.MaxComplexity = max(sum.MaxComplexity, m.CyclomaticComplexity)
			if m.IsLongMethod {
				sum.LongMethods++
			}
			if m.IsLongParameterList {
				sum.LongParameterLists++
			}
			if m.MaxChainDepth >= c.ctx.MessageChainThreshold {
				sum.MessageChains++
			}
		}
	}
	report.Summary = sum
}

// classSummary aggregates the methods declared directly in a class or enum.
func (c *Calculator) classSummary(report *models.AnalysisReport, class models.Declaration) models.ClassSummary {
	var s models.ClassSummary
	for _, id := range class.Children {
		decl := report.Declarations.Get(id)
		if decl.Kind != models.DeclFunction {
			continue
		}
		m := report.Metrics[decl.QualifiedName]
		s.Methods++
		s.TotalComplexity += m.CyclomaticComplexity
		s.MaxComplexity = max(s.MaxComplexity, m.CyclomaticComplexity)
		if m.IsLongMethod {
			s.LongMethods++
		}
	}
	return s
}
