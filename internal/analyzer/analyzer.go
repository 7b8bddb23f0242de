package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"excavator/internal/ast"
	"excavator/internal/config"
	actx "excavator/internal/context"
	"excavator/internal/frontend/python"
	"excavator/internal/models"
)

var tracer = otel.Tracer("excavator")

// Analyzer runs the extract, measure and summarize pipeline. It holds no
// per-run state, so one Analyzer can serve many files at once.
type Analyzer struct {
	config     *config.Config
	ctx        *actx.AnalysisContext
	calculator *Calculator
	parser     *python.Parser
}

func NewAnalyzer() *Analyzer {
	a, err := NewAnalyzerWithConfig(config.DefaultConfig())
	if err != nil {
		panic(err)
	}
	return a
}

func NewAnalyzerWithConfig(cfg *config.Config) (*Analyzer, error) {
	c, err := actx.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid analysis settings: %w", err)
	}
	return &Analyzer{
		config:     cfg,
		ctx:        c,
		calculator: NewCalculator(c),
		parser:     python.NewParser(python.WithMaxFileSize(cfg.MaxFileBytes())),
	}, nil
}

// Context returns the rule set the analyzer hands to its detectors.
func (a *Analyzer) Context() *actx.AnalysisContext {
	return a.ctx
}

// AnalyzeTree builds the report for an already parsed module.
func (a *Analyzer) AnalyzeTree(ctx context.Context, root *ast.Node, module string) (*models.AnalysisReport, error) {
	ctx, span := tracer.Start(ctx, "analyzer.Extract")
	ex, err := Extract(root, module, a.ctx)
	endSpan(span, err)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, span = tracer.Start(ctx, "analyzer.Measure",
		oteltrace.WithAttributes(attribute.Int("functions", len(ex.Functions))))
	err = a.calculator.Measure(ex)
	endSpan(span, err)
	if err != nil {
		return nil, err
	}
	return ex.Report, nil
}

// AnalyzeSource parses content as Python and analyzes it.
func (a *Analyzer) AnalyzeSource(ctx context.Context, content []byte, path string) (*models.AnalysisReport, error) {
	root, err := a.parser.Parse(ctx, content, path)
	if err != nil {
		return nil, err
	}
	report, err := a.AnalyzeTree(ctx, root, root.Name)
	if err != nil {
		return nil, err
	}
	report.Path = path
	return report, nil
}

func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*models.AnalysisReport, error) {
	ctx, span := tracer.Start(ctx, "analyzer.AnalyzeFile",
		oteltrace.WithAttributes(attribute.String("file", path)))

	content, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("failed to read %s: %w", path, err)
		endSpan(span, err)
		return nil, err
	}
	report, err := a.AnalyzeSource(ctx, content, path)
	if err != nil {
		err = fmt.Errorf("%s: %w", path, err)
	}
	endSpan(span, err)
	return report, err
}

// Canonical returns the serialized report for one source file.
func (a *Analyzer) Canonical(ctx context.Context, path string) (string, error) {
	report, err := a.AnalyzeFile(ctx, path)
	if err != nil {
		return "", err
	}
	_, span := tracer.Start(ctx, "analyzer.Serialize")
	out, err := Serialize(report)
	endSpan(span, err)
	return out, err
}

// AnalyzeFiles analyzes every file in its own pipeline, at most MaxWorkers
// at a time. Reports and findings come back in input order.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, filenames []string) (*models.AnalysisResult, error) {
	startTime := time.Now()
	reports := make([]*models.AnalysisReport, len(filenames))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(a.config.Analysis.MaxWorkers, 1))
	for i, filename := range filenames {
		i, filename := i, filename
		g.Go(func() error {
			report, err := a.AnalyzeFile(gctx, filename)
			if err != nil {
				return err
			}
			reports[i] = report
			slog.Debug("analyzed file",
				slog.String("file", filename),
				slog.Int("functions", report.Summary.Functions))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := models.NewAnalysisResult()
	for i, report := range reports {
		result.AddReport(filenames[i], report)
		for _, issue := range Findings(report, a.ctx) {
			result.AddIssue(issue)
		}
	}

	result.AnalysisDuration = time.Since(startTime).String()
	result.CalculateScore()
	return result, nil
}

// GetDetectorNames returns the names of all active detectors
func (a *Analyzer) GetDetectorNames() []string {
	return a.calculator.DetectorNames()
}

func endSpan(span oteltrace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
