package analyzer

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"excavator/internal/ast"
	. "excavator/internal/ast/asttest"
	"excavator/internal/config"
	actx "excavator/internal/context"
	"excavator/internal/models"
)

// smellyResult holds one function that trips every finding.
func smellyResult(t *testing.T) *models.AnalysisResult {
	t.Helper()
	var body []*ast.Node
	for i := 0; i < 11; i++ {
		body = append(body, If(Name("flag"), []*ast.Node{Pass()}))
	}
	body = append(body, Return(Method(Method(Method(Method(Name("s"), "a"), "b"), "c"), "d")))
	fn := Func("tangled", 1, 40, body...)
	fn.Params = []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}

	report := measure(t, Module("legacy", fn))
	report.Path = "legacy.py"

	result := models.NewAnalysisResult()
	result.AddReport(report.Path, report)
	for _, issue := range Findings(report, actx.Default()) {
		result.AddIssue(issue)
	}
	result.AnalysisDuration = "1ms"
	result.CalculateScore()
	return result
}

func TestFindings(t *testing.T) {
	result := smellyResult(t)

	var got []string
	for _, issue := range result.Issues {
		got = append(got, string(issue.Type)+":"+issue.Severity.String())
		assert.Equal(t, "legacy.tangled", issue.Function)
		assert.Equal(t, 1, issue.Line)
	}
	assert.Equal(t, []string{
		"cyclomatic_complexity:MEDIUM",
		"long_method:MEDIUM",
		"message_chain:LOW",
		"long_parameter_list:MEDIUM",
	}, got)
	assert.Equal(t, 44, result.QualityScore)
}

func TestFindingsQuietForSmallFunctions(t *testing.T) {
	report := measure(t, sampleModule())
	assert.Empty(t, Findings(report, actx.Default()))
}

func TestSeverityGrades(t *testing.T) {
	assert.Equal(t, models.SeverityMedium, complexitySeverity(15))
	assert.Equal(t, models.SeverityHigh, complexitySeverity(16))
	assert.Equal(t, models.SeverityCritical, complexitySeverity(26))

	assert.Equal(t, models.SeverityLow, lengthSeverity(15, 15))
	assert.Equal(t, models.SeverityMedium, lengthSeverity(30, 15))
	assert.Equal(t, models.SeverityHigh, lengthSeverity(45, 15))
	assert.Equal(t, models.SeverityCritical, lengthSeverity(60, 15))
}

func TestGenerateConsolePlain(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Output.Colors = false
	cfg.Output.ShowSuggestions = true

	out, err := NewReportGeneratorWithConfig(cfg).Generate(smellyResult(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Excavator Analysis Report")
	assert.Contains(t, out, "Files analyzed: 1")
	assert.Contains(t, out, "Quality Score: 44/100")
	assert.Contains(t, out, "MEDIUM: 3")
	assert.Contains(t, out, "LOW: 1")
	assert.Contains(t, out, "Location: legacy.py:1:0 in function 'legacy.tangled'")
	assert.Contains(t, out, "Metric: Chain depth: 4")
}

func TestGenerateJSON(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Output.Format = "json"

	out, err := NewReportGeneratorWithConfig(cfg).Generate(smellyResult(t))
	require.NoError(t, err)

	var decoded struct {
		Files        []string `json:"files_analyzed"`
		TotalIssues  int      `json:"total_issues"`
		QualityScore int      `json:"quality_score"`
		Issues       []struct {
			Type     string `json:"type"`
			Severity string `json:"severity"`
		} `json:"issues"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, []string{"legacy.py"}, decoded.Files)
	assert.Equal(t, 4, decoded.TotalIssues)
	assert.Equal(t, 44, decoded.QualityScore)
	assert.Equal(t, "LOW", decoded.Issues[2].Severity)
}

func TestGenerateCanonicalConcatenatesReports(t *testing.T) {
	result := smellyResult(t)
	second := measure(t, sampleModule())
	result.AddReport("shop.py", second)

	out, err := NewReportGenerator("canonical").Generate(result)
	require.NoError(t, err)

	first, err := Serialize(result.Reports[0])
	require.NoError(t, err)
	rest, err := Serialize(second)
	require.NoError(t, err)
	assert.Equal(t, first+rest, out)
	assert.True(t, strings.HasPrefix(out, "module legacy docstring=false\n"))
}
