package analyzer

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"excavator/internal/config"
	"excavator/internal/models"

	"github.com/fatih/color"
)

// ReportGenerator handles formatting and displaying analysis results
type ReportGenerator struct {
	format string
	config *config.Config
}

// NewReportGenerator creates a new report generator
func NewReportGenerator(format string) *ReportGenerator {
	return &ReportGenerator{
		format: format,
		config: config.DefaultConfig(),
	}
}

func NewReportGeneratorWithConfig(cfg *config.Config) *ReportGenerator {
	return &ReportGenerator{
		format: cfg.Output.Format,
		config: cfg,
	}
}

// Generate creates a formatted report from analysis results
func (r *ReportGenerator) Generate(result *models.AnalysisResult) (string, error) {
	switch r.format {
	case "json":
		return r.generateJSON(result)
	case "canonical":
		return r.generateCanonical(result)
	default:
		return r.generateConsole(result), nil
	}
}

func (r *ReportGenerator) generateJSON(result *models.AnalysisResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error generating JSON report: %w", err)
	}
	return string(data) + "\n", nil
}

// generateCanonical concatenates the canonical report of every file
func (r *ReportGenerator) generateCanonical(result *models.AnalysisResult) (string, error) {
	var out strings.Builder
	for _, report := range result.Reports {
		text, err := Serialize(report)
		if err != nil {
			return "", fmt.Errorf("%s: %w", report.Path, err)
		}
		out.WriteString(text)
	}
	return out.String(), nil
}

// generateConsole creates a colorized console report
func (r *ReportGenerator) generateConsole(result *models.AnalysisResult) string {
	var report strings.Builder

	useColors := true
	verbose := false
	showSuggestions := true
	if r.config != nil {
		useColors = r.config.Output.Colors
		verbose = r.config.Output.Verbose
		showSuggestions = r.config.Output.ShowSuggestions
	}

	// Header
	if useColors {
		report.WriteString(color.CyanString("🔍 Excavator Analysis Report\n"))
		report.WriteString(color.WhiteString("═══════════════════════════════════════\n\n"))
	} else {
		report.WriteString("Excavator Analysis Report\n")
		report.WriteString("=======================================\n\n")
	}

	if verbose && r.config != nil {
		r.writeConfigInfo(&report, useColors)
	}

	r.writeSummary(&report, result, useColors)
	r.writeQualityScore(&report, result, useColors)

	if len(result.Issues) > 0 {
		r.writeIssuesSummary(&report, result, useColors)

		if showSuggestions {
			report.WriteString("\n")
			r.writeDetailedIssues(&report, result, useColors)
		}
	} else {
		if useColors {
			report.WriteString(color.GreenString("🎉 No code smells detected!\n\n"))
		} else {
			report.WriteString("No code smells detected!\n\n")
		}
	}

	// Footer
	if useColors {
		report.WriteString(color.WhiteString("Analysis completed in %s\n", result.AnalysisDuration))
	} else {
		report.WriteString(fmt.Sprintf("Analysis completed in %s\n", result.AnalysisDuration))
	}

	return report.String()
}

func (r *ReportGenerator) writeQualityScore(report *strings.Builder, result *models.AnalysisResult, useColors bool) {
	score := result.QualityScore
	var scoreColor func(a ...interface{}) string
	var emoji string

	switch {
	case score >= 90:
		scoreColor = color.New(color.FgGreen).SprintFunc()
		emoji = "🌟"
	case score >= 75:
		scoreColor = color.New(color.FgYellow).SprintFunc()
		emoji = "⚡"
	case score >= 50:
		scoreColor = color.New(color.FgHiYellow).SprintFunc()
		emoji = "⚠️"
	default:
		scoreColor = color.New(color.FgRed).SprintFunc()
		emoji = "🚨"
	}

	if useColors {
		scoreText := scoreColor(fmt.Sprintf("%d", score))
		report.WriteString(fmt.Sprintf("%s Quality Score: %s/100\n\n", emoji, scoreText))
	} else {
		report.WriteString(fmt.Sprintf("Quality Score: %d/100\n\n", score))
	}
}

// getSeverityDisplay returns emoji and color function for a severity level
func (r *ReportGenerator) getSeverityDisplay(severity string) (string, func(a ...interface{}) string) {
	switch severity {
	case "CRITICAL":
		return "🚨", color.New(color.FgRed, color.Bold).SprintFunc()
	case "HIGH":
		return "❌", color.New(color.FgRed).SprintFunc()
	case "MEDIUM":
		return "⚠️", color.New(color.FgYellow).SprintFunc()
	case "LOW":
		return "ℹ️", color.New(color.FgBlue).SprintFunc()
	default:
		return "❓", color.New(color.FgWhite).SprintFunc()
	}
}

func (r *ReportGenerator) writeConfigInfo(report *strings.Builder, useColors bool) {
	a := r.config.Analysis
	thresholds := fmt.Sprintf("long method %d, parameters %d, chain %d, complexity %d",
		a.LongMethodThreshold, a.LongParameterListThreshold, a.MessageChainThreshold, a.ComplexityThreshold)
	keywords := strings.Join(a.DecisionKeywords, ", ")

	if useColors {
		report.WriteString(color.WhiteString("📋 Configuration:\n"))
		report.WriteString(fmt.Sprintf("   Thresholds: %s\n", color.CyanString(thresholds)))
		report.WriteString(fmt.Sprintf("   Decision keywords: %s\n", color.CyanString(keywords)))
	} else {
		report.WriteString("Configuration:\n")
		report.WriteString(fmt.Sprintf("   Thresholds: %s\n", thresholds))
		report.WriteString(fmt.Sprintf("   Decision keywords: %s\n", keywords))
	}
	report.WriteString("\n")
}

func (r *ReportGenerator) writeSummary(report *strings.Builder, result *models.AnalysisResult, useColors bool) {
	var functions, classes, longMethods int
	for _, rep := range result.Reports {
		functions += rep.Summary.Functions
		classes += rep.Summary.Classes
		longMethods += rep.Summary.LongMethods
	}

	if useColors {
		report.WriteString(color.WhiteString("📊 Summary:\n"))
	} else {
		report.WriteString("Summary:\n")
	}
	report.WriteString(fmt.Sprintf("   Files analyzed: %d\n", len(result.Files)))
	report.WriteString(fmt.Sprintf("   Classes: %d, functions: %d, long methods: %d\n", classes, functions, longMethods))
	report.WriteString(fmt.Sprintf("   Issues found: %d\n", result.TotalIssues))
	report.WriteString("\n")
}

func (r *ReportGenerator) writeIssuesSummary(report *strings.Builder, result *models.AnalysisResult, useColors bool) {
	if useColors {
		report.WriteString(color.WhiteString("📋 Issues by Severity:\n"))
	} else {
		report.WriteString("Issues by Severity:\n")
	}

	severities := []string{"CRITICAL", "HIGH", "MEDIUM", "LOW"}
	for _, severity := range severities {
		count := result.IssuesBySeverity[severity]
		if count == 0 {
			continue
		}
		if useColors {
			emoji, colorFunc := r.getSeverityDisplay(severity)
			countText := colorFunc(fmt.Sprintf("%d", count))
			report.WriteString(fmt.Sprintf("   %s %s: %s\n", emoji, severity, countText))
		} else {
			report.WriteString(fmt.Sprintf("   %s: %d\n", severity, count))
		}
	}
}

func (r *ReportGenerator) writeDetailedIssues(report *strings.Builder, result *models.AnalysisResult, useColors bool) {
	if useColors {
		report.WriteString(color.WhiteString("\n🔍 Detailed Issues:\n"))
	} else {
		report.WriteString("\nDetailed Issues:\n")
	}
	report.WriteString(strings.Repeat("─", 50) + "\n\n")

	// Sort issues by severity (critical first), keeping source order within a level
	sortedIssues := make([]models.Issue, len(result.Issues))
	copy(sortedIssues, result.Issues)
	sort.SliceStable(sortedIssues, func(i, j int) bool {
		return sortedIssues[i].Severity > sortedIssues[j].Severity
	})

	for i, issue := range sortedIssues {
		r.writeIssueDetail(report, issue, i+1, useColors)
		report.WriteString("\n")
	}
}

func (r *ReportGenerator) writeIssueDetail(report *strings.Builder, issue models.Issue, index int, useColors bool) {
	if !useColors {
		report.WriteString(fmt.Sprintf("Issue #%d - %s %s\n",
			index, issue.Severity.String(), strings.ToUpper(string(issue.Type))))
		report.WriteString(fmt.Sprintf("   Location: %s:%d:%d", issue.File, issue.Line, issue.Column))
		if issue.Function != "" {
			report.WriteString(fmt.Sprintf(" in function '%s'", issue.Function))
		}
		report.WriteString("\n")
		report.WriteString(fmt.Sprintf("   Issue: %s\n", issue.Message))
		if issue.Metric != "" {
			report.WriteString(fmt.Sprintf("   Metric: %s\n", issue.Metric))
		}
		report.WriteString("   Suggestion:\n")
		for _, line := range strings.Split(issue.Suggestion, "\n") {
			if strings.TrimSpace(line) != "" {
				report.WriteString(fmt.Sprintf("      %s\n", strings.TrimSpace(line)))
			}
		}
		return
	}

	emoji, severityColor := r.getSeverityDisplay(issue.Severity.String())
	report.WriteString(fmt.Sprintf("%s Issue #%d - %s %s\n",
		emoji, index, severityColor(issue.Severity.String()),
		color.WhiteString(strings.ToUpper(string(issue.Type)))))

	report.WriteString(color.CyanString("   📍 Location: %s:%d:%d", issue.File, issue.Line, issue.Column))
	if issue.Function != "" {
		report.WriteString(color.CyanString(" in function '%s'", issue.Function))
	}
	report.WriteString("\n")

	report.WriteString(color.WhiteString("   💭 Issue: %s\n", issue.Message))
	if issue.Metric != "" {
		report.WriteString(color.YellowString("   📊 %s\n", issue.Metric))
	}

	report.WriteString(color.GreenString("   💡 Suggestion:\n"))
	for _, line := range strings.Split(issue.Suggestion, "\n") {
		if strings.TrimSpace(line) != "" {
			report.WriteString(color.GreenString("      %s\n", strings.TrimSpace(line)))
		}
	}
}
