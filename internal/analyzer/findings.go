package analyzer

import (
	"fmt"

	actx "excavator/internal/context"
	"excavator/internal/models"
)

// Findings turns a report's metrics into human-facing issues, ordered by
// declaration. They feed the console and JSON reports only.
func Findings(report *models.AnalysisReport, c *actx.AnalysisContext) []models.Issue {
	var issues []models.Issue
	for _, decl := range report.Functions() {
		m, ok := report.Metrics[decl.QualifiedName]
		if !ok {
			continue
		}
		base := models.Issue{
			File:     report.Path,
			Line:     decl.Span.Start.Line,
			Column:   decl.Span.Start.Column,
			Function: decl.QualifiedName,
		}

		if m.CyclomaticComplexity > c.ComplexityThreshold {
			issue := base
			issue.Type = models.IssueCyclomaticComplex
			issue.Severity = complexitySeverity(m.CyclomaticComplexity)
			issue.Message = fmt.Sprintf("Function '%s' has high cyclomatic complexity: %d", decl.Name, m.CyclomaticComplexity)
			issue.Suggestion = complexitySuggestion(m.CyclomaticComplexity)
			issue.Metric = fmt.Sprintf("Complexity: %d", m.CyclomaticComplexity)
			issues = append(issues, issue)
		}

		if m.IsLongMethod {
			issue := base
			issue.Type = models.IssueLongMethod
			issue.Severity = lengthSeverity(m.LineCount, c.LongMethodThreshold)
			issue.Message = fmt.Sprintf("Function '%s' spans %d lines", decl.Name, m.LineCount)
			issue.Suggestion = lengthSuggestion(issue.Severity)
			issue.Metric = fmt.Sprintf("Function length: %d lines", m.LineCount)
			issues = append(issues, issue)
		}

		if m.MaxChainDepth >= c.MessageChainThreshold {
			issue := base
			issue.Type = models.IssueMessageChain
			issue.Severity = models.SeverityLow
			issue.Message = fmt.Sprintf("Function '%s' chains %d calls in one expression", decl.Name, m.MaxChainDepth)
			issue.Suggestion = "Introduce a local variable or a helper method so callers do not navigate through intermediate objects"
			issue.Metric = fmt.Sprintf("Chain depth: %d", m.MaxChainDepth)
			issues = append(issues, issue)
		}

		if m.IsLongParameterList {
			issue := base
			issue.Type = models.IssueLongParameterList
			issue.Severity = models.SeverityLow
			if m.ParameterCount > 2*c.LongParameterListThreshold {
				issue.Severity = models.SeverityMedium
			}
			issue.Message = fmt.Sprintf("Function '%s' takes %d parameters", decl.Name, m.ParameterCount)
			issue.Suggestion = "Group related parameters into a parameter object or a dataclass"
			issue.Metric = fmt.Sprintf("Parameters: %d", m.ParameterCount)
			issues = append(issues, issue)
		}
	}
	return issues
}

func complexitySeverity(complexity int) models.Severity {
	switch {
	case complexity <= 15:
		return models.SeverityMedium
	case complexity <= 25:
		return models.SeverityHigh
	default:
		return models.SeverityCritical
	}
}

func complexitySuggestion(complexity int) string {
	suggestions := []string{
		"Consider breaking this function into smaller, single-purpose functions",
		"Use early returns to reduce nesting levels",
		"Extract complex conditional logic into separate functions",
		"Consider a dispatch table or a match statement for long if/elif chains",
	}

	switch {
	case complexity <= 15:
		return suggestions[0] + ". " + suggestions[1]
	case complexity <= 25:
		return suggestions[0] + ". " + suggestions[2] + ". " + suggestions[1]
	default:
		return suggestions[3] + ". " + suggestions[0]
	}
}

// lengthSeverity grades a long method by how far past the threshold it is.
func lengthSeverity(lines, threshold int) models.Severity {
	switch {
	case lines >= 4*threshold:
		return models.SeverityCritical
	case lines >= 3*threshold:
		return models.SeverityHigh
	case lines >= 2*threshold:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

func lengthSuggestion(severity models.Severity) string {
	base := `Long functions are harder to understand, test, and maintain.
1. Extract Method: move logical blocks into separate functions
2. Replace loops that build lists with comprehensions or helpers`
	switch severity {
	case models.SeverityHigh, models.SeverityCritical:
		return base + "\nPRIORITY: split this function before adding more behavior to it"
	default:
		return base
	}
}
