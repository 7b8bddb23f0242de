package models

type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type IssueType string

const (
	IssueCyclomaticComplex IssueType = "cyclomatic_complexity"
	IssueLongMethod        IssueType = "long_method"
	IssueMessageChain      IssueType = "message_chain"
	IssueLongParameterList IssueType = "long_parameter_list"
)

// Issue is a human-facing smell derived from a function's metrics. Issues
// never appear in the canonical report.
type Issue struct {
	Type       IssueType `json:"type"`
	Severity   Severity  `json:"severity"`
	File       string    `json:"file"`
	Line       int       `json:"line"`
	Column     int       `json:"column"`
	Function   string    `json:"function,omitempty"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion"`
	Metric     string    `json:"metric,omitempty"` // e.g. "Complexity: 12"
}

type AnalysisResult struct {
	Files            []string          `json:"files_analyzed"`
	Reports          []*AnalysisReport `json:"-"`
	TotalIssues      int               `json:"total_issues"`
	IssuesBySeverity map[string]int    `json:"issues_by_severity"`
	Issues           []Issue           `json:"issues"`
	QualityScore     int               `json:"quality_score"` // 0-100 scale
	AnalysisDuration string            `json:"analysis_duration"`
}

func NewAnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		Files:            make([]string, 0),
		Issues:           make([]Issue, 0),
		IssuesBySeverity: make(map[string]int),
	}
}

func (ar *AnalysisResult) AddReport(file string, report *AnalysisReport) {
	ar.Files = append(ar.Files, file)
	ar.Reports = append(ar.Reports, report)
}

func (ar *AnalysisResult) AddIssue(issue Issue) {
	ar.Issues = append(ar.Issues, issue)
	ar.TotalIssues++
	ar.IssuesBySeverity[issue.Severity.String()]++
}

func (ar *AnalysisResult) CalculateScore() {
	if ar.TotalIssues == 0 {
		ar.QualityScore = 100
		return
	}

	penalty := 0
	for _, issue := range ar.Issues {
		basePenalty := 0
		switch issue.Severity {
		case SeverityLow:
			basePenalty = 5
		case SeverityMedium:
			basePenalty = 15
		case SeverityHigh:
			basePenalty = 30
		case SeverityCritical:
			basePenalty = 50
		}

		// Structural smells weigh more than stylistic ones
		switch issue.Type {
		case IssueCyclomaticComplex, IssueLongMethod:
			basePenalty = int(float64(basePenalty) * 1.2)
		case IssueMessageChain:
			basePenalty = int(float64(basePenalty) * 1.1)
		}

		penalty += basePenalty
	}

	ar.QualityScore = max(100-penalty, 0)
}
