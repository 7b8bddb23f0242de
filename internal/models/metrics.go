package models

// FunctionMetrics belongs to exactly one function declaration.
type FunctionMetrics struct {
	CyclomaticComplexity int  `json:"cyclomatic_complexity"`
	LineCount            int  `json:"line_count"`
	IsLongMethod         bool `json:"is_long_method"`
	MaxChainDepth        int  `json:"max_chain_depth"`
	HasTryExcept         bool `json:"has_try_except"`
	ParameterCount       int  `json:"parameter_count"`
	IsLongParameterList  bool `json:"is_long_parameter_list"`
}

type ClassSummary struct {
	Methods         int `json:"methods"`
	TotalComplexity int `json:"total_complexity"`
	MaxComplexity   int `json:"max_complexity"`
	LongMethods     int `json:"long_methods"`
}

type ModuleSummary struct {
	Functions          int `json:"functions"`
	Classes            int `json:"classes"`
	Enums              int `json:"enums"`
	Constants          int `json:"constants"`
	TotalComplexity    int `json:"total_complexity"`
	MaxComplexity      int `json:"max_complexity"`
	LongMethods        int `json:"long_methods"`
	LongParameterLists int `json:"long_parameter_lists"`
	MessageChains      int `json:"message_chains"`
}

// AnalysisReport is the output of one pipeline run over one source.
type AnalysisReport struct {
	Module       string                     `json:"module"`
	Path         string                     `json:"path,omitempty"`
	Declarations *Declarations              `json:"-"`
	Metrics      map[string]FunctionMetrics `json:"metrics"`
	Classes      map[string]ClassSummary    `json:"classes"` // classes and enums
	Summary      ModuleSummary              `json:"summary"`
}

func NewAnalysisReport(module string) *AnalysisReport {
	return &AnalysisReport{
		Module:       module,
		Declarations: NewDeclarations(),
		Metrics:      make(map[string]FunctionMetrics),
		Classes:      make(map[string]ClassSummary),
	}
}

// Functions returns the function declarations in pre-order.
func (r *AnalysisReport) Functions() []Declaration {
	ids := r.Declarations.OfKind(DeclFunction)
	out := make([]Declaration, len(ids))
	for i, id := range ids {
		out[i] = r.Declarations.Get(id)
	}
	return out
}
