package context

import (
	"fmt"
	"sort"

	"excavator/internal/config"
	"excavator/internal/models"
)

// AnalysisContext carries the rule set every detector consults
type AnalysisContext struct {
	LongMethodThreshold        int
	LongParameterListThreshold int
	MessageChainThreshold      int
	ComplexityThreshold        int

	DecisionKeywords map[string]bool
	DispatchMarkers  map[string]models.Dispatch
}

// DefaultDecisionKeywords is the Python subset the calculator understands.
var DefaultDecisionKeywords = []string{"if", "elif", "for", "while", "case", "except", "except*", "and", "or"}

func Default() *AnalysisContext {
	actx, err := FromConfig(config.DefaultConfig())
	if err != nil {
		// defaults are static; a failure here is a programming error
		panic(err)
	}
	return actx
}

func FromConfig(cfg *config.Config) (*AnalysisContext, error) {
	a := cfg.Analysis
	actx := &AnalysisContext{
		LongMethodThreshold:        a.LongMethodThreshold,
		LongParameterListThreshold: a.LongParameterListThreshold,
		MessageChainThreshold:      a.MessageChainThreshold,
		ComplexityThreshold:        a.ComplexityThreshold,
		DecisionKeywords:           make(map[string]bool, len(a.DecisionKeywords)),
		DispatchMarkers:            make(map[string]models.Dispatch, len(a.DispatchMarkers)),
	}
	for _, kw := range a.DecisionKeywords {
		actx.DecisionKeywords[kw] = true
	}
	for marker, target := range a.DispatchMarkers {
		d, err := models.ParseDispatch(target)
		if err != nil {
			return nil, fmt.Errorf("dispatch marker %q: %w", marker, err)
		}
		actx.DispatchMarkers[marker] = d
	}
	return actx, nil
}

// IsDecisionKeyword reports whether kw is part of the configured grammar subset.
func (c *AnalysisContext) IsDecisionKeyword(kw string) bool {
	return c.DecisionKeywords[kw]
}

// DispatchFor resolves a function's dispatch modifier from its decorators.
// The first decorator that names a marker wins.
func (c *AnalysisContext) DispatchFor(decorators []string) models.Dispatch {
	for _, name := range decorators {
		if d, ok := c.DispatchMarkers[name]; ok {
			return d
		}
	}
	return models.DispatchInstance
}

// Keywords returns the configured decision keywords, sorted.
func (c *AnalysisContext) Keywords() []string {
	out := make([]string, 0, len(c.DecisionKeywords))
	for kw := range c.DecisionKeywords {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}
