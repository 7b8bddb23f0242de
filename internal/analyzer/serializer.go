package analyzer

import (
	"fmt"
	"strconv"
	"strings"

	"excavator/internal/models"
)

// Serialize renders report in the canonical line format: one line per
// declaration in pre-order, one summary line per class or enum, then the
// module summary. The output is newline-terminated and depends on nothing
// but the report, so identical reports serialize to identical bytes.
func Serialize(report *models.AnalysisReport) (string, error) {
	if report == nil || report.Declarations == nil {
		return "", fmt.Errorf("%w: empty report", models.ErrMalformedAst)
	}

	var b strings.Builder
	decls := report.Declarations
	order := decls.PreOrder()

	for _, id := range order {
		if err := writeDeclaration(&b, report, decls.Get(id)); err != nil {
			return "", err
		}
	}

	for _, id := range order {
		decl := decls.Get(id)
		if decl.Kind != models.DeclClass && decl.Kind != models.DeclEnum {
			continue
		}
		s := report.Classes[decl.QualifiedName]
		fmt.Fprintf(&b, "summary %s %s methods=%d cc_total=%d cc_max=%d long_methods=%d\n",
			decl.Kind, decl.QualifiedName, s.Methods, s.TotalComplexity, s.MaxComplexity, s.LongMethods)
	}

	s := report.Summary
	fmt.Fprintf(&b, "summary module %s functions=%d classes=%d enums=%d constants=%d cc_total=%d cc_max=%d long_methods=%d long_parameter_lists=%d message_chains=%d\n",
		report.Module, s.Functions, s.Classes, s.Enums, s.Constants, s.TotalComplexity, s.MaxComplexity,
		s.LongMethods, s.LongParameterLists, s.MessageChains)

	return b.String(), nil
}

func writeDeclaration(b *strings.Builder, report *models.AnalysisReport, d models.Declaration) error {
	switch d.Kind {
	case models.DeclModule:
		fmt.Fprintf(b, "module %s docstring=%t\n", d.QualifiedName, d.HasDocstring)

	case models.DeclClass:
		fmt.Fprintf(b, "class %s docstring=%t decorators=%s lines=%s\n",
			d.QualifiedName, d.HasDocstring, decoratorList(d.Decorators), lineRange(d))

	case models.DeclEnum:
		members := 0
		for _, id := range d.Children {
			if report.Declarations.Get(id).Kind == models.DeclEnumMember {
				members++
			}
		}
		fmt.Fprintf(b, "enum %s decorators=%s lines=%s members=%d\n",
			d.QualifiedName, decoratorList(d.Decorators), lineRange(d), members)

	case models.DeclEnumMember:
		fmt.Fprintf(b, "enum_member %s value=%s line=%d\n",
			d.QualifiedName, strconv.Quote(d.Value), d.Span.Start.Line)

	case models.DeclConstant:
		fmt.Fprintf(b, "constant %s value=%s line=%d\n",
			d.QualifiedName, strconv.Quote(d.Value), d.Span.Start.Line)

	case models.DeclFunction:
		m, ok := report.Metrics[d.QualifiedName]
		if !ok {
			return fmt.Errorf("%w: no metrics for %s", models.ErrMalformedAst, d.QualifiedName)
		}
		fmt.Fprintf(b, "function %s dispatch=%s decorators=%s docstring=%t lines=%s cc=%d loc=%d long=%t chain=%d try=%t params=%d\n",
			d.QualifiedName, d.Dispatch, decoratorList(d.Decorators), d.HasDocstring, lineRange(d),
			m.CyclomaticComplexity, m.LineCount, m.IsLongMethod, m.MaxChainDepth, m.HasTryExcept, m.ParameterCount)

	default:
		return fmt.Errorf("%w: unknown declaration kind %q for %s", models.ErrMalformedAst, d.Kind, d.QualifiedName)
	}
	return nil
}

func decoratorList(names []string) string {
	return "[" + strings.Join(names, ",") + "]"
}

func lineRange(d models.Declaration) string {
	return fmt.Sprintf("%d-%d", d.Span.Start.Line, d.Span.End.Line)
}
