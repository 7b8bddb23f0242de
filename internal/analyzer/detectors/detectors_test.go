package detectors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"excavator/internal/ast"
	. "excavator/internal/ast/asttest"
	"excavator/internal/config"
	actx "excavator/internal/context"
	"excavator/internal/models"
)

func complexityOf(t *testing.T, c *actx.AnalysisContext, body ...*ast.Node) int {
	t.Helper()
	var m models.FunctionMetrics
	require.NoError(t, NewComplexityDetector().Detect(Func("f", 1, 2, body...), c, &m))
	return m.CyclomaticComplexity
}

func TestComplexityStraightLineIsOne(t *testing.T) {
	c := actx.Default()
	assert.Equal(t, 1, complexityOf(t, c, Pass()))
	assert.Equal(t, 1, complexityOf(t, c,
		Assign("x", Num("1")),
		Expr(Method(Name("log"), "info", Str("done"))),
		Return(Name("x")),
	))
}

func TestComplexityCountsEachDecisionPoint(t *testing.T) {
	// if / elif / else, one for, one while, one handler
	body := []*ast.Node{
		If(Compare(Name("a"), Num("0")), []*ast.Node{Pass()},
			Elif(Compare(Name("a"), Num("1")), []*ast.Node{Pass()},
				Pass(), // plain else adds nothing
			),
		),
		For(Name("items"), Pass()),
		While(Name("running"), Pass()),
		Try([]*ast.Node{Pass()}, Except(Pass())),
	}
	assert.Equal(t, 6, complexityOf(t, actx.Default(), body...))
}

func TestComplexityMatchExcludesWildcard(t *testing.T) {
	match := Match(Name("kind"),
		Case("1", Pass()),
		Case("2", Pass()),
		Case("3", Pass()),
		Case("4", Pass()),
		Case("_", Pass()),
	)
	assert.Equal(t, 1+4, complexityOf(t, actx.Default(), match))

	withoutWildcard := Match(Name("kind"), Case("1", Pass()), Case("2", Pass()), Case("3", Pass()))
	assert.Equal(t, 1+3, complexityOf(t, actx.Default(), withoutWildcard))
}

func TestComplexityGuardedCaseWildcardCounts(t *testing.T) {
	guarded := Case("_", Pass())
	guarded.Wildcard = false
	guarded.Test = Name("ready")
	assert.Equal(t, 2, complexityOf(t, actx.Default(), Match(Name("x"), guarded)))
}

func TestComplexityBooleanOperatorsOnlyInGuards(t *testing.T) {
	c := actx.Default()

	// if a or b or c: two joins
	guard := If(Or(Name("a"), Name("b"), Name("c")), []*ast.Node{Pass()})
	assert.Equal(t, 1+1+2, complexityOf(t, c, guard))

	// nested: if (a and b) or c
	nested := If(Or(And(Name("a"), Name("b")), Name("c")), []*ast.Node{Pass()})
	assert.Equal(t, 1+1+2, complexityOf(t, c, nested))

	// x = a or b is not a guard
	assert.Equal(t, 1, complexityOf(t, c, Assign("x", Or(Name("a"), Name("b")))))

	// while a and b
	assert.Equal(t, 1+1+1, complexityOf(t, c, While(And(Name("a"), Name("b")), Pass())))
}

func TestComplexityComprehensionClauses(t *testing.T) {
	comp := ListComp(Name("item"), Name("items"), Compare(Name("item"), Num("3")))
	assert.Equal(t, 1+1+1, complexityOf(t, actx.Default(), Return(comp)))
}

func TestComplexitySkipsNestedScopes(t *testing.T) {
	inner := Func("inner", 2, 4, If(Name("x"), []*ast.Node{Pass()}), For(Name("y"), Pass()))
	lambda := Assign("f", Lambda(&ast.Node{
		Kind: ast.KindIf, Keyword: "if", Test: Name("a"),
		Body: []*ast.Node{Num("1")}, Orelse: []*ast.Node{Num("2")},
	}))
	assert.Equal(t, 1, complexityOf(t, actx.Default(), inner, lambda))
}

func TestComplexityUnknownKeywordIsUnsupported(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Analysis.DecisionKeywords = []string{"if", "for", "while", "except", "and", "or"}
	c, err := actx.FromConfig(cfg)
	require.NoError(t, err)

	match := Match(Name("x"), Case("1", Pass()))
	match.Cases[0].Span = ast.Span{Start: ast.Position{Line: 7, Column: 8}, End: ast.Position{Line: 8, Column: 12}}

	var m models.FunctionMetrics
	err = NewComplexityDetector().Detect(Func("f", 1, 9, match), c, &m)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrUnsupportedConstruct))

	var ce *models.ConstructError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ast.KindCase, ce.Kind)
	assert.Equal(t, "case", ce.Keyword)
	assert.Equal(t, 7, ce.Span.Start.Line)
	assert.Zero(t, m.CyclomaticComplexity)

	elif := If(Name("a"), nil, Elif(Name("b"), nil))
	err = NewComplexityDetector().Detect(Func("g", 1, 3, elif), c, &m)
	assert.ErrorIs(t, err, models.ErrUnsupportedConstruct)
}

func TestComplexityUnknownNodeKindIsUnsupported(t *testing.T) {
	stray := &ast.Node{Kind: ast.KindModule}
	var m models.FunctionMetrics
	err := NewComplexityDetector().Detect(Func("f", 1, 2, stray), actx.Default(), &m)
	assert.ErrorIs(t, err, models.ErrUnsupportedConstruct)
}

func TestComplexityDegenerateBoolOpIsMalformed(t *testing.T) {
	var m models.FunctionMetrics
	err := NewComplexityDetector().Detect(Func("f", 1, 2, If(Or(Name("a")), nil)), actx.Default(), &m)
	assert.ErrorIs(t, err, models.ErrMalformedAst)
}

func TestFunctionLengthBoundary(t *testing.T) {
	c := actx.Default()
	tests := []struct {
		name     string
		start    int
		end      int
		wantLOC  int
		wantLong bool
	}{
		{"single line", 5, 5, 1, false},
		{"fourteen lines", 10, 23, 14, false},
		{"fifteen lines", 10, 24, 15, true},
		{"twenty lines", 81, 100, 20, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m models.FunctionMetrics
			require.NoError(t, NewFunctionLengthDetector().Detect(Func("f", tt.start, tt.end, Pass()), c, &m))
			assert.Equal(t, tt.wantLOC, m.LineCount)
			assert.Equal(t, tt.wantLong, m.IsLongMethod)
		})
	}
}

func TestFunctionLengthInvertedSpanIsMalformed(t *testing.T) {
	var m models.FunctionMetrics
	err := NewFunctionLengthDetector().Detect(Func("f", 10, 9, Pass()), actx.Default(), &m)
	assert.ErrorIs(t, err, models.ErrMalformedAst)
}

func TestMaxChainDepth(t *testing.T) {
	s := Name("s")
	x, y := Name("x"), Name("y")
	tests := []struct {
		name string
		body []*ast.Node
		want int
	}{
		{"no chain", []*ast.Node{Return(Name("x"))}, 0},
		{"plain call", []*ast.Node{Expr(Call(Name("len"), Name("x")))}, 0},
		{"attribute", []*ast.Node{Return(Attr(Name("self"), "x"))}, 1},
		{"two calls", []*ast.Node{Expr(Method(Method(Name("x"), "f"), "g"))}, 2},
		{"three links after base", []*ast.Node{Expr(Method(Method(Method(Name("a"), "op1"), "op2"), "op3"))}, 3},
		{"strip upper replace replace", []*ast.Node{
			Return(Method(Method(Method(Method(s, "strip"), "upper"), "replace", x, y), "replace", x, y)),
		}, 4},
		{"arguments start new chains", []*ast.Node{
			Expr(Method(Name("a"), "f", Method(Method(Method(Name("b"), "g"), "h"), "i"))),
		}, 3},
		{"temporary breaks the chain", []*ast.Node{
			Assign("t", Method(Name("s"), "strip")),
			Return(Method(Name("t"), "upper")),
		}, 1},
		{"max across statements", []*ast.Node{
			Expr(Method(Name("a"), "f")),
			If(Name("c"), []*ast.Node{Expr(Method(Method(Name("b"), "f"), "g"))}),
		}, 2},
		{"nested function ignored", []*ast.Node{
			Func("inner", 3, 4, Expr(Method(Method(Method(Name("a"), "b"), "c"), "d"))),
		}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m models.FunctionMetrics
			require.NoError(t, NewMessageChainDetector().Detect(Func("f", 1, 10, tt.body...), actx.Default(), &m))
			assert.Equal(t, tt.want, m.MaxChainDepth)
		})
	}
}

func TestMaxChainDepthMissingReceiverIsMalformed(t *testing.T) {
	_, err := MaxChainDepth([]*ast.Node{Expr(&ast.Node{Kind: ast.KindAttribute, Name: "x"})})
	assert.ErrorIs(t, err, models.ErrMalformedAst)

	_, err = MaxChainDepth([]*ast.Node{Expr(&ast.Node{Kind: ast.KindCall})})
	assert.ErrorIs(t, err, models.ErrMalformedAst)
}

func TestExceptionDetector(t *testing.T) {
	c := actx.Default()
	tests := []struct {
		name string
		body []*ast.Node
		want bool
	}{
		{"none", []*ast.Node{Pass()}, false},
		{"try except", []*ast.Node{Try([]*ast.Node{Pass()}, Except(Pass()))}, true},
		{"try finally only", []*ast.Node{{Kind: ast.KindTry, Body: []*ast.Node{Pass()}, Finally: []*ast.Node{Pass()}}}, false},
		{"inside loop", []*ast.Node{For(Name("x"), Try([]*ast.Node{Pass()}, Except(Pass())))}, true},
		{"only in nested function", []*ast.Node{Func("inner", 2, 5, Try([]*ast.Node{Pass()}, Except(Pass())))}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m models.FunctionMetrics
			require.NoError(t, NewExceptionDetector().Detect(Func("f", 1, 6, tt.body...), c, &m))
			assert.Equal(t, tt.want, m.HasTryExcept)
		})
	}
}

func TestParameterDetector(t *testing.T) {
	c := actx.Default()

	fn := Func("calculate", 1, 2, Pass())
	fn.Params = []string{"self", "a", "b", "c", "d", "e"}
	var m models.FunctionMetrics
	require.NoError(t, NewParameterDetector().Detect(fn, c, &m))
	assert.Equal(t, 6, m.ParameterCount)
	assert.True(t, m.IsLongParameterList)

	fn.Params = []string{"self", "a", "b", "c"}
	require.NoError(t, NewParameterDetector().Detect(fn, c, &m))
	assert.Equal(t, 4, m.ParameterCount)
	assert.False(t, m.IsLongParameterList)
}
