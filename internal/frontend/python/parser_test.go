package python

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"excavator/internal/ast"
)

func parse(t *testing.T, src string) *ast.Node {
	t.Helper()
	root, err := NewParser().Parse(context.Background(), []byte(src), "pkg/sample.py")
	require.NoError(t, err)
	require.Equal(t, ast.KindModule, root.Kind)
	return root
}

func TestParseModuleName(t *testing.T) {
	root := parse(t, "x = 1\n")
	assert.Equal(t, "sample", root.Name)
	assert.Equal(t, "orders", ModuleName("/srv/app/orders.py"))
	assert.Equal(t, "stubs", ModuleName("stubs.pyi"))
}

func TestParseFunctionSpanAndParams(t *testing.T) {
	root := parse(t, `def area(width, height=1, *args, key, **opts):
    """Area."""
    return width * height
`)
	require.Len(t, root.Body, 1)
	fn := root.Body[0]
	assert.Equal(t, ast.KindFunctionDef, fn.Kind)
	assert.Equal(t, "area", fn.Name)
	assert.Equal(t, []string{"width", "height", "args", "key", "opts"}, fn.Params)
	assert.Equal(t, 1, fn.Span.Start.Line)
	assert.Equal(t, 3, fn.Span.End.Line)
	require.NotEmpty(t, fn.Body)
	assert.True(t, fn.Body[0].Value.IsStringLiteral())
}

func TestParseSkipsParameterSeparators(t *testing.T) {
	root := parse(t, "def f(a, /, b, *, c):\n    pass\n")
	assert.Equal(t, []string{"a", "b", "c"}, root.Body[0].Params)
}

func TestParseDecorators(t *testing.T) {
	root := parse(t, `class Box:
    @staticmethod
    def make():
        pass

    @functools.cache
    @retry(3)
    def load(self):
        pass
`)
	class := root.Body[0]
	require.Equal(t, ast.KindClassDef, class.Kind)
	require.Len(t, class.Body, 2)

	var names [][]string
	for _, fn := range class.Body {
		var ds []string
		for _, d := range fn.Decorators {
			ds = append(ds, d.Name)
		}
		names = append(names, ds)
	}
	assert.Equal(t, [][]string{{"staticmethod"}, {"functools.cache", "retry"}}, names)
}

func TestParseEnumDetection(t *testing.T) {
	root := parse(t, `class Color(enum.IntEnum):
    RED = 1
    GREEN = 2

class Plain(Base):
    RED = 1
`)
	require.Len(t, root.Body, 2)

	enum := root.Body[0]
	assert.Equal(t, ast.KindEnumDef, enum.Kind)
	require.Len(t, enum.Body, 2)
	assert.Equal(t, ast.KindEnumMember, enum.Body[0].Kind)
	assert.Equal(t, "RED", enum.Body[0].Name)
	assert.Equal(t, "1", enum.Body[0].Value.Text)
	assert.Equal(t, 2, enum.Body[1].Span.Start.Line)

	plain := root.Body[1]
	assert.Equal(t, ast.KindClassDef, plain.Kind)
	assert.Equal(t, ast.KindAssign, plain.Body[0].Kind)
}

func TestParseFinalClassConstant(t *testing.T) {
	root := parse(t, `class Limits:
    MAX: Final = 10
    hint: int = 3
`)
	body := root.Body[0].Body
	require.Len(t, body, 2)
	assert.Equal(t, ast.KindClassConstant, body[0].Kind)
	assert.Equal(t, "MAX", body[0].Name)
	assert.Equal(t, "10", body[0].Value.Text)
	assert.Equal(t, ast.KindAssign, body[1].Kind)
}

func TestParseFinalNeedsLiteral(t *testing.T) {
	root := parse(t, `class Limits:
    LIMIT: Final = compute()
    LOW: Final = -1
`)
	body := root.Body[0].Body
	require.Len(t, body, 2)
	assert.Equal(t, ast.KindAssign, body[0].Kind)
	assert.Equal(t, ast.KindCall, body[0].Value.Kind)
	assert.Equal(t, ast.KindClassConstant, body[1].Kind)
	assert.Equal(t, "-1", body[1].Value.Text)
}

func TestParseSignedNumbers(t *testing.T) {
	root := parse(t, "a = -1\nb = +2.5\nc = -x\nd = ~1\n")
	require.Len(t, root.Body, 4)
	for i, want := range []string{"-1", "+2.5"} {
		v := root.Body[i].Value
		assert.Equal(t, ast.KindLiteral, v.Kind)
		assert.Equal(t, ast.LiteralNumber, v.LiteralKind)
		assert.Equal(t, want, v.Text)
	}
	assert.Equal(t, ast.KindGeneric, root.Body[2].Value.Kind)
	assert.Equal(t, ast.KindGeneric, root.Body[3].Value.Kind)
}

func TestParseEnumMemberText(t *testing.T) {
	root := parse(t, `class Color(Enum):
    RED = auto()
    BLUE = -1
`)
	members := root.Body[0].Body
	require.Len(t, members, 2)
	assert.Equal(t, "auto()", members[0].Text)
	assert.Equal(t, ast.KindCall, members[0].Value.Kind)
	assert.Equal(t, "-1", members[1].Text)
}

func TestParseInterpolatedString(t *testing.T) {
	root := parse(t, `def f(s, c, w):
    """Plain docstring."""
    return f"{s.strip()} {1 if c else 2} {w!r}" "tail"
`)
	fn := root.Body[0]
	assert.True(t, fn.Body[0].Value.IsStringLiteral())

	var fstring *ast.Node
	ast.InspectBody(fn.Body[1:], func(n *ast.Node) bool {
		if fstring == nil && n.Kind == ast.KindGeneric && n.Text == "concatenated_string" {
			fstring = n
		}
		return true
	})
	require.NotNil(t, fstring)

	var kinds []ast.Kind
	for _, c := range fstring.Children {
		kinds = append(kinds, c.Kind)
	}
	assert.Equal(t, []ast.Kind{ast.KindCall, ast.KindIf, ast.KindName}, kinds)
}

func TestParseElifChain(t *testing.T) {
	root := parse(t, `def grade(n):
    if n > 90:
        return "a"
    elif n > 80:
        return "b"
    elif n > 70:
        return "c"
    else:
        return "f"
`)
	top := root.Body[0].Body[0]
	require.Equal(t, ast.KindIf, top.Kind)
	assert.Equal(t, "if", top.Keyword)

	var keywords []string
	for n := top; n != nil; {
		keywords = append(keywords, n.Keyword)
		if len(n.Orelse) != 1 || n.Orelse[0].Kind != ast.KindIf {
			require.Len(t, n.Orelse, 1)
			assert.Equal(t, ast.KindGeneric, n.Orelse[0].Kind)
			break
		}
		n = n.Orelse[0]
	}
	assert.Equal(t, []string{"if", "elif", "elif"}, keywords)
}

func TestParseMatchWildcard(t *testing.T) {
	root := parse(t, `def route(cmd):
    match cmd:
        case "go" | "run":
            pass
        case _ if cmd:
            pass
        case _:
            pass
`)
	match := root.Body[0].Body[0]
	require.Equal(t, ast.KindMatch, match.Kind)
	require.Len(t, match.Cases, 3)
	assert.False(t, match.Cases[0].Wildcard)
	assert.False(t, match.Cases[1].Wildcard)
	assert.NotNil(t, match.Cases[1].Test)
	assert.True(t, match.Cases[2].Wildcard)
}

func TestParseComprehensionClauses(t *testing.T) {
	root := parse(t, "def f(rows):\n    return [c for r in rows for c in r if c]\n")
	var kinds []ast.Kind
	ast.InspectBody(root.Body[0].Body, func(n *ast.Node) bool {
		if n.Kind == ast.KindComprehension {
			for _, c := range n.Children {
				kinds = append(kinds, c.Kind)
			}
			return false
		}
		return true
	})
	assert.Equal(t, []ast.Kind{ast.KindName, ast.KindFor, ast.KindFor, ast.KindIf}, kinds)
}

func TestParseTryHandlers(t *testing.T) {
	root := parse(t, `def f():
    try:
        pass
    except ValueError:
        pass
    except (KeyError, TypeError) as e:
        pass
    finally:
        pass
`)
	try := root.Body[0].Body[0]
	require.Equal(t, ast.KindTry, try.Kind)
	require.Len(t, try.Handlers, 2)
	assert.Equal(t, "except", try.Handlers[0].Keyword)
	assert.NotEmpty(t, try.Finally)
}

func TestParseBooleanOperator(t *testing.T) {
	root := parse(t, "def f(a, b):\n    if a or b:\n        pass\n")
	test := root.Body[0].Body[0].Test
	require.Equal(t, ast.KindBoolOp, test.Kind)
	assert.Equal(t, "or", test.Keyword)
	assert.Len(t, test.Operands, 2)
}

func TestParseSkipsComments(t *testing.T) {
	root := parse(t, "# header\ndef f():\n    # body\n    pass\n")
	require.Len(t, root.Body, 1)
	assert.Len(t, root.Body[0].Body, 1)
}

func TestParseErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewParser().Parse(ctx, []byte("def broken(:\n    pass\n"), "broken.py")
	assert.ErrorIs(t, err, ErrSyntax)
	assert.Contains(t, err.Error(), "broken.py")

	_, err = NewParser().Parse(ctx, []byte{0xff, 0xfe, 'x'}, "binary.py")
	assert.ErrorIs(t, err, ErrInvalidContent)

	_, err = NewParser(WithMaxFileSize(8)).Parse(ctx, []byte(strings.Repeat("x = 1\n", 4)), "big.py")
	assert.ErrorIs(t, err, ErrFileTooLarge)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = NewParser().Parse(canceled, []byte("x = 1\n"), "x.py")
	assert.ErrorIs(t, err, context.Canceled)
}
