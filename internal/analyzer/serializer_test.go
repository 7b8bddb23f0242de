package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "excavator/internal/ast/asttest"
	actx "excavator/internal/context"
	"excavator/internal/models"
)

func TestSerializeSample(t *testing.T) {
	out, err := Serialize(measure(t, sampleModule()))
	require.NoError(t, err)

	want := `module shop docstring=true
enum shop.Status decorators=[] lines=3-6 members=3
enum_member shop.Status.PENDING value="\"pending\"" line=4
enum_member shop.Status.ACTIVE value="\"active\"" line=5
enum_member shop.Status.CLOSED value="9" line=6
function shop.logged dispatch=instance decorators=[] docstring=false lines=8-11 cc=1 loc=4 long=false chain=0 try=false params=0
function shop.logged.wrapper dispatch=instance decorators=[] docstring=false lines=9-10 cc=1 loc=2 long=false chain=0 try=false params=0
class shop.Cart docstring=true decorators=[] lines=13-30
constant shop.Cart.MAX_ITEMS value="10" line=0
function shop.Cart.add dispatch=instance decorators=[] docstring=true lines=17-20 cc=1 loc=4 long=false chain=0 try=false params=0
function shop.Cart.total dispatch=instance decorators=[logged] docstring=false lines=22-23 cc=1 loc=2 long=false chain=0 try=false params=0
function shop.Cart.empty dispatch=class decorators=[classmethod] docstring=false lines=25-26 cc=1 loc=2 long=false chain=0 try=false params=0
function shop.Cart.check dispatch=static decorators=[staticmethod,logged] docstring=false lines=28-30 cc=1 loc=3 long=false chain=0 try=false params=0
summary enum shop.Status methods=0 cc_total=0 cc_max=0 long_methods=0
summary class shop.Cart methods=4 cc_total=4 cc_max=1 long_methods=0
summary module shop functions=6 classes=1 enums=1 constants=1 cc_total=6 cc_max=1 long_methods=0 long_parameter_lists=0 message_chains=0
`
	assert.Equal(t, want, out)
}

func TestSerializeIsDeterministic(t *testing.T) {
	first, err := Serialize(measure(t, sampleModule()))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Serialize(measure(t, sampleModule()))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSerializeFormat(t *testing.T) {
	out, err := Serialize(measure(t, sampleModule()))
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.False(t, strings.HasSuffix(out, "\n\n"))
	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		assert.NotEmpty(t, line)
	}
}

func TestSerializeQuotesValues(t *testing.T) {
	r := measure(t, Module("m", Enum("E", 1, 2, Member("A", Str("a\nb"), 2))))
	out, err := Serialize(r)
	require.NoError(t, err)
	assert.Contains(t, out, `enum_member m.E.A value="\"a\\nb\"" line=2`+"\n")
}

func TestSerializeRequiresMetrics(t *testing.T) {
	ex, err := Extract(Module("m", Func("f", 1, 2, Pass())), "", actx.Default())
	require.NoError(t, err)

	out, err := Serialize(ex.Report)
	assert.ErrorIs(t, err, models.ErrMalformedAst)
	assert.Empty(t, out)

	_, err = Serialize(nil)
	assert.ErrorIs(t, err, models.ErrMalformedAst)
}
