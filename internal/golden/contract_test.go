package golden_test

import (
	"context"
	"flag"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"excavator/internal/analyzer"
	"excavator/internal/golden"
)

var update = flag.Bool("update", false, "rewrite golden files from the current output")

func TestContractFixtures(t *testing.T) {
	sources, err := filepath.Glob(filepath.Join("..", "..", "testdata", "contract", "*.py"))
	require.NoError(t, err)
	require.NotEmpty(t, sources)

	mode := golden.ModeRead
	if *update {
		mode = golden.ModeUpdate
	}
	h := golden.New(golden.WithMode(mode))
	a := analyzer.NewAnalyzer()

	for _, source := range sources {
		t.Run(filepath.Base(source), func(t *testing.T) {
			res, err := h.Verify(context.Background(), source, a.Canonical)
			require.NoError(t, err)
			assert.NoError(t, res.Err(), res.Diff)
		})
	}
}

func TestCanonicalOutputIsStable(t *testing.T) {
	source := filepath.Join("..", "..", "testdata", "contract", "python_sample.py")
	a := analyzer.NewAnalyzer()

	first, err := a.Canonical(context.Background(), source)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := a.Canonical(context.Background(), source)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
