package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 15, cfg.Analysis.LongMethodThreshold)
	assert.Equal(t, "class", cfg.Analysis.DispatchMarkers["classmethod"])
	assert.Equal(t, "static", cfg.Analysis.DispatchMarkers["staticmethod"])
	assert.Equal(t, ".golden", cfg.Golden.Suffix)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excavator.yml")
	content := `analysis:
  long_method_threshold: 20
  dispatch_markers:
    classmethod: class
    staticmethod: static
    abstractclassmethod: class
golden:
  suffix: .expected
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Analysis.LongMethodThreshold)
	assert.Equal(t, 4, cfg.Analysis.MaxWorkers, "unset keys keep defaults")
	assert.Equal(t, "class", cfg.Analysis.DispatchMarkers["abstractclassmethod"])
	assert.Equal(t, ".expected", cfg.Golden.Suffix)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"format", func(c *Config) { c.Output.Format = "html" }},
		{"workers", func(c *Config) { c.Analysis.MaxWorkers = 0 }},
		{"threshold", func(c *Config) { c.Analysis.LongMethodThreshold = 0 }},
		{"keywords", func(c *Config) { c.Analysis.DecisionKeywords = nil }},
		{"dispatch", func(c *Config) { c.Analysis.DispatchMarkers["bogus"] = "virtual" }},
		{"suffix", func(c *Config) { c.Golden.Suffix = "" }},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGenerateConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".excavator.yml")
	require.NoError(t, GenerateConfig(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Analysis.DecisionKeywords, cfg.Analysis.DecisionKeywords)
}
