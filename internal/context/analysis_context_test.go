package context

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"excavator/internal/config"
	"excavator/internal/models"
)

func TestDefaultMatchesConfigDefaults(t *testing.T) {
	c := Default()
	assert.Equal(t, 15, c.LongMethodThreshold)
	assert.Equal(t, 4, c.LongParameterListThreshold)
	assert.Equal(t, 4, c.MessageChainThreshold)
	assert.ElementsMatch(t, DefaultDecisionKeywords, c.Keywords())
}

func TestDispatchFor(t *testing.T) {
	c := Default()
	assert.Equal(t, models.DispatchInstance, c.DispatchFor(nil))
	assert.Equal(t, models.DispatchInstance, c.DispatchFor([]string{"logged"}))
	assert.Equal(t, models.DispatchClass, c.DispatchFor([]string{"classmethod"}))
	assert.Equal(t, models.DispatchStatic, c.DispatchFor([]string{"logged", "staticmethod"}))
	assert.Equal(t, models.DispatchClass, c.DispatchFor([]string{"classmethod", "staticmethod"}))
}

func TestCustomDispatchMarker(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Analysis.DispatchMarkers["abc.abstractclassmethod"] = "class"

	c, err := FromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, models.DispatchClass, c.DispatchFor([]string{"abc.abstractclassmethod"}))
}

func TestFromConfigRejectsUnknownDispatch(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Analysis.DispatchMarkers["property"] = "getter"

	_, err := FromConfig(cfg)
	assert.Error(t, err)
}

func TestIsDecisionKeyword(t *testing.T) {
	c := Default()
	assert.True(t, c.IsDecisionKeyword("elif"))
	assert.True(t, c.IsDecisionKeyword("except*"))
	assert.False(t, c.IsDecisionKeyword("else"))
	assert.False(t, c.IsDecisionKeyword("switch"))
}
