package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/content-cli/internal/model"
)

const competitorReply = `{
  "name": "Radiance Elixir",
  "price": 649,
  "currency": "₹",
  "category": "skincare serum",
  "key_ingredients": [
    {"name": "Niacinamide", "concentration": "5%", "purpose": "Pore refining"},
    {"name": "Bakuchiol"}
  ],
  "benefits": ["Pore refining", "Smoothing"],
  "usage_instructions": "Apply nightly.",
  "side_effects": "None reported.",
  "target_audience": ["adults"]
}`

func TestCompetitorStep(t *testing.T) {
	st := parsedState(t, serumRaw())

	completer := new(mockCompleter)
	completer.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(competitorReply, model.TokenUsage{InputTokens: 80, OutputTokens: 120}, nil)

	delta, err := CompetitorStep(context.Background(), st, completer)
	require.NoError(t, err)
	require.NotNil(t, delta.Competitor)

	// Same validation and derivation rules as the primary record.
	assert.Equal(t, "Radiance Elixir", delta.Competitor.Name)
	assert.Equal(t, "prod_radiance_elixir", delta.Competitor.ID)
	assert.Greater(t, delta.Competitor.CompletenessScore, 0.0)
	assert.Empty(t, delta.Warnings)
}

func TestCompetitorStep_OverlapWarns(t *testing.T) {
	st := parsedState(t, serumRaw())

	reply := `{"name": "Copycat Serum", "price": 550, "currency": "₹", "category": "skincare serum",
		"key_ingredients": [{"name": "vitamin c"}], "benefits": ["Brightening"]}`
	completer := new(mockCompleter)
	completer.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(reply, model.TokenUsage{}, nil)

	delta, err := CompetitorStep(context.Background(), st, completer)
	require.NoError(t, err)

	require.Len(t, delta.Warnings, 1)
	assert.Contains(t, delta.Warnings[0], "ingredient overlap")
	assert.Contains(t, delta.Warnings[0], "vitamin c")
}

func TestCompetitorStep_MalformedReply(t *testing.T) {
	st := parsedState(t, serumRaw())

	completer := new(mockCompleter)
	completer.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return("no json here", model.TokenUsage{}, nil)

	_, err := CompetitorStep(context.Background(), st, completer)
	require.Error(t, err)
	assert.Equal(t, KindGenerationParse, Classify(err))
}

func TestCompetitorStep_InvalidRecord(t *testing.T) {
	st := parsedState(t, serumRaw())

	// Valid JSON, but the fabricated record fails schema validation.
	completer := new(mockCompleter)
	completer.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"name": "Freebie", "price": -5}`, model.TokenUsage{}, nil)

	_, err := CompetitorStep(context.Background(), st, completer)
	require.Error(t, err)
	assert.Equal(t, KindStepFailure, Classify(err))
	assert.Contains(t, err.Error(), "validation")
}

func TestCompetitorStep_NoProduct(t *testing.T) {
	st := model.NewState(nil, model.InputModeJSON)
	_, err := CompetitorStep(context.Background(), st, new(mockCompleter))
	require.Error(t, err)
	assert.Equal(t, KindMissingDependency, Classify(err))
}
