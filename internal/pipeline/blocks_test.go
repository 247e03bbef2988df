package pipeline

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/content-cli/internal/model"
)

func TestBlocksStep_FullRecord(t *testing.T) {
	st := parsedState(t, serumRaw())

	delta, err := BlocksStep(context.Background(), st, nil, EnhanceOptions{})
	require.NoError(t, err)
	require.NotNil(t, delta.Blocks)
	assert.Equal(t, model.StatusBuilding, delta.Status)

	overview := delta.Blocks.Get(model.BlockOverview)
	require.NotNil(t, overview)
	assert.Equal(t, "Glow Serum is a skincare serum featuring Vitamin C designed to provide brightening.", overview.Content)
	assert.Equal(t, model.StatusBlockComplete, overview.Status)

	benefits := delta.Blocks.Get(model.BlockBenefits)
	require.NotNil(t, benefits)
	content := benefits.StructuredContent()
	assert.Equal(t, "Glow Serum provides brightening, hydration.", content["formatted_text"])

	ingredients := delta.Blocks.Get(model.BlockIngredients)
	require.NotNil(t, ingredients)
	assert.Equal(t, 2, ingredients.StructuredContent()["count"])
	assert.Equal(t,
		"Key ingredients include: Vitamin C (10%) for brightening, Hyaluronic Acid.",
		ingredients.StructuredContent()["formatted_text"])

	safety := delta.Blocks.Get(model.BlockSafety)
	require.NotNil(t, safety)
	assert.Equal(t, model.StatusBlockComplete, safety.Status)
	assert.Equal(t, "Safety information: Mild tingling on first use.", safety.StructuredContent()["formatted_text"])

	// No competitor and no questions yet.
	assert.Nil(t, delta.Blocks.Get(model.BlockComparison))
	assert.Empty(t, delta.Blocks.FAQAnswers)
}

func TestBlocksStep_SparseRecordFallbacks(t *testing.T) {
	st := parsedState(t, map[string]any{"name": "X", "price": float64(100), "currency": "$"})

	delta, err := BlocksStep(context.Background(), st, nil, EnhanceOptions{})
	require.NoError(t, err)

	assert.Equal(t, model.StatusBlockMissing, delta.Blocks.Get(model.BlockBenefits).Status)
	assert.Equal(t, model.StatusBlockMissing, delta.Blocks.Get(model.BlockIngredients).Status)

	usage := delta.Blocks.Get(model.BlockUsage)
	assert.Equal(t, model.StatusBlockPartial, usage.Status)
	assert.Contains(t, usage.Content, "Usage instructions are not available")

	safety := delta.Blocks.Get(model.BlockSafety)
	assert.Equal(t, model.StatusBlockPartial, safety.Status)
	assert.Equal(t, "No known side effects reported.", safety.StructuredContent()["warnings"])

	assert.Equal(t, "X.", delta.Blocks.Get(model.BlockOverview).Content)
}

func TestPriceTier_Boundaries(t *testing.T) {
	assert.Equal(t, "an affordable", priceTier(299.99))
	assert.Equal(t, "a reasonably priced", priceTier(300))
	assert.Equal(t, "a reasonably priced", priceTier(799.99))
	assert.Equal(t, "a premium", priceTier(800))
	assert.Equal(t, "a premium", priceTier(12000))
}

func TestBlocksStep_PriceBlock(t *testing.T) {
	st := parsedState(t, serumRaw())

	delta, err := BlocksStep(context.Background(), st, nil, EnhanceOptions{})
	require.NoError(t, err)

	price := delta.Blocks.Get(model.BlockPrice).StructuredContent()
	assert.Equal(t, 499.0, price["price"])
	assert.Equal(t, "₹499", price["formatted_price"])
	assert.Equal(t, "Glow Serum is a reasonably priced option at ₹499.", price["value_proposition"])
}

func TestBlocksStep_ComparisonBlock(t *testing.T) {
	st := parsedState(t, serumRaw())
	competitor := newProduct(t, map[string]any{
		"name":            "Radiance Elixir",
		"price":           float64(649),
		"currency":        "₹",
		"category":        "skincare serum",
		"key_ingredients": []any{"Niacinamide", "Hyaluronic Acid"},
		"benefits":        []any{"Pore refining", "Hydration"},
	})
	st = st.Apply(model.Delta{Competitor: competitor})

	delta, err := BlocksStep(context.Background(), st, nil, EnhanceOptions{})
	require.NoError(t, err)

	comparison := delta.Blocks.Get(model.BlockComparison)
	require.NotNil(t, comparison)
	content := comparison.StructuredContent()

	ing := content["ingredient_comparison"].(map[string]any)
	assert.Equal(t, []string{"hyaluronic acid"}, ing["common_ingredients"])
	assert.Equal(t, []string{"vitamin c"}, ing["Glow Serum_unique"])
	assert.Equal(t, []string{"niacinamide"}, ing["Radiance Elixir_unique"])
	assert.Equal(t, 0.5, ing["similarity_score"])

	price := content["price_comparison"].(map[string]any)
	assert.Equal(t, "Glow Serum", price["cheaper_product"])
	assert.Equal(t, "₹150", price["difference"])
	assert.Equal(t, "30.1%", price["percentage_difference"])

	assert.Contains(t, content["summary"], "Glow Serum is more affordable")
}

func TestBlocksStep_FAQAnswerBlocks(t *testing.T) {
	st := parsedState(t, serumRaw())
	st = st.Apply(model.Delta{Questions: []model.Question{
		mustPipelineQuestion(t, "Is it safe?", "Safety", model.PriorityHigh),
		mustPipelineQuestion(t, "How much is it?", "Purchase", model.PriorityMedium),
	}})

	delta, err := BlocksStep(context.Background(), st, nil, EnhanceOptions{})
	require.NoError(t, err)

	require.Len(t, delta.Blocks.FAQAnswers, 2)
	first := delta.Blocks.FAQAnswers[0]
	assert.Equal(t, "faq_answer_1", first.ID)
	assert.False(t, first.Reusable)
	assert.Equal(t, "Is it safe?", first.StructuredContent()["question"])
}

func TestBlocksStep_EnhancementApplied(t *testing.T) {
	st := parsedState(t, serumRaw()) // completeness > 50

	completer := new(mockCompleter)
	completer.On("Complete", mock.Anything, "", mock.Anything).
		Return("A silky serum that brightens and hydrates from the first drop.", model.TokenUsage{InputTokens: 40, OutputTokens: 20}, nil)

	delta, err := BlocksStep(context.Background(), st, completer, EnhanceOptions{Enabled: true, Threshold: 50})
	require.NoError(t, err)

	assert.Equal(t, "A silky serum that brightens and hydrates from the first drop.",
		delta.Blocks.Get(model.BlockOverview).Content)
	assert.Equal(t, model.TokenUsage{InputTokens: 40, OutputTokens: 20}, delta.Usage)
}

func TestBlocksStep_EnhancementFallsBackOnError(t *testing.T) {
	st := parsedState(t, serumRaw())

	completer := new(mockCompleter)
	completer.On("Complete", mock.Anything, "", mock.Anything).
		Return("", model.TokenUsage{}, eris.New("quota exceeded"))

	delta, err := BlocksStep(context.Background(), st, completer, EnhanceOptions{Enabled: true, Threshold: 50})
	require.NoError(t, err)

	// The templated text survives the failed rewrite.
	assert.Equal(t, "Glow Serum is a skincare serum featuring Vitamin C designed to provide brightening.",
		delta.Blocks.Get(model.BlockOverview).Content)
}

func TestBlocksStep_EnhancementSkippedBelowThreshold(t *testing.T) {
	st := parsedState(t, map[string]any{"name": "X", "price": float64(100)})

	completer := new(mockCompleter) // no expectations: must not be called

	_, err := BlocksStep(context.Background(), st, completer, EnhanceOptions{Enabled: true, Threshold: 50})
	require.NoError(t, err)
	completer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestBlocksStep_NoProduct(t *testing.T) {
	st := model.NewState(nil, model.InputModeJSON)
	_, err := BlocksStep(context.Background(), st, nil, EnhanceOptions{})
	require.Error(t, err)
	assert.Equal(t, KindMissingDependency, Classify(err))
}

func mustPipelineQuestion(t *testing.T, text, category string, priority model.Priority) model.Question {
	t.Helper()
	q, err := model.NewQuestion(text, "An answer.", category, nil, priority, "llm")
	require.NoError(t, err)
	return *q
}
