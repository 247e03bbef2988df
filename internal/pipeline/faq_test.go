package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/content-cli/internal/model"
)

func stateWithBlocks(t *testing.T, questions []model.Question) model.State {
	t.Helper()
	st := parsedState(t, serumRaw())
	st = st.Apply(model.Delta{Questions: questions})

	delta, err := BlocksStep(context.Background(), st, nil, EnhanceOptions{})
	require.NoError(t, err)
	return st.Apply(delta)
}

func TestFAQStep(t *testing.T) {
	st := stateWithBlocks(t, []model.Question{
		mustPipelineQuestion(t, "Does it hydrate?", "Benefits", model.PriorityLow),
		mustPipelineQuestion(t, "Is it safe?", "Safety", model.PriorityMedium),
		mustPipelineQuestion(t, "Any side effects?", "Safety", model.PriorityHigh),
	})

	delta, err := FAQStep(context.Background(), st)
	require.NoError(t, err)
	require.NotNil(t, delta.FAQPage)

	page := delta.FAQPage
	assert.Equal(t, "faq", page["page_type"])
	assert.Equal(t, "Glow Serum", page["product_name"])
	assert.Equal(t, 3, page["total_questions"])
	assert.NotEmpty(t, page["product_overview"])

	// Category order follows first appearance.
	assert.Equal(t, []string{"Benefits", "Safety"}, page["categories"])

	// Partition: per-category counts sum to the total.
	grouped := page["faqs_by_category"].(map[string]any)
	total := 0
	for _, v := range grouped {
		total += len(v.([]any))
	}
	assert.Equal(t, 3, total)

	// Priority sort within a category: high before medium.
	safety := grouped["Safety"].([]any)
	require.Len(t, safety, 2)
	assert.Equal(t, "Any side effects?", safety[0].(map[string]any)["question"])
	assert.Equal(t, "Is it safe?", safety[1].(map[string]any)["question"])

	meta := page["metadata"].(map[string]any)
	assert.Equal(t, "prod_glow_serum", meta["product_id"])
	assert.Equal(t, 499.0, meta["price"])
}

func TestFAQStep_NoQuestions(t *testing.T) {
	st := stateWithBlocks(t, nil)

	_, err := FAQStep(context.Background(), st)
	require.Error(t, err)
	assert.Equal(t, KindMissingContent, Classify(err))
}

func TestFAQStep_NoBlocks(t *testing.T) {
	st := parsedState(t, serumRaw())

	_, err := FAQStep(context.Background(), st)
	require.Error(t, err)
	assert.Equal(t, KindMissingDependency, Classify(err))
}
