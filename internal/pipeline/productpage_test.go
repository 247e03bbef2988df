package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/content-cli/internal/model"
)

func TestProductPageStep(t *testing.T) {
	st := stateWithBlocks(t, nil)

	delta, err := ProductPageStep(context.Background(), st)
	require.NoError(t, err)
	require.NotNil(t, delta.ProductPage)

	page := delta.ProductPage
	assert.Equal(t, "product_page", page["page_type"])

	product := page["product"].(map[string]any)
	assert.Equal(t, "Glow Serum", product["name"])
	assert.Equal(t, "Glow Serum is a skincare serum featuring Vitamin C designed to provide brightening.", product["overview"])

	keyInfo := product["key_information"].(map[string]any)
	ingredients := keyInfo["ingredients"].(map[string]any)
	assert.Equal(t, 2, ingredients["count"])

	pricing := product["pricing"].(map[string]any)
	assert.Equal(t, "₹499", pricing["formatted_price"])

	additional := product["additional_information"].(map[string]any)
	assert.Equal(t, "skincare serum", additional["category"])

	meta := page["metadata"].(map[string]any)
	assert.Equal(t, "prod_glow_serum", meta["product_id"])
	assert.Equal(t, 100.0, meta["completeness_score"])
	assert.Contains(t, meta["blocks_used"], "overview")
	assert.NotContains(t, meta["blocks_used"], "comparison")
}

func TestProductPageStep_SparseRecordFallbacks(t *testing.T) {
	st := parsedState(t, map[string]any{"name": "X", "price": float64(100), "currency": "$"})
	blocksDelta, err := BlocksStep(context.Background(), st, nil, EnhanceOptions{})
	require.NoError(t, err)
	st = st.Apply(blocksDelta)

	delta, err := ProductPageStep(context.Background(), st)
	require.NoError(t, err)

	product := delta.ProductPage["product"].(map[string]any)
	keyInfo := product["key_information"].(map[string]any)
	assert.Equal(t, map[string]any{"description": "Ingredient information not available"}, keyInfo["ingredients"])
	assert.Equal(t, map[string]any{"description": "Benefit information not available"}, keyInfo["benefits"])

	usage := product["how_to_use"].(map[string]any)
	assert.Contains(t, usage["instructions"], "Usage instructions are not available")

	pricing := product["pricing"].(map[string]any)
	assert.Equal(t, "$100", pricing["formatted_price"])

	// No audience, no custom fields: only the category-free empty map.
	assert.Empty(t, product["additional_information"])
}

func TestProductPageStep_MissingDependencies(t *testing.T) {
	_, err := ProductPageStep(context.Background(), model.NewState(nil, model.InputModeJSON))
	require.Error(t, err)
	assert.Equal(t, KindMissingDependency, Classify(err))

	_, err = ProductPageStep(context.Background(), parsedState(t, serumRaw()))
	require.Error(t, err)
	assert.Equal(t, KindMissingDependency, Classify(err))
	assert.Contains(t, err.Error(), "content blocks")
}
