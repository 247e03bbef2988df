package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/content-cli/internal/model"
)

const competitorSystemPrompt = `You are a product development expert creating a fictional competitor product.

Your task: Generate a realistic competitor product (Product B) that can be compared with Product A.

REQUIREMENTS:
1. Product B must be in the SAME category as Product A
2. Product B must have DIFFERENT key ingredients (no exact matches)
3. Product B price should be within 20-40% range of Product A (can be higher or lower)
4. Product B should offer DIFFERENT but comparable benefits
5. Product B must be realistic and believable
6. Include all standard fields (name, price, ingredients, benefits, usage, etc.)

OUTPUT FORMAT (strict JSON matching the product record schema):
{
  "name": "Product B name (creative, realistic)",
  "price": numeric_value,
  "currency": "same as Product A",
  "category": "same as Product A",
  "key_ingredients": [
    {"name": "Ingredient name", "concentration": "optional", "purpose": "optional"}
  ],
  "benefits": ["benefit1", "benefit2", "benefit3"],
  "usage_instructions": "How to use Product B",
  "side_effects": "Any warnings or side effects",
  "target_audience": ["audience1", "audience2"]
}

IMPORTANT:
- Make Product B different enough to be interesting for comparison
- Ensure ingredients DON'T overlap with Product A
- Keep the same product domain (skincare, food, supplement, etc.)
- Make it realistic - could be an actual product

Return ONLY the JSON object, no other text.`

// CompetitorStep fabricates a fictional competitor record via the completer
// and validates it with the same rules as the primary record. Ingredient
// overlap with the primary record is observed but never fatal.
func CompetitorStep(ctx context.Context, st model.State, c Completer) (model.Delta, error) {
	if st.Product == nil {
		return model.Delta{}, missingDependency("competitor: no product model in state")
	}

	user := fmt.Sprintf(`Product A (for reference):
%s

Generate Product B - a realistic competitor product that:
1. Targets the same market but with different ingredients
2. Has a price within 20-40%% of Product A's price
3. Offers comparable but distinct benefits
4. Is believable as a real competitor product`, competitorContext(st.Product))

	reply, usage, err := c.Complete(ctx, competitorSystemPrompt, user)
	if err != nil {
		return model.Delta{Usage: usage}, eris.Wrap(err, "competitor: completion")
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(cleanJSON(reply)), &raw); err != nil {
		return model.Delta{Usage: usage}, generationParseError(eris.Wrap(err, "competitor: decode reply"))
	}

	competitor, err := model.NewProduct(raw)
	if err != nil {
		return model.Delta{Usage: usage}, eris.Wrap(err, "competitor: fabricated record failed validation")
	}

	priceDiffPct := math.Abs(competitor.Price-st.Product.Price) / st.Product.Price * 100
	zap.L().Info("generated competitor",
		zap.String("name", competitor.Name),
		zap.String("category", competitor.Category),
		zap.Float64("price_diff_percent", priceDiffPct),
	)

	var warnings []string
	if overlap := ingredientOverlap(st.Product, competitor); len(overlap) > 0 {
		warnings = append(warnings,
			"competitor: ingredient overlap with primary product: "+strings.Join(overlap, ", "))
		zap.L().Warn("competitor ingredient overlap", zap.Strings("ingredients", overlap))
	}

	return model.Delta{
		Competitor: competitor,
		Warnings:   warnings,
		Usage:      usage,
	}, nil
}

// ingredientOverlap returns case-insensitive ingredient name collisions.
func ingredientOverlap(a, b *model.Product) []string {
	if len(a.KeyIngredients) == 0 || len(b.KeyIngredients) == 0 {
		return nil
	}
	aSet := a.IngredientNames()
	var overlap []string
	for name := range b.IngredientNames() {
		if aSet[name] {
			overlap = append(overlap, name)
		}
	}
	return overlap
}
