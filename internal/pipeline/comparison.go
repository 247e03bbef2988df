package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/content-cli/internal/model"
)

// ComparisonStep assembles the comparison page for the primary and competitor
// records. It prefers the precomputed comparison block and recomputes the
// same price/ingredient/benefit analysis inline when the block is absent.
func ComparisonStep(ctx context.Context, st model.State) (model.Delta, error) {
	if st.Product == nil {
		return model.Delta{}, missingDependency("comparison: no product model in state")
	}
	if st.Competitor == nil {
		return model.Delta{}, missingDependency("comparison: no competitor model in state")
	}

	a, b := st.Product, st.Competitor

	var priceComp, ingredientComp, benefitComp map[string]any
	var summary string
	if block := st.Blocks.Get(model.BlockComparison); block != nil {
		if content := block.StructuredContent(); content != nil {
			priceComp = mapOr(content["price_comparison"])
			ingredientComp = normalizeUniqueKeys(mapOr(content["ingredient_comparison"]), a, b, "ingredients")
			benefitComp = normalizeUniqueKeys(mapOr(content["benefit_comparison"]), a, b, "benefits")
			summary = stringOr(content["summary"], "")
			if priceComp == nil {
				priceComp = comparePrices(a, b)
			}
			if ingredientComp == nil {
				ingredientComp = compareIngredients(a, b)
			}
			if benefitComp == nil {
				benefitComp = compareBenefits(a, b)
			}
		} else {
			// Block present but not structured: recompute inline.
			priceComp = comparePrices(a, b)
			ingredientComp = compareIngredients(a, b)
			benefitComp = compareBenefits(a, b)
			summary = fmt.Sprintf("Comparing %s and %s.", a.Name, b.Name)
		}
	} else {
		priceComp = comparePrices(a, b)
		ingredientComp = compareIngredients(a, b)
		benefitComp = compareBenefits(a, b)
		summary = fmt.Sprintf("Basic comparison between %s and %s.", a.Name, b.Name)
	}

	page := map[string]any{
		"page_type": "comparison",
		"product_a": productSummary(a),
		"product_b": productSummary(b),
		"comparison": map[string]any{
			"price":       priceComp,
			"ingredients": ingredientComp,
			"benefits":    benefitComp,
			"summary":     summary,
		},
		"recommendations": buildRecommendations(a, b, priceComp, ingredientComp),
		"metadata": map[string]any{
			"generated_at":           time.Now().UTC().Format(time.RFC3339),
			"comparison_id":          "comp_" + a.ID + "_" + b.ID,
			"product_a_completeness": a.CompletenessScore,
			"product_b_completeness": b.CompletenessScore,
		},
	}

	zap.L().Info("assembled comparison page",
		zap.String("product_a", a.Name),
		zap.String("product_b", b.Name),
	)

	return model.Delta{ComparisonPage: page}, nil
}

func productSummary(p *model.Product) map[string]any {
	ingredients := make([]any, 0, len(p.KeyIngredients))
	for _, ing := range p.KeyIngredients {
		ingredients = append(ingredients, map[string]any{
			"name":          ing.Name,
			"concentration": ing.Concentration,
			"purpose":       ing.Purpose,
		})
	}
	benefits := p.Benefits
	if benefits == nil {
		benefits = []string{}
	}
	audience := p.TargetAudience
	if audience == nil {
		audience = []string{}
	}
	return map[string]any{
		"name":            p.Name,
		"price":           p.Price,
		"currency":        p.Currency,
		"formatted_price": formatPrice(p.Currency, p.Price),
		"category":        p.Category,
		"key_ingredients": ingredients,
		"benefits":        benefits,
		"target_audience": audience,
		"product_id":      p.ID,
	}
}

func comparePrices(a, b *model.Product) map[string]any {
	priceDiff := b.Price - a.Price
	priceDiffPct := priceDiff / a.Price * 100

	cheaper, moreExpensive := b.Name, a.Name
	if priceDiff > 0 {
		cheaper, moreExpensive = a.Name, b.Name
	}

	return map[string]any{
		"product_a_price":        formatPrice(a.Currency, a.Price),
		"product_b_price":        formatPrice(b.Currency, b.Price),
		"difference":             formatPrice(a.Currency, math.Abs(priceDiff)),
		"percentage_difference":  fmt.Sprintf("%.1f%%", math.Abs(priceDiffPct)),
		"cheaper_product":        cheaper,
		"more_expensive_product": moreExpensive,
		"analysis":               fmt.Sprintf("%s is %.1f%% cheaper than %s.", cheaper, math.Abs(priceDiffPct), moreExpensive),
	}
}

func compareIngredients(a, b *model.Product) map[string]any {
	aSet := a.IngredientNames()
	bSet := b.IngredientNames()
	common := setIntersection(aSet, bSet)
	score := similarityScore(len(common), len(aSet), len(bSet))

	return map[string]any{
		"common_ingredients":           common,
		"product_a_unique_ingredients": setDifference(aSet, bSet),
		"product_b_unique_ingredients": setDifference(bSet, aSet),
		"similarity_score":             score,
		"analysis":                     fmt.Sprintf("Products share %d common ingredients. Similarity: %.0f%%.", len(common), score*100),
	}
}

func compareBenefits(a, b *model.Product) map[string]any {
	aSet := stringSet(a.Benefits)
	bSet := stringSet(b.Benefits)
	common := setIntersection(aSet, bSet)

	return map[string]any{
		"common_benefits":           common,
		"product_a_unique_benefits": setDifference(aSet, bSet),
		"product_b_unique_benefits": setDifference(bSet, aSet),
		"analysis":                  fmt.Sprintf("Both products offer %d shared benefits.", len(common)),
	}
}

// normalizeUniqueKeys maps the comparison block's name-suffixed unique-item
// keys onto the canonical product_a/product_b keys. Fallback order per
// canonical key: already present, then "<product name>_unique", then empty.
func normalizeUniqueKeys(data map[string]any, a, b *model.Product, suffix string) map[string]any {
	if data == nil {
		return nil
	}
	normalized := make(map[string]any, len(data)+2)
	for k, v := range data {
		normalized[k] = v
	}

	aKey := "product_a_unique_" + suffix
	bKey := "product_b_unique_" + suffix
	if _, ok := normalized[aKey]; !ok {
		normalized[aKey] = valueOr(normalized[a.Name+"_unique"], []any{})
	}
	if _, ok := normalized[bKey]; !ok {
		normalized[bKey] = valueOr(normalized[b.Name+"_unique"], []any{})
	}
	return normalized
}

// buildRecommendations derives budget, formulation, audience, and overall
// recommendations. The overall score weighs price 0.4 and unique-ingredient
// variety 0.6 (count divided by 10, deliberately uncapped); ties go to the
// competitor record.
func buildRecommendations(a, b *model.Product, priceComp, ingredientComp map[string]any) map[string]any {
	recommendations := map[string]any{}

	cheaper := stringOr(priceComp["cheaper_product"], "")
	if cheaper != "" {
		recommendations["budget_friendly"] = map[string]any{
			"product": cheaper,
			"reason":  cheaper + " offers better value at a lower price point.",
		}
	}

	similarity := floatOr(ingredientComp["similarity_score"], 0)
	if similarity < 0.3 {
		recommendations["unique_formulation"] = map[string]any{
			"note":       "These products have significantly different formulations.",
			"suggestion": "Choose based on your specific ingredient preferences.",
		}
	} else {
		recommendations["similar_products"] = map[string]any{
			"note":       "These products have similar formulations.",
			"suggestion": "Price may be the deciding factor.",
		}
	}

	if len(a.TargetAudience) > 0 && len(b.TargetAudience) > 0 {
		recommendations["target_audience"] = map[string]any{
			"product_a": map[string]any{"name": a.Name, "best_for": a.TargetAudience},
			"product_b": map[string]any{"name": b.Name, "best_for": b.TargetAudience},
		}
	}

	const priceFactor, ingredientFactor = 0.4, 0.6
	aScore := overallScore(cheaper == a.Name, listLen(ingredientComp["product_a_unique_ingredients"]), priceFactor, ingredientFactor)
	bScore := overallScore(cheaper == b.Name, listLen(ingredientComp["product_b_unique_ingredients"]), priceFactor, ingredientFactor)

	recommended := b.Name
	if aScore > bScore {
		recommended = a.Name
	}
	recommendations["overall"] = map[string]any{
		"recommended_product": recommended,
		"reason":              "Better overall value considering price and formulation.",
	}

	return recommendations
}

func overallScore(cheaper bool, uniqueCount int, priceFactor, ingredientFactor float64) float64 {
	priceScore := 0.0
	if cheaper {
		priceScore = 1.0
	}
	return priceScore*priceFactor + float64(uniqueCount)/10*ingredientFactor
}

func mapOr(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func floatOr(v any, fallback float64) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return fallback
}

func listLen(v any) int {
	switch t := v.(type) {
	case []any:
		return len(t)
	case []string:
		return len(t)
	default:
		return 0
	}
}
