package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/content-cli/internal/model"
)

// ProductPageStep assembles the product page from the content blocks, with
// fallback text for every section whose block is missing.
func ProductPageStep(ctx context.Context, st model.State) (model.Delta, error) {
	if st.Product == nil {
		return model.Delta{}, missingDependency("product_page: no product model in state")
	}
	if st.Blocks == nil || len(st.Blocks.Blocks) == 0 {
		return model.Delta{}, missingDependency("product_page: no content blocks in state")
	}

	p := st.Product
	blocks := st.Blocks

	var overview string
	if b := blocks.Get(model.BlockOverview); b != nil {
		if s, ok := b.Content.(string); ok {
			overview = s
		}
	}

	keyInfo := map[string]any{
		"ingredients": ingredientsSection(blocks.Get(model.BlockIngredients)),
		"benefits":    benefitsSection(blocks.Get(model.BlockBenefits)),
	}

	page := map[string]any{
		"page_type": "product_page",
		"product": map[string]any{
			"name":                   p.Name,
			"overview":               overview,
			"key_information":        keyInfo,
			"how_to_use":             usageSection(blocks.Get(model.BlockUsage)),
			"safety_information":     safetySection(blocks.Get(model.BlockSafety)),
			"pricing":                pricingSection(blocks.Get(model.BlockPrice), p),
			"additional_information": additionalInfo(p),
		},
		"metadata": map[string]any{
			"generated_at":       time.Now().UTC().Format(time.RFC3339),
			"product_id":         p.ID,
			"completeness_score": p.CompletenessScore,
			"field_count":        p.FieldCount,
			"blocks_used":        blocks.TypesUsed(),
		},
	}

	zap.L().Info("assembled product page",
		zap.String("product", p.Name),
		zap.Float64("completeness_score", p.CompletenessScore),
	)

	return model.Delta{ProductPage: page}, nil
}

func ingredientsSection(b *model.ContentBlock) map[string]any {
	if b == nil || b.Status == model.StatusBlockMissing {
		return map[string]any{"description": "Ingredient information not available"}
	}
	if content := b.StructuredContent(); content != nil {
		return map[string]any{
			"list":        valueOr(content["ingredients_list"], []any{}),
			"count":       valueOr(content["count"], 0),
			"description": stringOr(content["formatted_text"], ""),
		}
	}
	return map[string]any{"description": b.Text()}
}

func benefitsSection(b *model.ContentBlock) map[string]any {
	if b == nil || b.Status == model.StatusBlockMissing {
		return map[string]any{"description": "Benefit information not available"}
	}
	if content := b.StructuredContent(); content != nil {
		return map[string]any{
			"list":        valueOr(content["benefits_list"], []any{}),
			"summary":     stringOr(content["summary"], ""),
			"description": stringOr(content["formatted_text"], ""),
		}
	}
	return map[string]any{"description": b.Text()}
}

func usageSection(b *model.ContentBlock) map[string]any {
	if b == nil || b.Status == model.StatusBlockMissing {
		return map[string]any{"instructions": "Usage instructions not available. Please refer to product packaging."}
	}
	if content := b.StructuredContent(); content != nil {
		return map[string]any{
			"instructions": stringOr(content["instructions"], ""),
			"formatted":    stringOr(content["formatted_text"], ""),
		}
	}
	return map[string]any{"instructions": b.Text()}
}

func safetySection(b *model.ContentBlock) map[string]any {
	if b == nil {
		return map[string]any{"warnings": "No safety information available"}
	}
	if content := b.StructuredContent(); content != nil {
		return map[string]any{
			"warnings":       stringOr(content["warnings"], "No known warnings"),
			"recommendation": stringOr(content["recommendation"], ""),
			"formatted":      stringOr(content["formatted_text"], ""),
		}
	}
	return map[string]any{"warnings": b.Text()}
}

func pricingSection(b *model.ContentBlock, p *model.Product) map[string]any {
	if b != nil {
		if content := b.StructuredContent(); content != nil {
			return map[string]any{
				"price":             content["price"],
				"currency":          content["currency"],
				"formatted_price":   content["formatted_price"],
				"value_proposition": stringOr(content["value_proposition"], ""),
			}
		}
	}
	return map[string]any{
		"price":           p.Price,
		"currency":        p.Currency,
		"formatted_price": formatPrice(p.Currency, p.Price),
	}
}

func additionalInfo(p *model.Product) map[string]any {
	info := map[string]any{}
	if len(p.TargetAudience) > 0 {
		info["target_audience"] = p.TargetAudience
	}
	if p.Category != "" {
		info["category"] = p.Category
	}
	if len(p.CustomFields) > 0 {
		custom := make(map[string]any, len(p.CustomFields))
		for k, v := range p.CustomFields {
			custom[k] = v.Any()
		}
		info["custom_attributes"] = custom
	}
	return info
}

func valueOr(v, fallback any) any {
	if v == nil {
		return fallback
	}
	return v
}
