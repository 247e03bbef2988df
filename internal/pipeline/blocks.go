package pipeline

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/content-cli/internal/model"
)

// EnhanceOptions gates the optional overview rewrite.
type EnhanceOptions struct {
	Enabled bool
	// Threshold is the completeness score a record must exceed before the
	// rewrite is attempted.
	Threshold float64
}

// BlocksStep derives one content block per type from the parsed records.
// Generation is deterministic except for the optional overview rewrite; each
// block is independently fallible and degrades to a missing/partial status
// instead of failing the step.
func BlocksStep(ctx context.Context, st model.State, c Completer, opts EnhanceOptions) (model.Delta, error) {
	if st.Product == nil {
		return model.Delta{}, missingDependency("blocks: no product model in state")
	}

	g := blockBuilder{product: st.Product, completer: c, opts: opts}
	set := &model.BlockSet{Blocks: make(map[model.BlockType]*model.ContentBlock)}
	var warnings []string
	var usage model.TokenUsage

	add := func(t model.BlockType, b *model.ContentBlock, err error) {
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("blocks: %s block failed: %v", t, err))
			zap.L().Warn("block generation failed", zap.String("block_type", string(t)), zap.Error(err))
			return
		}
		set.Blocks[t] = b
	}

	overview, overviewUsage, err := g.overviewBlock(ctx)
	usage.Add(overviewUsage)
	add(model.BlockOverview, overview, err)

	b, err := g.benefitsBlock()
	add(model.BlockBenefits, b, err)
	b, err = g.ingredientsBlock()
	add(model.BlockIngredients, b, err)
	b, err = g.usageBlock()
	add(model.BlockUsage, b, err)
	b, err = g.safetyBlock()
	add(model.BlockSafety, b, err)
	b, err = g.priceBlock()
	add(model.BlockPrice, b, err)

	if st.Competitor != nil {
		b, err = g.comparisonBlock(st.Competitor)
		add(model.BlockComparison, b, err)
	}

	for i, q := range st.Questions {
		fb, err := faqAnswerBlock(i, q)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("blocks: faq_answer block %d failed: %v", i+1, err))
			continue
		}
		set.FAQAnswers = append(set.FAQAnswers, fb)
	}

	zap.L().Info("generated content blocks",
		zap.Int("block_types", len(set.Blocks)),
		zap.Int("faq_answers", len(set.FAQAnswers)),
	)

	return model.Delta{
		Blocks:   set,
		Status:   model.StatusBuilding,
		Warnings: warnings,
		Usage:    usage,
	}, nil
}

type blockBuilder struct {
	product   *model.Product
	completer Completer
	opts      EnhanceOptions
}

func (g blockBuilder) overviewBlock(ctx context.Context) (*model.ContentBlock, model.TokenUsage, error) {
	p := g.product
	parts := []string{p.Name}
	if p.Category != "" {
		parts = append(parts, "is a "+p.Category)
	}
	if first := p.FirstIngredient(); first != "" {
		parts = append(parts, "featuring "+first)
	}
	if len(p.Benefits) > 0 {
		parts = append(parts, "designed to provide "+strings.ToLower(p.Benefits[0]))
	}
	content := strings.Join(parts, " ") + "."

	var usage model.TokenUsage
	if g.opts.Enabled && g.completer != nil && p.CompletenessScore > g.opts.Threshold {
		content, usage = g.enhanceOverview(ctx, content)
	}

	b, err := model.NewContentBlock(model.BlockParams{
		ID:           "overview_block",
		Type:         model.BlockOverview,
		Content:      content,
		SourceFields: []string{"name", "category", "key_ingredients", "benefits"},
		Format:       model.FormatPlainText,
		Reusable:     true,
	})
	return b, usage, err
}

// enhanceOverview asks the completer to rewrite the templated overview. The
// templated text is the required fallback: any failure or degenerate reply
// keeps it unchanged.
func (g blockBuilder) enhanceOverview(ctx context.Context, fallback string) (string, model.TokenUsage) {
	p := g.product
	benefits := "N/A"
	if len(p.Benefits) > 0 {
		top := p.Benefits
		if len(top) > 3 {
			top = top[:3]
		}
		benefits = strings.Join(top, ", ")
	}
	prompt := fmt.Sprintf(`Rewrite this product overview to be more engaging and natural, keep it concise (2-3 sentences max):

Current: %s

Product details:
- Name: %s
- Category: %s
- Key benefits: %s

Return only the enhanced overview text, nothing else.`, fallback, p.Name, p.Category, benefits)

	enhanced, usage, err := g.completer.Complete(ctx, "", prompt)
	if err != nil {
		zap.L().Warn("overview enhancement failed, keeping templated text", zap.Error(err))
		return fallback, usage
	}
	enhanced = strings.TrimSpace(enhanced)
	if len(enhanced) <= 10 {
		return fallback, usage
	}
	return enhanced, usage
}

func (g blockBuilder) benefitsBlock() (*model.ContentBlock, error) {
	p := g.product
	var content any
	format := model.FormatStructured
	status := model.StatusBlockComplete

	if len(p.Benefits) == 0 {
		content = "Benefit information is currently unavailable for this product."
		format = model.FormatPlainText
		status = model.StatusBlockMissing
	} else {
		content = map[string]any{
			"summary":        p.Name + " offers multiple benefits for users.",
			"benefits_list":  p.Benefits,
			"formatted_text": p.Name + " provides " + strings.ToLower(strings.Join(p.Benefits, ", ")) + ".",
		}
	}

	return model.NewContentBlock(model.BlockParams{
		ID:           "benefits_block",
		Type:         model.BlockBenefits,
		Content:      content,
		SourceFields: []string{"benefits", "name"},
		Format:       format,
		Reusable:     true,
		Status:       status,
	})
}

func (g blockBuilder) ingredientsBlock() (*model.ContentBlock, error) {
	p := g.product
	var content any
	format := model.FormatStructured
	status := model.StatusBlockComplete

	if len(p.KeyIngredients) == 0 {
		content = "Ingredient information is currently unavailable for this product."
		format = model.FormatPlainText
		status = model.StatusBlockMissing
	} else {
		list := make([]map[string]any, 0, len(p.KeyIngredients))
		details := make([]string, 0, len(p.KeyIngredients))
		for _, ing := range p.KeyIngredients {
			list = append(list, map[string]any{
				"name":          ing.Name,
				"concentration": ing.Concentration,
				"purpose":       ing.Purpose,
			})
			detail := ing.Name
			if ing.Concentration != "" {
				detail += " (" + ing.Concentration + ")"
			}
			if ing.Purpose != "" {
				detail += " for " + strings.ToLower(ing.Purpose)
			}
			details = append(details, detail)
		}
		content = map[string]any{
			"ingredients_list": list,
			"formatted_text":   "Key ingredients include: " + strings.Join(details, ", ") + ".",
			"count":            len(p.KeyIngredients),
		}
	}

	return model.NewContentBlock(model.BlockParams{
		ID:           "ingredients_block",
		Type:         model.BlockIngredients,
		Content:      content,
		SourceFields: []string{"key_ingredients"},
		Format:       format,
		Reusable:     true,
		Status:       status,
	})
}

func (g blockBuilder) usageBlock() (*model.ContentBlock, error) {
	p := g.product
	var content any
	format := model.FormatStructured
	status := model.StatusBlockComplete

	if p.UsageInstructions == "" {
		content = "Usage instructions are not available. Please refer to product packaging or consult a professional."
		format = model.FormatPlainText
		status = model.StatusBlockPartial
	} else {
		content = map[string]any{
			"instructions":   p.UsageInstructions,
			"formatted_text": "How to use: " + p.UsageInstructions,
		}
	}

	return model.NewContentBlock(model.BlockParams{
		ID:           "usage_block",
		Type:         model.BlockUsage,
		Content:      content,
		SourceFields: []string{"usage_instructions"},
		Format:       format,
		Reusable:     true,
		Status:       status,
	})
}

func (g blockBuilder) safetyBlock() (*model.ContentBlock, error) {
	p := g.product
	var content map[string]any
	status := model.StatusBlockComplete

	if p.SideEffects == "" {
		content = map[string]any{
			"warnings":       "No known side effects reported.",
			"recommendation": "As with any product, discontinue use if irritation occurs.",
			"formatted_text": "This product is generally considered safe. Discontinue use if any adverse reactions occur.",
		}
		status = model.StatusBlockPartial
	} else {
		content = map[string]any{
			"warnings":       p.SideEffects,
			"recommendation": "Consult a healthcare professional if you have concerns.",
			"formatted_text": "Safety information: " + p.SideEffects,
		}
	}

	return model.NewContentBlock(model.BlockParams{
		ID:           "safety_block",
		Type:         model.BlockSafety,
		Content:      content,
		SourceFields: []string{"side_effects"},
		Format:       model.FormatStructured,
		Reusable:     true,
		Status:       status,
	})
}

func (g blockBuilder) priceBlock() (*model.ContentBlock, error) {
	p := g.product
	formatted := formatPrice(p.Currency, p.Price)
	content := map[string]any{
		"price":             p.Price,
		"currency":          p.Currency,
		"formatted_price":   formatted,
		"value_proposition": fmt.Sprintf("%s is %s option at %s.", p.Name, priceTier(p.Price), formatted),
	}

	return model.NewContentBlock(model.BlockParams{
		ID:           "price_block",
		Type:         model.BlockPrice,
		Content:      content,
		SourceFields: []string{"price", "currency", "name"},
		Format:       model.FormatStructured,
		Reusable:     true,
	})
}

// priceTier maps a price to its value-proposition phrase. The 300 and 800
// boundaries belong to the upper tier.
func priceTier(price float64) string {
	switch {
	case price < 300:
		return "an affordable"
	case price < 800:
		return "a reasonably priced"
	default:
		return "a premium"
	}
}

func (g blockBuilder) comparisonBlock(competitor *model.Product) (*model.ContentBlock, error) {
	a, b := g.product, competitor

	aIngredients := a.IngredientNames()
	bIngredients := b.IngredientNames()
	commonIngredients := setIntersection(aIngredients, bIngredients)
	aUnique := setDifference(aIngredients, bIngredients)
	bUnique := setDifference(bIngredients, aIngredients)

	priceDiff := b.Price - a.Price
	priceDiffPct := priceDiff / a.Price * 100
	cheaper := a.Name
	if priceDiff <= 0 {
		cheaper = b.Name
	}

	aBenefits := stringSet(a.Benefits)
	bBenefits := stringSet(b.Benefits)

	content := map[string]any{
		"products": map[string]any{
			"product_a": a.Name,
			"product_b": b.Name,
		},
		"price_comparison": map[string]any{
			"product_a_price":       formatPrice(a.Currency, a.Price),
			"product_b_price":       formatPrice(b.Currency, b.Price),
			"difference":            formatPrice(b.Currency, math.Abs(priceDiff)),
			"percentage_difference": fmt.Sprintf("%.1f%%", math.Abs(priceDiffPct)),
			"cheaper_product":       cheaper,
		},
		"ingredient_comparison": map[string]any{
			"common_ingredients": commonIngredients,
			a.Name + "_unique":   aUnique,
			b.Name + "_unique":   bUnique,
			"similarity_score":   similarityScore(len(commonIngredients), len(aIngredients), len(bIngredients)),
		},
		"benefit_comparison": map[string]any{
			"common_benefits":  setIntersection(aBenefits, bBenefits),
			a.Name + "_unique": setDifference(aBenefits, bBenefits),
			b.Name + "_unique": setDifference(bBenefits, aBenefits),
		},
		"summary": comparisonSummary(a, b, cheaper, priceDiffPct),
	}

	return model.NewContentBlock(model.BlockParams{
		ID:           "comparison_block",
		Type:         model.BlockComparison,
		Content:      content,
		SourceFields: []string{"product_a", "product_b"},
		Format:       model.FormatStructured,
		Reusable:     true,
	})
}

func comparisonSummary(a, b *model.Product, cheaper string, priceDiffPct float64) string {
	category := a.Category
	if category == "" {
		category = "products"
	}
	summary := fmt.Sprintf("%s and %s are both %s options. ", a.Name, b.Name, category)
	summary += fmt.Sprintf("%s is more affordable with a %.1f%% price difference. ", cheaper, math.Abs(priceDiffPct))
	if len(a.KeyIngredients) > 0 && len(b.KeyIngredients) > 0 {
		summary += fmt.Sprintf("%s features %s, while %s uses %s. ",
			a.Name, a.FirstIngredient(), b.Name, b.FirstIngredient())
	}
	return summary
}

func faqAnswerBlock(index int, q model.Question) (*model.ContentBlock, error) {
	return model.NewContentBlock(model.BlockParams{
		ID:   fmt.Sprintf("faq_answer_%d", index+1),
		Type: model.BlockFAQAnswer,
		Content: map[string]any{
			"question": q.Text,
			"answer":   q.Answer,
			"category": q.Category,
			"priority": string(q.Priority),
		},
		SourceFields: q.RelatedFields,
		Format:       model.FormatStructured,
		Reusable:     false,
	})
}
