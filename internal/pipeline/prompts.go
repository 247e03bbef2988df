package pipeline

import (
	"strconv"
	"strings"

	"github.com/sells-group/content-cli/internal/model"
)

// formatPrice renders a price with its currency symbol, e.g. "₹499.5".
func formatPrice(currency string, price float64) string {
	return currency + strconv.FormatFloat(price, 'f', -1, 64)
}

// productContext builds the full field summary included in generation
// prompts.
func productContext(p *model.Product) string {
	parts := []string{
		"Product Name: " + p.Name,
		"Price: " + formatPrice(p.Currency, p.Price),
	}

	if p.Category != "" {
		parts = append(parts, "Category: "+p.Category)
	}

	if len(p.KeyIngredients) > 0 {
		items := make([]string, 0, len(p.KeyIngredients))
		for _, ing := range p.KeyIngredients {
			s := ing.Name
			if ing.Concentration != "" {
				s += " (" + ing.Concentration + ")"
			}
			if ing.Purpose != "" {
				s += " - " + ing.Purpose
			}
			items = append(items, s)
		}
		parts = append(parts, "Key Ingredients:\n  - "+strings.Join(items, "\n  - "))
	}

	if len(p.Benefits) > 0 {
		parts = append(parts, "Benefits:\n  - "+strings.Join(p.Benefits, "\n  - "))
	}
	if p.UsageInstructions != "" {
		parts = append(parts, "Usage Instructions: "+p.UsageInstructions)
	}
	if p.SideEffects != "" {
		parts = append(parts, "Side Effects/Warnings: "+p.SideEffects)
	}
	if len(p.TargetAudience) > 0 {
		parts = append(parts, "Target Audience: "+strings.Join(p.TargetAudience, ", "))
	}

	if len(p.CustomFields) > 0 {
		items := make([]string, 0, len(p.CustomFields))
		for k, v := range p.CustomFields {
			items = append(items, k+": "+v.String())
		}
		parts = append(parts, "Additional Info:\n  - "+strings.Join(items, "\n  - "))
	}

	return strings.Join(parts, "\n")
}

// competitorContext is the short reference summary used when fabricating a
// competitor record.
func competitorContext(p *model.Product) string {
	category := p.Category
	if category == "" {
		category = "General"
	}
	parts := []string{
		"Name: " + p.Name,
		"Price: " + formatPrice(p.Currency, p.Price),
		"Category: " + category,
	}

	if len(p.KeyIngredients) > 0 {
		names := make([]string, 0, len(p.KeyIngredients))
		for _, ing := range p.KeyIngredients {
			names = append(names, ing.Name)
		}
		parts = append(parts, "Key Ingredients: "+strings.Join(names, ", "))
	}
	if len(p.Benefits) > 0 {
		parts = append(parts, "Benefits: "+strings.Join(p.Benefits, ", "))
	}
	if len(p.TargetAudience) > 0 {
		parts = append(parts, "Target Audience: "+strings.Join(p.TargetAudience, ", "))
	}

	return strings.Join(parts, "\n")
}
