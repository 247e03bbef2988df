package pipeline

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/content-cli/internal/model"
)

// faqEntry is one question as it appears on the FAQ page.
type faqEntry struct {
	question string
	answer   string
	category string
	priority string
}

func (e faqEntry) asMap() map[string]any {
	return map[string]any{
		"question": e.question,
		"answer":   e.answer,
		"category": e.category,
		"priority": e.priority,
	}
}

// FAQStep assembles the FAQ page from the faq_answer blocks: grouped by
// category, sorted within each group by priority (stable, high before medium
// before low).
func FAQStep(ctx context.Context, st model.State) (model.Delta, error) {
	if st.Product == nil {
		return model.Delta{}, missingDependency("faq: no product model in state")
	}
	if st.Blocks == nil {
		return model.Delta{}, missingDependency("faq: no content blocks in state")
	}
	if len(st.Blocks.FAQAnswers) == 0 {
		return model.Delta{}, missingContent("faq: no faq_answer blocks in content blocks")
	}

	overviewText := st.Blocks.Get(model.BlockOverview).Text()

	var all []faqEntry
	byCategory := make(map[string][]faqEntry)
	var categories []string
	for _, block := range st.Blocks.FAQAnswers {
		content := block.StructuredContent()
		if content == nil {
			continue
		}
		entry := faqEntry{
			question: stringOr(content["question"], ""),
			answer:   stringOr(content["answer"], ""),
			category: stringOr(content["category"], "General"),
			priority: stringOr(content["priority"], "medium"),
		}
		all = append(all, entry)
		if _, seen := byCategory[entry.category]; !seen {
			categories = append(categories, entry.category)
		}
		byCategory[entry.category] = append(byCategory[entry.category], entry)
	}

	priorityRank := map[string]int{"high": 0, "medium": 1, "low": 2}
	rank := func(p string) int {
		if r, ok := priorityRank[p]; ok {
			return r
		}
		return 1
	}
	for _, entries := range byCategory {
		sort.SliceStable(entries, func(i, j int) bool {
			return rank(entries[i].priority) < rank(entries[j].priority)
		})
	}

	flat := make([]any, 0, len(all))
	for _, e := range all {
		flat = append(flat, e.asMap())
	}
	grouped := make(map[string]any, len(byCategory))
	for category, entries := range byCategory {
		list := make([]any, 0, len(entries))
		for _, e := range entries {
			list = append(list, e.asMap())
		}
		grouped[category] = list
	}

	page := map[string]any{
		"page_type":        "faq",
		"product_name":     st.Product.Name,
		"product_overview": overviewText,
		"total_questions":  len(all),
		"categories":       categories,
		"faqs":             flat,
		"faqs_by_category": grouped,
		"metadata": map[string]any{
			"generated_at": time.Now().UTC().Format(time.RFC3339),
			"product_id":   st.Product.ID,
			"currency":     st.Product.Currency,
			"price":        st.Product.Price,
		},
	}

	zap.L().Info("assembled faq page",
		zap.Int("total_questions", len(all)),
		zap.Int("categories", len(categories)),
	)

	return model.Delta{FAQPage: page}, nil
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}
