package model

import (
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// QuestionCategories is the fixed category set for generated questions.
var QuestionCategories = []string{
	"Informational",
	"Safety",
	"Usage",
	"Benefits",
	"Purchase",
	"Comparison",
	"Ingredients",
	"Compatibility",
	"Storage",
	"Results",
	"Alternatives",
	"Suitability",
	"Application",
	"Value",
	"Concerns",
}

// ValidCategory reports whether c is in the fixed category set.
func ValidCategory(c string) bool {
	for _, v := range QuestionCategories {
		if v == c {
			return true
		}
	}
	return false
}

// Priority is the importance level of a question.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// priorityRank maps priorities to numeric ranks for sorting. Lower rank sorts
// first; unknown values rank as medium.
var priorityRank = map[Priority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

func rankOf(p Priority) int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return 1
}

// Question is one generated question/answer pair. Immutable after creation.
type Question struct {
	Text          string    `json:"question_text"`
	Answer        string    `json:"answer"`
	Category      string    `json:"category"`
	RelatedFields []string  `json:"related_fields,omitempty"`
	Priority      Priority  `json:"priority"`
	ID            string    `json:"question_id"`
	GeneratedFrom string    `json:"generated_from"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewQuestion validates and constructs a Question. Priority defaults to
// medium when empty; category must be in the fixed set.
func NewQuestion(text, answer, category string, related []string, priority Priority, generatedFrom string) (*Question, error) {
	if strings.TrimSpace(text) == "" {
		return nil, eris.New("question: question_text is required")
	}
	if strings.TrimSpace(answer) == "" {
		return nil, eris.New("question: answer is required")
	}
	if !ValidCategory(category) {
		return nil, eris.Errorf("question: invalid category %q", category)
	}
	if priority == "" {
		priority = PriorityMedium
	}
	switch priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
	default:
		return nil, eris.Errorf("question: invalid priority %q", priority)
	}
	if generatedFrom == "" {
		generatedFrom = "template"
	}

	return &Question{
		Text:          text,
		Answer:        answer,
		Category:      category,
		RelatedFields: related,
		Priority:      priority,
		ID:            questionID(text),
		GeneratedFrom: generatedFrom,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// questionID derives an identifier from the first three words of the text.
func questionID(text string) string {
	words := strings.Fields(strings.ToLower(text))
	if len(words) > 3 {
		words = words[:3]
	}
	return "q_" + strings.Join(words, "_")
}

// GroupByCategory indexes questions by category, preserving input order
// within each group.
func GroupByCategory(questions []Question) map[string][]Question {
	out := make(map[string][]Question)
	for _, q := range questions {
		out[q.Category] = append(out[q.Category], q)
	}
	return out
}

// SortByPriority stably sorts questions in place using the fixed order
// high < medium < low. Equal-priority questions keep their relative order.
func SortByPriority(questions []Question) {
	sort.SliceStable(questions, func(i, j int) bool {
		return rankOf(questions[i].Priority) < rankOf(questions[j].Priority)
	})
}
