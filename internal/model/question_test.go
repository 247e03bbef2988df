package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuestion(t *testing.T) {
	q, err := NewQuestion("Is this safe for sensitive skin?", "Yes, it is dermatologically tested.", "Safety", []string{"side_effects"}, PriorityHigh, "llm")
	require.NoError(t, err)

	assert.Equal(t, "q_is_this_safe", q.ID)
	assert.Equal(t, "Safety", q.Category)
	assert.Equal(t, PriorityHigh, q.Priority)
	assert.Equal(t, "llm", q.GeneratedFrom)
}

func TestNewQuestion_Invalid(t *testing.T) {
	_, err := NewQuestion("", "answer", "Safety", nil, PriorityHigh, "llm")
	assert.Error(t, err)

	_, err = NewQuestion("question?", "", "Safety", nil, PriorityHigh, "llm")
	assert.Error(t, err)

	_, err = NewQuestion("question?", "answer", "Bogus", nil, PriorityHigh, "llm")
	assert.Error(t, err)

	_, err = NewQuestion("question?", "answer", "Safety", nil, "urgent", "llm")
	assert.Error(t, err)
}

func TestNewQuestion_PriorityDefault(t *testing.T) {
	q, err := NewQuestion("question?", "answer", "Usage", nil, "", "llm")
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, q.Priority)
}

func mustQuestion(t *testing.T, text, category string, priority Priority) Question {
	t.Helper()
	q, err := NewQuestion(text, "answer", category, nil, priority, "llm")
	require.NoError(t, err)
	return *q
}

func TestGroupByCategory_Partition(t *testing.T) {
	questions := []Question{
		mustQuestion(t, "one", "Safety", PriorityLow),
		mustQuestion(t, "two", "Usage", PriorityHigh),
		mustQuestion(t, "three", "Safety", PriorityHigh),
	}

	grouped := GroupByCategory(questions)

	total := 0
	for _, group := range grouped {
		total += len(group)
	}
	assert.Equal(t, len(questions), total)
	assert.Len(t, grouped["Safety"], 2)
	assert.Len(t, grouped["Usage"], 1)
}

func TestSortByPriority_StableOrder(t *testing.T) {
	questions := []Question{
		mustQuestion(t, "low one", "Safety", PriorityLow),
		mustQuestion(t, "medium one", "Safety", PriorityMedium),
		mustQuestion(t, "high one", "Safety", PriorityHigh),
		mustQuestion(t, "high two", "Safety", PriorityHigh),
		mustQuestion(t, "medium two", "Safety", PriorityMedium),
	}

	SortByPriority(questions)

	texts := make([]string, 0, len(questions))
	for _, q := range questions {
		texts = append(texts, q.Text)
	}
	// high < medium < low, equal priorities keep input order.
	assert.Equal(t, []string{"high one", "high two", "medium one", "medium two", "low one"}, texts)
}
