package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState(t *testing.T) {
	st := NewState(map[string]any{"name": "X"}, InputModeJSON)
	assert.Equal(t, StatusInitialized, st.Status)
	assert.Equal(t, InputModeJSON, st.Mode)
	assert.Empty(t, st.Errors)
}

func TestApply_SetsAndAppends(t *testing.T) {
	st := NewState(nil, InputModeJSON)

	p, err := NewProduct(map[string]any{"name": "X", "price": float64(100)})
	require.NoError(t, err)

	st = st.Apply(Delta{
		Product:  p,
		Status:   StatusParsed,
		Warnings: []string{"first warning"},
	})
	assert.Same(t, p, st.Product)
	assert.Equal(t, StatusParsed, st.Status)

	st = st.Apply(Delta{
		Errors:   []string{"boom"},
		Warnings: []string{"second warning"},
		Usage:    TokenUsage{InputTokens: 10, OutputTokens: 5},
	})

	// Earlier fields survive; lists append.
	assert.Same(t, p, st.Product)
	assert.Equal(t, StatusParsed, st.Status)
	assert.Equal(t, []string{"first warning", "second warning"}, st.Warnings)
	assert.Equal(t, []string{"boom"}, st.Errors)
	assert.Equal(t, TokenUsage{InputTokens: 10, OutputTokens: 5}, st.Usage)
}

func TestApply_DisjointDeltasCommute(t *testing.T) {
	base := NewState(nil, InputModeJSON)

	questions := []Question{mustQuestion(t, "how much?", "Purchase", PriorityHigh)}
	p, err := NewProduct(map[string]any{"name": "Y", "price": float64(50)})
	require.NoError(t, err)

	d1 := Delta{Questions: questions}
	d2 := Delta{Competitor: p}

	ab := base.Apply(d1).Apply(d2)
	ba := base.Apply(d2).Apply(d1)

	assert.Equal(t, ab, ba)
}

func TestApply_ValueSemantics(t *testing.T) {
	base := NewState(nil, InputModeForm)
	updated := base.Apply(Delta{Errors: []string{"oops"}})

	assert.Empty(t, base.Errors)
	assert.Len(t, updated.Errors, 1)
}

func TestTokenUsage_Add(t *testing.T) {
	u := TokenUsage{InputTokens: 1, OutputTokens: 2}
	u.Add(TokenUsage{InputTokens: 10, OutputTokens: 20})
	assert.Equal(t, TokenUsage{InputTokens: 11, OutputTokens: 22}, u)
}
