package pipeline

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/content-cli/internal/model"
	"github.com/sells-group/content-cli/internal/store"
)

// mockCompleter is a testify mock for the Completer interface.
type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, system, user string) (string, model.TokenUsage, error) {
	args := m.Called(ctx, system, user)
	return args.String(0), args.Get(1).(model.TokenUsage), args.Error(2)
}

// mockStore is a testify mock for the run-log store.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateRun(ctx context.Context, productName, mode string) (*store.Run, error) {
	args := m.Called(ctx, productName, mode)
	if run := args.Get(0); run != nil {
		return run.(*store.Run), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) FinishRun(ctx context.Context, runID, status string, result json.RawMessage) error {
	args := m.Called(ctx, runID, status, result)
	return args.Error(0)
}

func (m *mockStore) GetRun(ctx context.Context, runID string) (*store.Run, error) {
	args := m.Called(ctx, runID)
	if run := args.Get(0); run != nil {
		return run.(*store.Run), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	args := m.Called(ctx, limit)
	if runs := args.Get(0); runs != nil {
		return runs.([]store.Run), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}

// newProduct builds a validated product for tests.
func newProduct(t *testing.T, raw map[string]any) *model.Product {
	t.Helper()
	p, err := model.NewProduct(raw)
	require.NoError(t, err)
	return p
}

// parsedState returns a state carrying a parsed product.
func parsedState(t *testing.T, raw map[string]any) model.State {
	t.Helper()
	st := model.NewState(raw, model.InputModeJSON)
	return st.Apply(model.Delta{Product: newProduct(t, raw), Status: model.StatusParsed})
}

// serumRaw is a fully-populated test record.
func serumRaw() map[string]any {
	return map[string]any{
		"name":     "Glow Serum",
		"price":    float64(499),
		"currency": "₹",
		"category": "skincare serum",
		"key_ingredients": []any{
			map[string]any{"name": "Vitamin C", "concentration": "10%", "purpose": "Brightening"},
			"Hyaluronic Acid",
		},
		"benefits":           []any{"Brightening", "Hydration"},
		"usage_instructions": "Apply two drops every morning.",
		"side_effects":       "Mild tingling on first use.",
		"target_audience":    []any{"adults", "oily skin"},
	}
}
