package store

import (
	"context"
	"encoding/json"
	"time"
)

// Run is one recorded pipeline execution.
type Run struct {
	ID          string          `json:"id"`
	ProductName string          `json:"product_name"`
	Mode        string          `json:"input_mode"`
	Status      string          `json:"status"`
	Result      json.RawMessage `json:"result,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Store defines the run-log persistence interface.
type Store interface {
	CreateRun(ctx context.Context, productName, mode string) (*Run, error)
	FinishRun(ctx context.Context, runID, status string, result json.RawMessage) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
