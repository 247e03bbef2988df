package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/content-cli/internal/model"
)

// ParseStep converts the raw input mapping into a validated Product. The
// constructor enforces required fields and the price invariant; failures are
// validation errors and leave the state without a product model.
func ParseStep(ctx context.Context, st model.State) (model.Delta, error) {
	if len(st.RawInput) == 0 {
		return model.Delta{}, validationError(eris.New("parse: no raw input provided"))
	}

	product, err := model.NewProduct(st.RawInput)
	if err != nil {
		return model.Delta{}, validationError(err)
	}

	zap.L().Info("parsed product",
		zap.String("name", product.Name),
		zap.String("product_id", product.ID),
		zap.Float64("completeness_score", product.CompletenessScore),
		zap.Int("field_count", product.FieldCount),
	)

	return model.Delta{
		Product: product,
		Status:  model.StatusParsed,
	}, nil
}
