package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/content-cli/internal/model"
)

// OutputConfig names the output directory and the three page files.
type OutputConfig struct {
	Dir             string
	FAQFile         string
	ProductPageFile string
	ComparisonFile  string
}

// WriteStep serializes whichever pages exist to their own JSON files. Each
// file write is isolated: a failure becomes an error entry and the remaining
// files are still attempted. Zero pages present is a valid outcome.
func WriteStep(ctx context.Context, st model.State, cfg OutputConfig) (model.Delta, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return model.Delta{}, writeError(eris.Wrapf(err, "write: create output directory %s", cfg.Dir))
	}

	var written []string
	var errs []string

	writePage := func(page map[string]any, filename string) {
		if page == nil {
			zap.L().Debug("skipping output file, no page data", zap.String("file", filename))
			return
		}
		path := filepath.Join(cfg.Dir, filename)
		if err := writeJSONFile(path, page); err != nil {
			errs = append(errs, "write: "+filename+": "+err.Error())
			zap.L().Error("failed to write page", zap.String("path", path), zap.Error(err))
			return
		}
		written = append(written, path)
		zap.L().Info("wrote page", zap.String("path", path))
	}

	writePage(st.FAQPage, cfg.FAQFile)
	writePage(st.ProductPage, cfg.ProductPageFile)
	writePage(st.ComparisonPage, cfg.ComparisonFile)

	return model.Delta{
		OutputDir:    cfg.Dir,
		WrittenFiles: written,
		FilesWritten: len(written),
		Errors:       errs,
	}, nil
}

// writeJSONFile marshals with 2-space indentation, UTF-8, and no escaping of
// HTML or non-ASCII characters.
func writeJSONFile(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "encode")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return eris.Wrap(err, "write file")
	}
	return nil
}
