package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/content-cli/internal/model"
	"github.com/sells-group/content-cli/internal/pipeline"
	"github.com/sells-group/content-cli/internal/store"
	anthropicpkg "github.com/sells-group/content-cli/pkg/anthropic"
)

var (
	runInput string
	runMode  string
	runOut   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the content pipeline for a single product record",
	Long:  "Reads a raw product record (JSON file or stdin), runs the full pipeline, writes the output pages, and prints the final state to stdout.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		raw, err := readRawInput(runInput)
		if err != nil {
			return err
		}

		mode := model.InputMode(runMode)
		switch mode {
		case model.InputModeJSON, model.InputModeForm:
		default:
			return eris.Errorf("invalid input mode %q (want json or form)", runMode)
		}

		if runOut != "" {
			cfg.Output.Dir = runOut
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		completer := newCompleter()

		p := pipeline.New(cfg, st, completer)
		final := p.Run(ctx, raw, mode)

		zap.L().Info("run finished",
			zap.String("status", string(final.Status)),
			zap.Int("files_written", final.FilesWritten),
		)

		// Print final state JSON to stdout. Accumulated step errors are
		// part of the result, not an exit failure.
		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(final)
	},
}

// readRawInput decodes the raw record from a file, or stdin when path is "-".
func readRawInput(path string) (map[string]any, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "read input %s", path)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "decode input record")
	}
	return raw, nil
}

// initStore opens and migrates the run-log database.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// newCompleter builds the rate-limited completion facade.
func newCompleter() pipeline.Completer {
	client := anthropicpkg.NewClient(cfg.Anthropic.Key)
	return pipeline.NewCompleter(
		client,
		cfg.Anthropic.Model,
		cfg.Anthropic.MaxTokens,
		cfg.Anthropic.Temperature,
		cfg.Anthropic.RequestsPerSecond,
	)
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "path to the raw product record JSON, or - for stdin (required)")
	runCmd.Flags().StringVar(&runMode, "mode", "json", "input mode tag (json or form)")
	runCmd.Flags().StringVar(&runOut, "out", "", "output directory override")
	_ = runCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(runCmd)
}
