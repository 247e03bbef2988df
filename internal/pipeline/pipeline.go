package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/content-cli/internal/config"
	"github.com/sells-group/content-cli/internal/model"
	"github.com/sells-group/content-cli/internal/store"
)

// Step names, in execution order.
const (
	StepParse       = "parse"
	StepQuestions   = "questions"
	StepCompetitor  = "competitor"
	StepBlocks      = "blocks"
	StepFAQ         = "faq"
	StepProductPage = "product_page"
	StepComparison  = "comparison"
	StepWrite       = "write"
)

// Pipeline runs the fixed step graph over one raw record:
// parse → {questions ∥ competitor} → blocks → {faq ∥ product_page ∥
// comparison} → write.
type Pipeline struct {
	cfg       *config.Config
	store     store.Store
	completer Completer
}

// New creates a Pipeline. The store may be nil; run logging is then skipped.
func New(cfg *config.Config, st store.Store, completer Completer) *Pipeline {
	return &Pipeline{cfg: cfg, store: st, completer: completer}
}

// stepOutcome is one step's delta plus its trace entry.
type stepOutcome struct {
	delta  model.Delta
	result model.StepResult
}

// runStep executes one step function and converts any failure into an error
// entry plus a failed trace record, so sibling and downstream steps keep
// running against whatever state exists.
func runStep(name string, fn func() (model.Delta, error)) stepOutcome {
	start := time.Now()
	delta, err := fn()
	duration := time.Since(start).Milliseconds()

	result := model.StepResult{
		Name:       name,
		Status:     model.StepComplete,
		Duration:   duration,
		Usage:      delta.Usage,
		FinishedAt: time.Now().UTC(),
	}
	if err != nil {
		result.Status = model.StepFailed
		result.Error = err.Error()
		delta.Errors = append(delta.Errors, name+": "+err.Error())
		zap.L().Error("step failed",
			zap.String("step", name),
			zap.Int64("duration_ms", duration),
			zap.String("failure_kind", string(Classify(err))),
			zap.Error(err),
		)
	} else {
		zap.L().Info("step complete",
			zap.String("step", name),
			zap.Int64("duration_ms", duration),
		)
	}

	return stepOutcome{delta: delta, result: result}
}

// apply folds a step outcome into the state.
func apply(st model.State, out stepOutcome) model.State {
	st = st.Apply(out.delta)
	st.Trace = append(st.Trace, out.result)
	return st
}

// Run executes the full pipeline and returns the final accumulated state.
// Step failures never abort the run; the worst outcome is an accumulated
// error list and fewer than three output files.
func (p *Pipeline) Run(ctx context.Context, raw map[string]any, mode model.InputMode) model.State {
	log := zap.L().With(zap.String("input_mode", string(mode)))
	log.Info("pipeline: starting")

	st := model.NewState(raw, mode)
	runID := p.recordRunStart(ctx, raw, mode)

	st = apply(st, runStep(StepParse, func() (model.Delta, error) {
		return ParseStep(ctx, st)
	}))

	// Generation fan-out: questions and competitor read only the parsed
	// record and write disjoint fields, so their deltas merge in either
	// order. Collected into fixed slots and applied after the join for a
	// deterministic trace.
	if st.Product != nil {
		st.Status = model.StatusGenerating
	}
	genOutcomes := make([]stepOutcome, 2)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		genOutcomes[0] = runStep(StepQuestions, func() (model.Delta, error) {
			return QuestionsStep(gCtx, st, p.completer, p.cfg.Pipeline.MinQuestions)
		})
		return nil
	})
	g.Go(func() error {
		genOutcomes[1] = runStep(StepCompetitor, func() (model.Delta, error) {
			return CompetitorStep(gCtx, st, p.completer)
		})
		return nil
	})
	_ = g.Wait()
	for _, out := range genOutcomes {
		st = apply(st, out)
	}

	st = apply(st, runStep(StepBlocks, func() (model.Delta, error) {
		return BlocksStep(ctx, st, p.completer, EnhanceOptions{
			Enabled:   p.cfg.Pipeline.EnhanceOverview,
			Threshold: p.cfg.Pipeline.EnhanceThreshold,
		})
	}))

	// Assembly fan-out over the finished block set.
	asmOutcomes := make([]stepOutcome, 3)
	g, gCtx = errgroup.WithContext(ctx)
	g.Go(func() error {
		asmOutcomes[0] = runStep(StepFAQ, func() (model.Delta, error) {
			return FAQStep(gCtx, st)
		})
		return nil
	})
	g.Go(func() error {
		asmOutcomes[1] = runStep(StepProductPage, func() (model.Delta, error) {
			return ProductPageStep(gCtx, st)
		})
		return nil
	})
	g.Go(func() error {
		asmOutcomes[2] = runStep(StepComparison, func() (model.Delta, error) {
			return ComparisonStep(gCtx, st)
		})
		return nil
	})
	_ = g.Wait()
	for _, out := range asmOutcomes {
		st = apply(st, out)
	}

	st = apply(st, runStep(StepWrite, func() (model.Delta, error) {
		return WriteStep(ctx, st, OutputConfig{
			Dir:             p.cfg.Output.Dir,
			FAQFile:         p.cfg.Output.FAQFile,
			ProductPageFile: p.cfg.Output.ProductPageFile,
			ComparisonFile:  p.cfg.Output.ComparisonFile,
		})
	}))

	if len(st.Errors) > 0 {
		st.Status = model.StatusError
	} else {
		st.Status = model.StatusComplete
	}

	p.recordRunFinish(ctx, runID, st)

	log.Info("pipeline: finished",
		zap.String("status", string(st.Status)),
		zap.Int("files_written", st.FilesWritten),
		zap.Int("errors", len(st.Errors)),
		zap.Int("warnings", len(st.Warnings)),
	)

	return st
}

// recordRunStart logs the run in the store. Best-effort: store failures are
// warnings, never run failures.
func (p *Pipeline) recordRunStart(ctx context.Context, raw map[string]any, mode model.InputMode) string {
	if p.store == nil {
		return ""
	}
	name, _ := raw["name"].(string)
	run, err := p.store.CreateRun(ctx, name, string(mode))
	if err != nil {
		zap.L().Warn("pipeline: failed to record run start", zap.Error(err))
		return ""
	}
	return run.ID
}

func (p *Pipeline) recordRunFinish(ctx context.Context, runID string, st model.State) {
	if p.store == nil || runID == "" {
		return
	}
	result, err := json.Marshal(st)
	if err != nil {
		zap.L().Warn("pipeline: failed to marshal final state", zap.Error(err))
		result = nil
	}
	if err := p.store.FinishRun(ctx, runID, string(st.Status), result); err != nil {
		zap.L().Warn("pipeline: failed to record run finish", zap.Error(err))
	}
}
