package model

import "time"

// Status tracks which stage the pipeline state has reached.
type Status string

const (
	StatusInitialized Status = "initialized"
	StatusParsed      Status = "parsed"
	StatusGenerating  Status = "generating"
	StatusBuilding    Status = "building"
	StatusComplete    Status = "complete"
	StatusError       Status = "error"
)

// InputMode describes how the raw record was submitted. Informational only;
// no step branches on it.
type InputMode string

const (
	InputModeJSON InputMode = "json"
	InputModeForm InputMode = "form"
)

// StepStatus is the outcome of a single pipeline step.
type StepStatus string

const (
	StepComplete StepStatus = "complete"
	StepFailed   StepStatus = "failed"
	StepSkipped  StepStatus = "skipped"
)

// StepResult records one step execution in the run trace.
type StepResult struct {
	Name       string     `json:"name"`
	Status     StepStatus `json:"status"`
	Duration   int64      `json:"duration_ms"`
	Usage      TokenUsage `json:"token_usage"`
	Error      string     `json:"error,omitempty"`
	FinishedAt time.Time  `json:"finished_at"`
}

// TokenUsage tracks token consumption of generative-model calls.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Add merges token usage from another instance.
func (t *TokenUsage) Add(other TokenUsage) {
	t.InputTokens += other.InputTokens
	t.OutputTokens += other.OutputTokens
}

// State is the record flowing through the pipeline. It is passed to steps by
// value; steps never mutate it, they return a Delta that the runner folds in
// via Apply. Errors, warnings, trace, and questions are append-only.
type State struct {
	RawInput map[string]any `json:"raw_input"`
	Mode     InputMode      `json:"input_mode"`

	Product    *Product `json:"product_model,omitempty"`
	Competitor *Product `json:"competitor_model,omitempty"`

	Questions  []Question            `json:"questions,omitempty"`
	ByCategory map[string][]Question `json:"questions_by_category,omitempty"`
	Blocks     *BlockSet             `json:"content_blocks,omitempty"`

	FAQPage        map[string]any `json:"faq_page,omitempty"`
	ProductPage    map[string]any `json:"product_page,omitempty"`
	ComparisonPage map[string]any `json:"comparison_page,omitempty"`

	OutputDir    string   `json:"output_directory,omitempty"`
	WrittenFiles []string `json:"written_files,omitempty"`
	FilesWritten int      `json:"files_written_count"`

	Status   Status       `json:"status"`
	Errors   []string     `json:"errors,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
	Trace    []StepResult `json:"step_trace,omitempty"`
	Usage    TokenUsage   `json:"token_usage"`
}

// NewState builds the initial pipeline state.
func NewState(raw map[string]any, mode InputMode) State {
	return State{
		RawInput: raw,
		Mode:     mode,
		Status:   StatusInitialized,
	}
}

// Delta is a step's partial state update: only newly-set fields are
// populated. Parallel steps produce deltas over disjoint fields, so folding
// them in any order yields the same state.
type Delta struct {
	Product    *Product
	Competitor *Product

	Questions  []Question
	ByCategory map[string][]Question
	Blocks     *BlockSet

	FAQPage        map[string]any
	ProductPage    map[string]any
	ComparisonPage map[string]any

	OutputDir    string
	WrittenFiles []string
	FilesWritten int

	Status   Status
	Errors   []string
	Warnings []string
	Usage    TokenUsage
}

// Apply folds a delta into the state and returns the new state. Non-list
// fields are set only when the delta populates them; list fields append.
func (s State) Apply(d Delta) State {
	if d.Product != nil {
		s.Product = d.Product
	}
	if d.Competitor != nil {
		s.Competitor = d.Competitor
	}
	if len(d.Questions) > 0 {
		s.Questions = append(s.Questions, d.Questions...)
	}
	if d.ByCategory != nil {
		s.ByCategory = d.ByCategory
	}
	if d.Blocks != nil {
		s.Blocks = d.Blocks
	}
	if d.FAQPage != nil {
		s.FAQPage = d.FAQPage
	}
	if d.ProductPage != nil {
		s.ProductPage = d.ProductPage
	}
	if d.ComparisonPage != nil {
		s.ComparisonPage = d.ComparisonPage
	}
	if d.OutputDir != "" {
		s.OutputDir = d.OutputDir
	}
	if len(d.WrittenFiles) > 0 {
		s.WrittenFiles = append(s.WrittenFiles, d.WrittenFiles...)
	}
	if d.FilesWritten > 0 {
		s.FilesWritten += d.FilesWritten
	}
	if d.Status != "" {
		s.Status = d.Status
	}
	s.Errors = append(s.Errors, d.Errors...)
	s.Warnings = append(s.Warnings, d.Warnings...)
	s.Usage.Add(d.Usage)
	return s
}
