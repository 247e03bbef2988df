package pipeline

import (
	"errors"

	"github.com/rotisserie/eris"
)

// FailureKind categorizes step failures so callers and the run trace can tell
// input problems apart from generation or filesystem problems.
type FailureKind string

const (
	// KindValidation marks records rejected during input validation.
	KindValidation FailureKind = "validation_error"
	// KindMissingDependency marks a step running without a required upstream
	// result, such as the comparison builder with no competitor model.
	KindMissingDependency FailureKind = "missing_dependency"
	// KindMissingContent marks an assembly step with no content to assemble.
	KindMissingContent FailureKind = "missing_content"
	// KindGenerationParse marks unusable model output, such as replies that
	// do not decode as the expected JSON shape.
	KindGenerationParse FailureKind = "generation_parse_error"
	// KindWrite marks filesystem failures during output writing.
	KindWrite FailureKind = "write_error"
	// KindStepFailure is the catch-all for other step errors.
	KindStepFailure FailureKind = "step_failure"
)

// StepError carries a failure kind alongside the underlying error.
type StepError struct {
	Kind FailureKind
	Err  error
}

func (e *StepError) Error() string {
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func validationError(err error) error {
	return &StepError{Kind: KindValidation, Err: err}
}

func missingDependency(msg string) error {
	return &StepError{Kind: KindMissingDependency, Err: eris.New(msg)}
}

func missingContent(msg string) error {
	return &StepError{Kind: KindMissingContent, Err: eris.New(msg)}
}

func generationParseError(err error) error {
	return &StepError{Kind: KindGenerationParse, Err: err}
}

func writeError(err error) error {
	return &StepError{Kind: KindWrite, Err: err}
}

// Classify returns the failure kind of an error chain. Errors with no
// StepError in the chain classify as plain step failures.
func Classify(err error) FailureKind {
	var se *StepError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindStepFailure
}
