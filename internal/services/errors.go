package services

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat      = errors.New("unsupported file format")
	ErrExtractionFailed       = errors.New("text extraction failed")
	ErrEmptyContent           = errors.New("no text content found in document")
	ErrTextTooShort           = errors.New("resume text is too short or missing")
	ErrValidationFailed       = errors.New("text does not appear to be a valid resume")
	ErrModelInvocationFailed  = errors.New("model invocation failed")
	ErrMalformedModelResponse = errors.New("malformed model response")
	ErrMissingSection         = errors.New("required section marker missing")
	ErrRenderFailed           = errors.New("pdf rendering failed")
	ErrAnalysisFailed         = errors.New("analysis failed")
	ErrImprovementFailed      = errors.New("improvement generation failed")
	ErrImprovedResumeFailed   = errors.New("improved resume generation failed")
)

// PipelineState is a step of the analysis pipeline.
type PipelineState string

const (
	StateReceived              PipelineState = "received"
	StateExtracted             PipelineState = "extracted"
	StateValidated             PipelineState = "validated"
	StateAnalyzed              PipelineState = "analyzed"
	StateImprovementsGenerated PipelineState = "improvements_generated"
	StateRewritten             PipelineState = "rewritten"
	StateRendered              PipelineState = "rendered"
	StateDone                  PipelineState = "done"
	StateFailed                PipelineState = "failed"
)

// PipelineError records the last state reached before a failure and the failure kind.
type PipelineError struct {
	State PipelineState
	Stage error
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%v after %s: %v", e.Stage, e.State, e.Err)
}

func (e *PipelineError) Unwrap() []error {
	return []error{e.Stage, e.Err}
}

// Kind names the failure using the error taxonomy.
func (e *PipelineError) Kind() string {
	return ErrorKind(e)
}

// ErrorKind maps an error to its taxonomy name. Unknown errors are "Internal".
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return "UnsupportedFormat"
	case errors.Is(err, ErrEmptyContent):
		return "EmptyContent"
	case errors.Is(err, ErrExtractionFailed):
		return "ExtractionFailed"
	case errors.Is(err, ErrTextTooShort):
		return "TextTooShort"
	case errors.Is(err, ErrValidationFailed):
		return "ValidationFailed"
	case errors.Is(err, ErrModelInvocationFailed):
		return "ModelInvocationFailed"
	case errors.Is(err, ErrMissingSection), errors.Is(err, ErrMalformedModelResponse):
		return "MalformedModelResponse"
	case errors.Is(err, ErrRenderFailed):
		return "RenderFailed"
	default:
		return "Internal"
	}
}

func newPipelineError(state PipelineState, stage, err error) *PipelineError {
	return &PipelineError{State: state, Stage: stage, Err: err}
}
