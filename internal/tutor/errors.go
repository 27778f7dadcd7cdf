package tutor

import (
	"context"
	"errors"
	"fmt"

	"github.com/atenea-ai/atenea/internal/llm"
)

// ErrClassificationParse indicates the evaluator could not parse the
// model's structured output into the fixed enumerations.
var ErrClassificationParse = errors.New("classification output unparseable")

// Stage identifies which pipeline stage an error originated from.
type Stage string

// Pipeline stages.
const (
	StageEvaluator   Stage = "evaluator"
	StageRetriever   Stage = "retriever"
	StageCoordinator Stage = "coordinator"
)

// PipelineError is the failure descriptor surfaced to the caller when a
// pipeline reaches the failed state. It names the failing stage and
// wraps the underlying cause; it is never replaced by a default answer
// framed as success.
type PipelineError struct {
	Stage Stage
	Cause error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline failed at %s stage: %v", e.Stage, e.Cause)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Category returns a human-readable cause category, letting the caller
// decide whether re-submission is worthwhile.
func (e *PipelineError) Category() string {
	switch {
	case errors.Is(e.Cause, llm.ErrGenerationTimeout):
		return "generation timeout"
	case errors.Is(e.Cause, llm.ErrGenerationUnavailable):
		return "generation unavailable"
	case errors.Is(e.Cause, llm.ErrEmbeddingUnavailable):
		return "embedding unavailable"
	case errors.Is(e.Cause, context.Canceled):
		return "canceled"
	case errors.Is(e.Cause, context.DeadlineExceeded):
		return "timeout"
	default:
		return "internal"
	}
}
