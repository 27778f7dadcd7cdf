package tutor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atenea-ai/atenea/internal/index"
	"github.com/atenea-ai/atenea/internal/llm"
)

// DefaultMaxSourceChars caps how much of each retrieved body goes into
// the synthesis prompt.
const DefaultMaxSourceChars = 400

// Coordinator synthesizes the final leveled answer. An error after the
// stage's own bounded retry is irrecoverable and fails the pipeline.
type Coordinator interface {
	Synthesize(ctx context.Context, q Query, eval Evaluation, results []index.RankedResult) (string, error)
}

// LLMCoordinator builds one structured prompt from the query, the
// evaluation and the retrieved sources, and issues a single generation
// call with one bounded retry.
//
// With no retrieved results it switches to degraded mode: the prompt
// instructs the model to answer from general knowledge at the assessed
// level without fabricating citations. Degraded mode is required
// behavior, not an error.
type LLMCoordinator struct {
	gen            llm.Generator
	maxSourceChars int
	logger         *slog.Logger
}

// NewLLMCoordinator creates a coordinator. maxSourceChars <= 0 selects
// DefaultMaxSourceChars.
func NewLLMCoordinator(gen llm.Generator, maxSourceChars int, logger *slog.Logger) *LLMCoordinator {
	if maxSourceChars <= 0 {
		maxSourceChars = DefaultMaxSourceChars
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMCoordinator{gen: gen, maxSourceChars: maxSourceChars, logger: logger}
}

// Synthesize implements Coordinator.
func (c *LLMCoordinator) Synthesize(ctx context.Context, q Query, eval Evaluation, results []index.RankedResult) (string, error) {
	prompt := coordinatorPrompt(q, eval, results, c.maxSourceChars)

	if len(results) == 0 {
		c.logger.Info("synthesizing in degraded mode, no retrieved sources",
			"query_id", q.ID, "level", eval.Level)
	}

	answer, err := c.gen.Generate(ctx, prompt)
	if err == nil {
		return c.validate(answer)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	c.logger.Debug("synthesis attempt failed, retrying once",
		"query_id", q.ID, "error", err)

	answer, retryErr := c.gen.Generate(ctx, prompt)
	if retryErr != nil {
		return "", fmt.Errorf("synthesis after retry: %w", retryErr)
	}
	return c.validate(answer)
}

// validate rejects blank output; a blank answer must never be framed as
// success.
func (c *LLMCoordinator) validate(answer string) (string, error) {
	if strings.TrimSpace(answer) == "" {
		return "", fmt.Errorf("%w: blank synthesis output", llm.ErrGenerationUnavailable)
	}
	return answer, nil
}
