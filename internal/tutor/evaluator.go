package tutor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atenea-ai/atenea/internal/content"
	"github.com/atenea-ai/atenea/internal/llm"
)

// Evaluator assesses a query's knowledge level. Implementations must
// return in-enumeration values on every path; an error is returned only
// for context cancellation.
type Evaluator interface {
	Evaluate(ctx context.Context, q Query) (Evaluation, error)
}

// ProfileSource supplies a student's dominant historical level, used to
// bias the heuristic fallback. Optional; a nil source disables biasing.
type ProfileSource interface {
	// DominantLevel returns the most frequent assessed level for the
	// student, or content.LevelAny when no history exists.
	DominantLevel(ctx context.Context, studentID string) (content.Level, error)
}

// LLMEvaluator classifies queries with one structured generation call.
//
// Failure policy: one bounded retry with a stricter prompt covers both
// transport failures and unparseable output; after that the keyword
// heuristic takes over. The evaluator therefore never drives the
// pipeline to failed on its own — only cancellation propagates.
type LLMEvaluator struct {
	gen      llm.Generator
	profiles ProfileSource // nil = no history biasing
	logger   *slog.Logger
}

// NewLLMEvaluator creates an evaluator. profiles may be nil.
func NewLLMEvaluator(gen llm.Generator, profiles ProfileSource, logger *slog.Logger) *LLMEvaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMEvaluator{gen: gen, profiles: profiles, logger: logger}
}

// Evaluate implements Evaluator.
func (e *LLMEvaluator) Evaluate(ctx context.Context, q Query) (Evaluation, error) {
	eval, err := e.tryGenerate(ctx, evaluatorPrompt(q))
	if err == nil {
		return eval, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Evaluation{}, ctxErr
	}
	e.logger.Debug("evaluation attempt failed, retrying with strict prompt",
		"query_id", q.ID, "error", err)

	eval, err = e.tryGenerate(ctx, strictEvaluatorPrompt(q))
	if err == nil {
		return eval, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Evaluation{}, ctxErr
	}

	// Both attempts exhausted: deterministic heuristic keeps the
	// pipeline moving.
	hint := e.levelHint(ctx, q.StudentID)
	fallback := heuristicEvaluation(q, hint)
	e.logger.Warn("evaluation fell back to heuristic classification",
		"query_id", q.ID, "level", fallback.Level, "cause", err)
	return fallback, nil
}

// tryGenerate runs one generation call and parses the structured output.
func (e *LLMEvaluator) tryGenerate(ctx context.Context, prompt string) (Evaluation, error) {
	text, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		return Evaluation{}, err
	}
	return parseEvaluation(text)
}

// levelHint fetches the student's dominant historical level, best effort.
func (e *LLMEvaluator) levelHint(ctx context.Context, studentID string) content.Level {
	if e.profiles == nil || studentID == "" {
		return content.LevelAny
	}
	level, err := e.profiles.DominantLevel(ctx, studentID)
	if err != nil {
		e.logger.Debug("profile lookup failed, skipping level bias",
			"student_id", studentID, "error", err)
		return content.LevelAny
	}
	return level
}

// rawEvaluation mirrors the JSON contract in the evaluator prompts.
type rawEvaluation struct {
	Level          string `json:"level"`
	Difficulty     string `json:"difficulty"`
	Recommendation string `json:"recommendation"`
}

// parseEvaluation extracts the JSON object from model output and maps it
// onto the fixed enumerations. Models wrap JSON in prose or markdown
// fences often enough that scanning for the outermost braces is the
// robust move.
func parseEvaluation(text string) (Evaluation, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Evaluation{}, fmt.Errorf("%w: no JSON object in output", ErrClassificationParse)
	}

	var raw rawEvaluation
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return Evaluation{}, fmt.Errorf("%w: %w", ErrClassificationParse, err)
	}

	level, err := content.ParseLevel(raw.Level)
	if err != nil {
		return Evaluation{}, fmt.Errorf("%w: level %q", ErrClassificationParse, raw.Level)
	}
	difficulty, err := ParseDifficulty(raw.Difficulty)
	if err != nil {
		return Evaluation{}, fmt.Errorf("%w: difficulty %q", ErrClassificationParse, raw.Difficulty)
	}

	return Evaluation{
		Level:          level,
		Difficulty:     difficulty,
		Recommendation: strings.TrimSpace(raw.Recommendation),
	}, nil
}
