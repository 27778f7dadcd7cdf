package tutor

import (
	"context"
	"errors"
	"log/slog"
)

// ProfileRecorder archives evaluations into the student history store.
// Optional; recording failures never affect the pipeline outcome.
type ProfileRecorder interface {
	RecordEvaluation(ctx context.Context, q Query, eval Evaluation) error
}

// Orchestrator owns the per-query state machine and sequences the three
// stages. It never retries a completed stage — retries are internal to
// each stage's own contract — and it is the only component allowed to
// move a PipelineState.
//
// Orchestrator is stateless between queries and safe for concurrent use;
// each Process call works on its own PipelineState.
type Orchestrator struct {
	evaluator   Evaluator
	retriever   Retriever
	coordinator Coordinator
	recorder    ProfileRecorder // nil = history disabled
	logger      *slog.Logger
}

// OrchestratorConfig configures an Orchestrator.
type OrchestratorConfig struct {
	Evaluator   Evaluator
	Retriever   Retriever
	Coordinator Coordinator
	Recorder    ProfileRecorder // optional
	Logger      *slog.Logger
}

// NewOrchestrator creates an orchestrator from the three stages.
func NewOrchestrator(cfg OrchestratorConfig) (*Orchestrator, error) {
	if cfg.Evaluator == nil || cfg.Retriever == nil || cfg.Coordinator == nil {
		return nil, errors.New("tutor: orchestrator requires all three stages")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		evaluator:   cfg.Evaluator,
		retriever:   cfg.Retriever,
		coordinator: cfg.Coordinator,
		recorder:    cfg.Recorder,
		logger:      logger,
	}, nil
}

// Process runs one query through the pipeline. The returned state is
// terminal: answered with the final text, or failed with a descriptor
// naming the stage and cause (also returned as the error).
func (o *Orchestrator) Process(ctx context.Context, q Query) (*PipelineState, error) {
	state := newState(q)
	o.logger.Info("pipeline started", "query_id", q.ID, "subject", q.Subject)

	eval, err := o.evaluator.Evaluate(ctx, q)
	if err != nil {
		return o.fail(state, StageEvaluator, err)
	}
	if err := state.markEvaluated(eval); err != nil {
		return o.fail(state, StageEvaluator, err)
	}
	o.logger.Debug("query evaluated",
		"query_id", q.ID, "level", eval.Level, "difficulty", eval.Difficulty)
	o.record(ctx, q, eval)

	results, err := o.retriever.Retrieve(ctx, q, eval)
	if err != nil {
		return o.fail(state, StageRetriever, err)
	}
	if err := state.markRetrieved(results); err != nil {
		return o.fail(state, StageRetriever, err)
	}
	o.logger.Debug("resources retrieved", "query_id", q.ID, "count", len(results))

	answer, err := o.coordinator.Synthesize(ctx, q, eval, results)
	if err != nil {
		return o.fail(state, StageCoordinator, err)
	}
	if err := state.markAnswered(answer); err != nil {
		return o.fail(state, StageCoordinator, err)
	}

	o.logger.Info("pipeline answered",
		"query_id", q.ID, "level", eval.Level, "degraded", state.Degraded())
	return state, nil
}

// fail moves the state to failed and returns the failure descriptor.
func (o *Orchestrator) fail(state *PipelineState, stage Stage, cause error) (*PipelineState, error) {
	if err := state.markFailed(stage, cause); err != nil {
		// Already terminal; report the new cause without mutating the state.
		o.logger.Error("failure on terminal state", "query_id", state.Query.ID, "error", err)
		return state, &PipelineError{Stage: stage, Cause: cause}
	}
	o.logger.Warn("pipeline failed",
		"query_id", state.Query.ID, "stage", stage, "category", state.Err.Category())
	return state, state.Err
}

// record archives the evaluation, best effort.
func (o *Orchestrator) record(ctx context.Context, q Query, eval Evaluation) {
	if o.recorder == nil || q.StudentID == "" {
		return
	}
	if err := o.recorder.RecordEvaluation(ctx, q, eval); err != nil {
		o.logger.Warn("recording evaluation failed",
			"query_id", q.ID, "student_id", q.StudentID, "error", err)
	}
}
