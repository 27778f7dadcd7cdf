package tutor

import (
	"errors"
	"fmt"
	"time"

	"github.com/atenea-ai/atenea/internal/index"
)

// ErrInvalidTransition indicates an attempt to move a PipelineState
// against the transition table.
var ErrInvalidTransition = errors.New("invalid state transition")

// Status is the lifecycle phase of one pipeline run.
type Status string

// Pipeline statuses. Answered and failed are terminal.
const (
	StatusPending   Status = "pending"
	StatusEvaluated Status = "evaluated"
	StatusRetrieved Status = "retrieved"
	StatusAnswered  Status = "answered"
	StatusFailed    Status = "failed"
)

// transitions is the complete forward-only transition table. Failed is
// reachable from every non-terminal state; there are no backward edges.
var transitions = map[Status][]Status{
	StatusPending:   {StatusEvaluated, StatusFailed},
	StatusEvaluated: {StatusRetrieved, StatusFailed},
	StatusRetrieved: {StatusAnswered, StatusFailed},
	StatusAnswered:  {},
	StatusFailed:    {},
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusAnswered || s == StatusFailed
}

// PipelineState is the orchestrator's working record for one query.
// Exactly one exists per in-flight query; the orchestrator owns it
// exclusively until it is returned to the caller, after which it is
// immutable (both terminal statuses freeze the record).
type PipelineState struct {
	Query      Query
	Evaluation *Evaluation
	Results    []index.RankedResult
	Answer     string
	Status     Status
	Err        *PipelineError

	CreatedAt time.Time
	UpdatedAt time.Time
}

// newState creates a pending PipelineState for the query.
func newState(q Query) *PipelineState {
	now := time.Now()
	return &PipelineState{
		Query:     q,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// transition validates and applies a status change.
func (s *PipelineState) transition(to Status) error {
	for _, allowed := range transitions[s.Status] {
		if allowed == to {
			s.Status = to
			s.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status, to)
}

// markEvaluated stores the evaluation and advances to evaluated.
func (s *PipelineState) markEvaluated(eval Evaluation) error {
	if err := s.transition(StatusEvaluated); err != nil {
		return err
	}
	s.Evaluation = &eval
	return nil
}

// markRetrieved stores the ranked results (possibly empty) and advances
// to retrieved.
func (s *PipelineState) markRetrieved(results []index.RankedResult) error {
	if err := s.transition(StatusRetrieved); err != nil {
		return err
	}
	s.Results = results
	return nil
}

// markAnswered stores the final answer and advances to answered.
func (s *PipelineState) markAnswered(answer string) error {
	if err := s.transition(StatusAnswered); err != nil {
		return err
	}
	s.Answer = answer
	return nil
}

// markFailed records the failure descriptor and moves to failed.
func (s *PipelineState) markFailed(stage Stage, cause error) error {
	if err := s.transition(StatusFailed); err != nil {
		return err
	}
	s.Err = &PipelineError{Stage: stage, Cause: cause}
	return nil
}

// Degraded reports whether the answer was synthesized without any
// retrieved supporting content.
func (s *PipelineState) Degraded() bool {
	return s.Status == StatusAnswered && len(s.Results) == 0
}
