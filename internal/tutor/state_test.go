package tutor

import (
	"errors"
	"testing"

	"github.com/atenea-ai/atenea/internal/content"
	"github.com/atenea-ai/atenea/internal/index"
)

func TestStateHappyPath(t *testing.T) {
	s := newState(NewQuery("¿Qué es un vector?", "algebra_lineal", ""))

	if s.Status != StatusPending {
		t.Fatalf("initial status = %q, want pending", s.Status)
	}

	eval := Evaluation{Level: content.LevelBasic, Difficulty: DifficultyConceptual}
	if err := s.markEvaluated(eval); err != nil {
		t.Fatalf("markEvaluated() error = %v", err)
	}
	if s.Status != StatusEvaluated || s.Evaluation == nil {
		t.Fatalf("after evaluate: status = %q, evaluation = %v", s.Status, s.Evaluation)
	}

	if err := s.markRetrieved([]index.RankedResult{}); err != nil {
		t.Fatalf("markRetrieved() error = %v", err)
	}
	if s.Status != StatusRetrieved {
		t.Fatalf("after retrieve: status = %q", s.Status)
	}

	if err := s.markAnswered("Un vector tiene magnitud y dirección."); err != nil {
		t.Fatalf("markAnswered() error = %v", err)
	}
	if s.Status != StatusAnswered || s.Answer == "" {
		t.Fatalf("after answer: status = %q, answer = %q", s.Status, s.Answer)
	}
	if !s.Status.Terminal() {
		t.Error("answered is not reported terminal")
	}
}

func TestStateNoBackwardTransitions(t *testing.T) {
	s := newState(NewQuery("x", "", ""))
	if err := s.markEvaluated(Evaluation{Level: content.LevelBasic, Difficulty: DifficultyConceptual}); err != nil {
		t.Fatal(err)
	}

	// evaluated -> answered skips retrieved and must be rejected.
	if err := s.markAnswered("atajo"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("markAnswered() from evaluated error = %v, want ErrInvalidTransition", err)
	}
	if s.Status != StatusEvaluated {
		t.Errorf("status mutated on rejected transition: %q", s.Status)
	}
}

func TestStateFailedFromAnyNonTerminal(t *testing.T) {
	for _, from := range []Status{StatusPending, StatusEvaluated, StatusRetrieved} {
		s := newState(NewQuery("x", "", ""))
		s.Status = from
		if err := s.markFailed(StageEvaluator, errors.New("boom")); err != nil {
			t.Errorf("markFailed() from %q error = %v", from, err)
			continue
		}
		if s.Err == nil || s.Err.Stage != StageEvaluator {
			t.Errorf("failure descriptor missing after fail from %q", from)
		}
	}
}

func TestStateTerminalIsImmutable(t *testing.T) {
	s := newState(NewQuery("x", "", ""))
	if err := s.markFailed(StageRetriever, errors.New("boom")); err != nil {
		t.Fatal(err)
	}

	if err := s.markFailed(StageCoordinator, errors.New("later")); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second markFailed() error = %v, want ErrInvalidTransition", err)
	}
	if s.Err.Stage != StageRetriever {
		t.Errorf("descriptor overwritten on terminal state: %q", s.Err.Stage)
	}

	answered := newState(NewQuery("x", "", ""))
	answered.Status = StatusAnswered
	if err := answered.markFailed(StageCoordinator, errors.New("late")); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("markFailed() on answered error = %v, want ErrInvalidTransition", err)
	}
}

func TestTransitionTableIsTotal(t *testing.T) {
	// Every status must appear in the table, terminal ones with no exits.
	for _, st := range []Status{StatusPending, StatusEvaluated, StatusRetrieved, StatusAnswered, StatusFailed} {
		next, ok := transitions[st]
		if !ok {
			t.Errorf("status %q missing from transition table", st)
			continue
		}
		if st.Terminal() && len(next) != 0 {
			t.Errorf("terminal status %q has outgoing transitions %v", st, next)
		}
		if !st.Terminal() && len(next) == 0 {
			t.Errorf("non-terminal status %q has no outgoing transitions", st)
		}
	}
}

func TestDegraded(t *testing.T) {
	s := newState(NewQuery("x", "", ""))
	_ = s.markEvaluated(Evaluation{Level: content.LevelBasic, Difficulty: DifficultyConceptual})
	_ = s.markRetrieved(nil)
	_ = s.markAnswered("respuesta general")

	if !s.Degraded() {
		t.Error("answered state with no results not reported degraded")
	}
}
