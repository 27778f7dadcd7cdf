// Package tutor implements the three-stage tutoring pipeline: the
// evaluator assesses the student's knowledge level, the retriever finds
// supporting corpus material, and the coordinator synthesizes a leveled
// answer. The orchestrator sequences the stages through an explicit
// state machine, one PipelineState per in-flight query.
package tutor

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/atenea-ai/atenea/internal/content"
)

// ErrInvalidDifficulty indicates a difficulty outside the known types.
var ErrInvalidDifficulty = errors.New("invalid difficulty type")

// Difficulty classifies the pedagogical nature of a student's question.
type Difficulty string

// Known difficulty types.
const (
	DifficultyConceptual Difficulty = "conceptual"
	DifficultyProcedural Difficulty = "procedural"
	DifficultyApplied    Difficulty = "applied"
)

// Valid reports whether d is one of the known difficulty types.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyConceptual, DifficultyProcedural, DifficultyApplied:
		return true
	}
	return false
}

// ParseDifficulty normalizes free-form difficulty text, accepting the
// English and Spanish spellings the model is likely to produce.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "conceptual", "concepto", "conceptual difficulty":
		return DifficultyConceptual, nil
	case "procedural", "procedimental", "procedimiento":
		return DifficultyProcedural, nil
	case "applied", "aplicacion", "aplicación", "aplicada", "application":
		return DifficultyApplied, nil
	}
	return "", ErrInvalidDifficulty
}

// Query is one student question entering the pipeline. Immutable after
// creation.
type Query struct {
	ID        uuid.UUID
	Text      string
	Subject   string // optional subject hint, e.g. "algebra_lineal"
	StudentID string // optional, enables history-biased assessment
}

// NewQuery creates a Query with a fresh id.
func NewQuery(text, subject, studentID string) Query {
	return Query{
		ID:        uuid.New(),
		Text:      text,
		Subject:   subject,
		StudentID: studentID,
	}
}

// Evaluation is the evaluator stage's assessment of a query. Produced
// exactly once per pipeline run and immutable thereafter.
type Evaluation struct {
	Level          content.Level
	Difficulty     Difficulty
	Recommendation string
}
