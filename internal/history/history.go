// Package history archives evaluator assessments per student in
// PostgreSQL. The archive is append-only; the evaluator reads it back to
// bias its heuristic fallback toward a student's dominant level.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atenea-ai/atenea/internal/content"
	"github.com/atenea-ai/atenea/internal/tutor"
)

// ErrNoHistory indicates the student has no archived evaluations.
var ErrNoHistory = errors.New("history: no evaluations for student")

// Entry is one archived assessment.
type Entry struct {
	QueryText  string
	Level      content.Level
	Difficulty tutor.Difficulty
	CreatedAt  time.Time
}

// Store persists evaluations in the student_evaluations table, created
// by the embedded migrations in the db package. It implements both
// tutor.ProfileRecorder and tutor.ProfileSource.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore creates a history store over an existing pool. The pool's
// lifecycle is managed by the caller.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// RecordEvaluation appends one assessment. Implements
// tutor.ProfileRecorder.
func (s *Store) RecordEvaluation(ctx context.Context, q tutor.Query, eval tutor.Evaluation) error {
	if q.StudentID == "" {
		return errors.New("history: empty student id")
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO student_evaluations (id, student_id, query_text, level, difficulty)
		 VALUES ($1, $2, $3, $4, $5)`,
		q.ID, q.StudentID, q.Text, string(eval.Level), string(eval.Difficulty))
	if err != nil {
		return fmt.Errorf("history: recording evaluation %s: %w", q.ID, err)
	}

	s.logger.Debug("evaluation archived",
		"query_id", q.ID, "student_id", q.StudentID, "level", eval.Level)
	return nil
}

// DominantLevel returns the student's most frequently assessed level,
// or content.LevelAny when no history exists. Frequency ties resolve to
// the lower tier, so biasing stays conservative. Implements
// tutor.ProfileSource.
func (s *Store) DominantLevel(ctx context.Context, studentID string) (content.Level, error) {
	if studentID == "" {
		return content.LevelAny, nil
	}

	var level string
	err := s.pool.QueryRow(ctx,
		`SELECT level FROM student_evaluations
		 WHERE student_id = $1
		 GROUP BY level
		 ORDER BY COUNT(*) DESC,
		          CASE level
		            WHEN 'basic' THEN 0
		            WHEN 'intermediate' THEN 1
		            ELSE 2
		          END ASC
		 LIMIT 1`,
		studentID,
	).Scan(&level)
	if errors.Is(err, pgx.ErrNoRows) {
		return content.LevelAny, nil
	}
	if err != nil {
		return content.LevelAny, fmt.Errorf("history: reading dominant level for %q: %w", studentID, err)
	}
	return content.Level(level), nil
}

// Recent returns the student's latest assessments, newest first.
// Returns ErrNoHistory when the student has none.
func (s *Store) Recent(ctx context.Context, studentID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.pool.Query(ctx,
		`SELECT query_text, level, difficulty, created_at
		 FROM student_evaluations
		 WHERE student_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("history: listing evaluations for %q: %w", studentID, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e     Entry
			level string
			diff  string
		)
		if err := rows.Scan(&e.QueryText, &level, &diff, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scanning entry: %w", err)
		}
		e.Level = content.Level(level)
		e.Difficulty = tutor.Difficulty(diff)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterating entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoHistory, studentID)
	}
	return entries, nil
}
