package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/atenea-ai/atenea/internal/content"
	"github.com/atenea-ai/atenea/internal/llm"
)

// Postgres is a pgvector-backed Index. The tutor_documents table is
// created by the embedded migrations in the db package.
//
// Snapshot-read semantics come from PostgreSQL's MVCC: a search never
// observes a half-written ingest.
type Postgres struct {
	pool     *pgxpool.Pool
	embedder ai.Embedder
	logger   *slog.Logger
}

// NewPostgres creates a pgvector-backed index over an existing pool.
// The pool's lifecycle is managed by the caller.
func NewPostgres(pool *pgxpool.Pool, embedder ai.Embedder, logger *slog.Logger) *Postgres {
	if logger == nil {
		logger = slog.Default()
	}
	return &Postgres{pool: pool, embedder: embedder, logger: logger}
}

// Ingest upserts one item. When the stored body hash matches, only the
// metadata columns are updated and the cached embedding is kept.
func (p *Postgres) Ingest(ctx context.Context, item content.Item) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("index: %w", err)
	}

	sum := sha256.Sum256([]byte(item.Body))
	bodyHash := hex.EncodeToString(sum[:])

	var storedHash string
	err := p.pool.QueryRow(ctx,
		`SELECT body_hash FROM tutor_documents WHERE id = $1`, item.ID,
	).Scan(&storedHash)
	switch {
	case err == nil && storedHash == bodyHash:
		// Body unchanged: refresh metadata only, embedding stays cached.
		_, err = p.pool.Exec(ctx,
			`UPDATE tutor_documents
			 SET subject = $2, title = $3, level = $4, item_type = $5
			 WHERE id = $1`,
			item.ID, item.Subject, item.Title, string(item.Level), string(item.Type))
		if err != nil {
			return fmt.Errorf("index: updating metadata for %q: %w", item.ID, err)
		}
		return nil
	case err != nil && !errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("index: reading body hash for %q: %w", item.ID, err)
	}

	vector, err := llm.EmbedText(ctx, p.embedder, item.Document())
	if err != nil {
		return fmt.Errorf("index: embedding item %q: %w", item.ID, err)
	}
	embedding := pgvector.NewVector(vector)

	_, err = p.pool.Exec(ctx,
		`INSERT INTO tutor_documents (id, subject, title, body, level, item_type, body_hash, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET
		   subject = EXCLUDED.subject,
		   title = EXCLUDED.title,
		   body = EXCLUDED.body,
		   level = EXCLUDED.level,
		   item_type = EXCLUDED.item_type,
		   body_hash = EXCLUDED.body_hash,
		   embedding = EXCLUDED.embedding`,
		item.ID, item.Subject, item.Title, item.Body,
		string(item.Level), string(item.Type), bodyHash, &embedding)
	if err != nil {
		return fmt.Errorf("index: upserting %q: %w", item.ID, err)
	}

	p.logger.Debug("indexed item", "id", item.ID, "backend", BackendPostgres)
	return nil
}

// Search ranks stored items by cosine similarity to the query embedding.
// Ordering is deterministic: cosine distance ascending, then id ascending.
func (p *Postgres) Search(ctx context.Context, queryEmbedding []float32, k int, level content.Level) ([]RankedResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("index: k must be positive, got %d", k)
	}

	embedding := pgvector.NewVector(queryEmbedding)
	rows, err := p.pool.Query(ctx,
		`SELECT id, subject, title, body, level, item_type,
		        1 - (embedding <=> $1) AS similarity
		 FROM tutor_documents
		 WHERE $2::text = '' OR level = $2::text
		 ORDER BY embedding <=> $1 ASC, id ASC
		 LIMIT $3`,
		&embedding, string(level), k)
	if err != nil {
		return nil, fmt.Errorf("index: search failed: %w", err)
	}
	defer rows.Close()

	var results []RankedResult
	for rows.Next() {
		var (
			it    content.Item
			lvl   string
			typ   string
			score float64
		)
		if err := rows.Scan(&it.ID, &it.Subject, &it.Title, &it.Body, &lvl, &typ, &score); err != nil {
			return nil, fmt.Errorf("index: scanning result: %w", err)
		}
		it.Level = content.Level(lvl)
		it.Type = content.Type(typ)
		results = append(results, RankedResult{Item: it, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("index: iterating results: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrIndexEmpty
	}
	return results, nil
}

// Count returns the number of indexed items.
func (p *Postgres) Count(ctx context.Context) (int, error) {
	var n int
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tutor_documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count failed: %w", err)
	}
	return n, nil
}
