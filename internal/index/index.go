// Package index provides similarity search over the educational corpus.
//
// An Index owns the embedding cache for corpus items: ingesting an item
// recomputes its embedding if and only if the body text changed. Search
// is deterministic — identical index state and query embedding always
// produce the identical ordered result sequence, with ties broken by
// item id ascending.
//
// Two backends are available behind the same interface: an in-memory
// copy-on-write index (the default) and a PostgreSQL/pgvector index for
// deployments that keep the corpus in a database.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atenea-ai/atenea/internal/content"
)

// VectorDimension is the embedding width the postgres schema is built
// for. Embedders must be configured to produce vectors of this size.
const VectorDimension = 768

// ErrIndexEmpty indicates a search matched no items under the requested
// filter. Callers treat this as a soft condition, not a fatal error.
var ErrIndexEmpty = errors.New("index: no items match filter")

// RankedResult pairs a corpus item with its similarity score for one
// query. Sequences of RankedResult are always ordered by descending
// score, ties by id ascending.
type RankedResult struct {
	Item  content.Item
	Score float64
}

// Index is the similarity-search contract consumed by the retriever
// stage and the application wiring.
type Index interface {
	// Ingest adds or updates one item, embedding its body if needed.
	// Idempotent for identical body text.
	Ingest(ctx context.Context, item content.Item) error

	// Search returns up to k items ranked by descending cosine
	// similarity to the query embedding, restricted to the given level
	// unless level is content.LevelAny. Returns ErrIndexEmpty when
	// nothing matches the filter.
	Search(ctx context.Context, queryEmbedding []float32, k int, level content.Level) ([]RankedResult, error)

	// Count returns the number of indexed items.
	Count(ctx context.Context) (int, error)
}

// Backend names accepted by New.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config carries the dependencies an index backend may need.
type Config struct {
	Embedder ai.Embedder
	Logger   *slog.Logger
	Pool     *pgxpool.Pool // postgres backend only
}

// New creates an Index for the given backend name.
func New(backend string, cfg Config) (Index, error) {
	switch backend {
	case BackendMemory, "":
		return NewMemory(cfg.Embedder, cfg.Logger), nil
	case BackendPostgres:
		if cfg.Pool == nil {
			return nil, errors.New("index: postgres backend requires a connection pool")
		}
		return NewPostgres(cfg.Pool, cfg.Embedder, cfg.Logger), nil
	default:
		return nil, fmt.Errorf("index: unknown backend %q", backend)
	}
}

// IngestAll ingests every item from the store, returning the number of
// items indexed. Used at startup to warm the index from the seed corpus.
func IngestAll(ctx context.Context, idx Index, store *content.Store) (int, error) {
	items := store.List()
	for i, it := range items {
		if err := idx.Ingest(ctx, it); err != nil {
			return i, fmt.Errorf("ingesting %q: %w", it.ID, err)
		}
	}
	return len(items), nil
}
