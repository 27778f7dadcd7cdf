package tutor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"

	"github.com/atenea-ai/atenea/internal/content"
	"github.com/atenea-ai/atenea/internal/index"
	"github.com/atenea-ai/atenea/internal/llm"
)

// Retrieval defaults; both are configuration constants, not hard-coded
// assumptions about ranking.
const (
	// DefaultTopK is the number of results requested per search.
	DefaultTopK = 4

	// DefaultMinResults is the threshold below which the level filter
	// is relaxed and the search retried once.
	DefaultMinResults = 2
)

// Retriever finds supporting material for an evaluated query. An empty
// result sequence is a valid outcome, never an error; errors are
// reserved for context cancellation.
type Retriever interface {
	Retrieve(ctx context.Context, q Query, eval Evaluation) ([]index.RankedResult, error)
}

// IndexRetriever searches the vector index with the evaluation's level
// as filter, relaxing to all levels once when the filtered search comes
// up short.
type IndexRetriever struct {
	embedder   ai.Embedder
	idx        index.Index
	topK       int
	minResults int
	logger     *slog.Logger
}

// RetrieverConfig configures an IndexRetriever.
type RetrieverConfig struct {
	Embedder   ai.Embedder
	Index      index.Index
	TopK       int // DefaultTopK if zero
	MinResults int // DefaultMinResults if zero
	Logger     *slog.Logger
}

// NewIndexRetriever creates a retriever over the given index.
func NewIndexRetriever(cfg RetrieverConfig) (*IndexRetriever, error) {
	if cfg.Embedder == nil {
		return nil, errors.New("tutor: retriever requires an embedder")
	}
	if cfg.Index == nil {
		return nil, errors.New("tutor: retriever requires an index")
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	minResults := cfg.MinResults
	if minResults <= 0 {
		minResults = DefaultMinResults
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &IndexRetriever{
		embedder:   cfg.Embedder,
		idx:        cfg.Index,
		topK:       topK,
		minResults: minResults,
		logger:     logger,
	}, nil
}

// Retrieve implements Retriever.
//
// The query embedding call gets one bounded retry; if embedding still
// fails the stage degrades to an empty sequence rather than failing the
// pipeline — the coordinator's degraded mode covers answering without
// sources.
func (r *IndexRetriever) Retrieve(ctx context.Context, q Query, eval Evaluation) ([]index.RankedResult, error) {
	queryEmbedding, err := r.embedQuery(ctx, q, eval)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		r.logger.Warn("query embedding unavailable, degrading to empty retrieval",
			"query_id", q.ID, "error", err)
		return nil, nil
	}

	filtered, err := r.search(ctx, queryEmbedding, eval.Level)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		r.logger.Warn("filtered search failed, degrading to empty retrieval",
			"query_id", q.ID, "error", err)
		return nil, nil
	}

	if len(filtered) >= r.minResults {
		return filtered, nil
	}

	r.logger.Debug("level-filtered search below threshold, relaxing filter",
		"query_id", q.ID, "level", eval.Level, "found", len(filtered), "min", r.minResults)

	relaxed, err := r.search(ctx, queryEmbedding, content.LevelAny)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return filtered, nil
	}

	// Relaxation must never shrink the result set.
	if len(relaxed) < len(filtered) {
		return filtered, nil
	}
	return relaxed, nil
}

// embedQuery embeds the search text with one bounded retry.
func (r *IndexRetriever) embedQuery(ctx context.Context, q Query, eval Evaluation) ([]float32, error) {
	text := searchText(q, eval)

	embedding, err := llm.EmbedText(ctx, r.embedder, text)
	if err == nil {
		return embedding, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	embedding, retryErr := llm.EmbedText(ctx, r.embedder, text)
	if retryErr != nil {
		return nil, fmt.Errorf("embedding query after retry: %w", retryErr)
	}
	return embedding, nil
}

// search runs one index search, mapping ErrIndexEmpty to an empty slice.
func (r *IndexRetriever) search(ctx context.Context, embedding []float32, level content.Level) ([]index.RankedResult, error) {
	results, err := r.idx.Search(ctx, embedding, r.topK, level)
	if err != nil {
		if errors.Is(err, index.ErrIndexEmpty) {
			return nil, nil
		}
		return nil, err
	}
	return results, nil
}

// searchText composes the semantic search text from the query and its
// assessment, so level and subject terms participate in matching.
func searchText(q Query, eval Evaluation) string {
	text := q.Text
	if q.Subject != "" {
		text += " " + q.Subject
	}
	return text + " nivel " + string(eval.Level)
}
