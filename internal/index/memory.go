package index

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/firebase/genkit/go/ai"

	"github.com/atenea-ai/atenea/internal/content"
	"github.com/atenea-ai/atenea/internal/llm"
)

// Memory is an in-memory Index with copy-on-write snapshots.
//
// Searches read an immutable snapshot loaded atomically, so they never
// observe a partially written ingest. Ingests are serialized by a mutex,
// build a new snapshot, and swap it in one atomic store. This favors the
// expected workload: rare content updates under heavy query traffic.
type Memory struct {
	embedder ai.Embedder
	logger   *slog.Logger

	writeMu  sync.Mutex
	snapshot atomic.Pointer[memSnapshot]
}

// memSnapshot is an immutable view of the index. entries are sorted by
// item id ascending; that order is the tie-break for equal scores.
type memSnapshot struct {
	entries []memEntry
}

type memEntry struct {
	item     content.Item
	bodyHash [sha256.Size]byte
	vector   []float32
}

// NewMemory creates an empty in-memory index.
func NewMemory(embedder ai.Embedder, logger *slog.Logger) *Memory {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Memory{
		embedder: embedder,
		logger:   logger,
	}
	m.snapshot.Store(&memSnapshot{})
	return m
}

// Ingest adds or updates an item. The embedding is recomputed only when
// the body text changed; metadata-only updates reuse the cached vector.
func (m *Memory) Ingest(ctx context.Context, item content.Item) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("index: %w", err)
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	cur := m.snapshot.Load()
	bodyHash := sha256.Sum256([]byte(item.Body))

	// Reuse the cached vector when the body is unchanged.
	var vector []float32
	for _, e := range cur.entries {
		if e.item.ID == item.ID && e.bodyHash == bodyHash {
			if e.item == item {
				// Fully identical: nothing to do.
				return nil
			}
			vector = e.vector
			break
		}
	}

	if vector == nil {
		v, err := llm.EmbedText(ctx, m.embedder, item.Document())
		if err != nil {
			return fmt.Errorf("index: embedding item %q: %w", item.ID, err)
		}
		vector = v
	}

	next := make([]memEntry, 0, len(cur.entries)+1)
	for _, e := range cur.entries {
		if e.item.ID != item.ID {
			next = append(next, e)
		}
	}
	next = append(next, memEntry{item: item, bodyHash: bodyHash, vector: vector})
	sort.Slice(next, func(i, j int) bool { return next[i].item.ID < next[j].item.ID })

	m.snapshot.Store(&memSnapshot{entries: next})
	m.logger.Debug("indexed item", "id", item.ID, "items", len(next))
	return nil
}

// Search ranks indexed items by cosine similarity to the query embedding.
func (m *Memory) Search(ctx context.Context, queryEmbedding []float32, k int, level content.Level) ([]RankedResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("index: k must be positive, got %d", k)
	}

	snap := m.snapshot.Load()

	results := make([]RankedResult, 0, len(snap.entries))
	for _, e := range snap.entries {
		if level != content.LevelAny && e.item.Level != level {
			continue
		}
		results = append(results, RankedResult{
			Item:  e.item,
			Score: cosineSimilarity(queryEmbedding, e.vector),
		})
	}
	if len(results) == 0 {
		return nil, ErrIndexEmpty
	}

	// Entries are pre-sorted by id, so a stable sort on score keeps the
	// id tie-break without comparing ids explicitly. The explicit
	// comparison stays anyway: determinism is a contract, not a side
	// effect of input order.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Item.ID < results[j].Item.ID
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Count returns the number of indexed items.
func (m *Memory) Count(_ context.Context) (int, error) {
	return len(m.snapshot.Load().entries), nil
}

// cosineSimilarity computes the cosine of the angle between a and b.
// Mismatched lengths or zero vectors score 0 rather than erroring; a
// malformed vector should never outrank a real match.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
