package testutil

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strings"
	"sync"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"
)

// MockEmbedder implements ai.Embedder with deterministic output.
//
// By default the vector is derived from the input text via SHA-256, so
// identical text always embeds identically. Explicit vectors can be
// registered against a substring key for precise similarity control in
// ranking tests. Thread-safe for concurrent use.
type MockEmbedder struct {
	mu      sync.Mutex
	keyed   []keyedVector
	dim     int
	failErr error
	calls   int
}

type keyedVector struct {
	key string
	vec []float32
}

// NewMockEmbedder creates a mock embedder producing vectors of the given
// dimension.
func NewMockEmbedder(dim int) *MockEmbedder {
	return &MockEmbedder{dim: dim}
}

// SetVector registers a vector returned for any text containing key.
// Keys are checked in registration order; first match wins.
func (e *MockEmbedder) SetVector(key string, vec []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keyed = append(e.keyed, keyedVector{key: key, vec: vec})
}

// SetError makes every subsequent Embed call fail with err. Pass nil to
// restore normal behavior.
func (e *MockEmbedder) SetError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failErr = err
}

// CallCount returns the number of Embed calls made.
func (e *MockEmbedder) CallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// Name implements ai.Embedder.
func (e *MockEmbedder) Name() string { return "mock-embedder" }

// Register implements ai.Embedder. No-op for tests.
func (e *MockEmbedder) Register(api.Registry) {}

// Embed implements ai.Embedder.
func (e *MockEmbedder) Embed(ctx context.Context, req *ai.EmbedRequest) (*ai.EmbedResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++

	if e.failErr != nil {
		return nil, e.failErr
	}

	embeddings := make([]*ai.Embedding, len(req.Input))
	for i, doc := range req.Input {
		embeddings[i] = &ai.Embedding{Embedding: e.vectorFor(documentText(doc))}
	}
	return &ai.EmbedResponse{Embeddings: embeddings}, nil
}

func (e *MockEmbedder) vectorFor(text string) []float32 {
	for _, kv := range e.keyed {
		if strings.Contains(text, kv.key) {
			return kv.vec
		}
	}
	return deterministicVector(text, e.dim)
}

// documentText concatenates the text parts of a Document.
func documentText(doc *ai.Document) string {
	var sb strings.Builder
	for _, p := range doc.Content {
		if p.Kind == ai.PartText {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// deterministicVector derives a unit vector from text via SHA-256.
func deterministicVector(text string, dim int) []float32 {
	hash := sha256.Sum256([]byte(text))
	vec := make([]float32, dim)

	for i := range vec {
		idx := (i * 4) % len(hash)
		bits := binary.LittleEndian.Uint32([]byte{
			hash[idx%32],
			hash[(idx+1)%32],
			hash[(idx+2)%32],
			hash[(idx+3)%32],
		})
		vec[i] = (float32(bits)/float32(math.MaxUint32))*2 - 1
	}

	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	norm = float32(math.Sqrt(float64(norm)))
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}
