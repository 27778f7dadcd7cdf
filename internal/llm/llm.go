// Package llm wraps the external generation and embedding capabilities.
//
// The pipeline core never talks to a model SDK directly: stages consume
// the Generator interface defined here, and embedding goes through
// Genkit's ai.Embedder. Both calls are blocking, potentially slow and
// potentially failing, so every call site carries an explicit timeout
// and the bounded-retry policy lives in the stage that owns the call.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/firebase/genkit/go/ai"
)

// Sentinel errors for external capability failures.
var (
	// ErrGenerationTimeout indicates the generation call exceeded its deadline.
	ErrGenerationTimeout = errors.New("generation timeout")

	// ErrGenerationUnavailable indicates the generation backend failed or
	// returned an unusable response.
	ErrGenerationUnavailable = errors.New("generation unavailable")

	// ErrEmbeddingUnavailable indicates the embedding backend failed or
	// returned an empty vector.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
)

// Generator produces text from a prompt. Implementations must honor
// context cancellation and classify failures as ErrGenerationTimeout or
// ErrGenerationUnavailable so callers can apply their retry policy with
// errors.Is.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EmbedText computes the embedding vector for a single text through the
// given embedder. Returns ErrEmbeddingUnavailable when the backend fails
// or produces an empty vector.
func EmbedText(ctx context.Context, embedder ai.Embedder, text string) ([]float32, error) {
	resp, err := embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{
			{Content: []*ai.Part{ai.NewTextPart(text)}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingUnavailable, err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding returned", ErrEmbeddingUnavailable)
	}
	return resp.Embeddings[0].Embedding, nil
}
