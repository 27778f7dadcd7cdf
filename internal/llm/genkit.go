package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"
)

// DefaultCallTimeout bounds a single generation call. Model calls take
// seconds; anything past this is treated as a timeout failure.
const DefaultCallTimeout = 60 * time.Second

// GenkitGenerator implements Generator on top of a Genkit instance.
// It performs exactly one model call per Generate invocation; retry
// policy belongs to the calling stage, not to the transport.
type GenkitGenerator struct {
	g           *genkit.Genkit
	model       ai.ModelRef
	timeout     time.Duration
	limiter     *rate.Limiter
	temperature float64
	logger      *slog.Logger
}

// GenkitConfig configures a GenkitGenerator.
type GenkitConfig struct {
	Genkit      *genkit.Genkit
	ModelName   string        // provider-qualified, e.g. "googleai/gemini-2.5-flash"
	Timeout     time.Duration // per-call deadline; DefaultCallTimeout if zero
	Temperature float64
	RateLimiter *rate.Limiter // nil = default 5 req/s, burst 10
	Logger      *slog.Logger
}

// NewGenkit creates a GenkitGenerator.
func NewGenkit(cfg GenkitConfig) (*GenkitGenerator, error) {
	if cfg.Genkit == nil {
		return nil, errors.New("llm: genkit instance is required")
	}
	if cfg.ModelName == "" {
		return nil, errors.New("llm: model name is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	limiter := cfg.RateLimiter
	if limiter == nil {
		limiter = rate.NewLimiter(5, 10)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &GenkitGenerator{
		g:           cfg.Genkit,
		model:       ai.NewModelRef(cfg.ModelName, nil),
		timeout:     timeout,
		limiter:     limiter,
		temperature: cfg.Temperature,
		logger:      logger,
	}, nil
}

// Generate issues a single generation call with the configured timeout.
// Failures are classified as ErrGenerationTimeout or
// ErrGenerationUnavailable for the caller's errors.Is checks.
func (gg *GenkitGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := gg.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limit wait: %w", ErrGenerationUnavailable, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, gg.timeout)
	defer cancel()

	start := time.Now()
	resp, err := genkit.Generate(callCtx, gg.g,
		ai.WithModel(gg.model),
		ai.WithPrompt(prompt),
		ai.WithConfig(map[string]any{"temperature": gg.temperature}),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeoutMessage(err) {
			return "", fmt.Errorf("%w: %w", ErrGenerationTimeout, err)
		}
		return "", fmt.Errorf("%w: %w", ErrGenerationUnavailable, err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: model returned empty text", ErrGenerationUnavailable)
	}

	gg.logger.Debug("generation call completed",
		"elapsed", time.Since(start), "prompt_chars", len(prompt))
	return text, nil
}

// isTimeoutMessage matches provider timeout errors that surface as plain
// strings. Genkit and provider SDKs do not expose typed errors for these,
// so substring matching is the documented exception here.
func isTimeoutMessage(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded")
}
