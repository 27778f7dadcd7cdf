package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai/openai"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/firebase/genkit/go/plugins/ollama"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	"github.com/atenea-ai/atenea/db"
	"github.com/atenea-ai/atenea/internal/config"
	"github.com/atenea-ai/atenea/internal/content"
	"github.com/atenea-ai/atenea/internal/history"
	"github.com/atenea-ai/atenea/internal/index"
	"github.com/atenea-ai/atenea/internal/llm"
	"github.com/atenea-ai/atenea/internal/log"
	"github.com/atenea-ai/atenea/internal/tutor"
)

// Setup creates and initializes the application.
// Returns an App with embedded cleanup — call Close() to release.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	if cfg == nil {
		return nil, config.ErrConfigNil
	}
	if logger == nil {
		logger = log.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}

	// On error, release everything already initialized.
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	g, err := provideGenkit(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	embedder := provideEmbedder(g, cfg)
	if embedder == nil {
		return nil, fmt.Errorf("embedder %q not found for provider %q", cfg.EmbedderModel, cfg.Provider)
	}
	a.Embedder = embedder

	a.Content = content.NewSeeded(logger)

	// The postgres backend carries both the index and the student
	// history; the memory backend runs without a database.
	if cfg.IndexBackend == index.BackendPostgres {
		pool, err := provideDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.DBPool = pool
		a.History = history.NewStore(pool, logger)
	}

	idx, err := index.New(cfg.IndexBackend, index.Config{
		Embedder: embedder,
		Logger:   logger,
		Pool:     a.DBPool,
	})
	if err != nil {
		return nil, err
	}
	a.Index = idx

	n, err := index.IngestAll(ctx, idx, a.Content)
	if err != nil {
		return nil, fmt.Errorf("warming index from seed corpus: %w", err)
	}
	logger.Info("index warmed", "backend", cfg.IndexBackend, "items", n)

	gen, err := llm.NewGenkit(llm.GenkitConfig{
		Genkit:      g,
		ModelName:   cfg.FullModelName(),
		Timeout:     time.Duration(cfg.CallTimeoutSecs) * time.Second,
		Temperature: float64(cfg.Temperature),
		RateLimiter: rate.NewLimiter(rate.Limit(cfg.GenerateRPS), cfg.GenerateRPS*2),
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	orch, err := provideOrchestrator(cfg, gen, embedder, idx, a.History, logger)
	if err != nil {
		return nil, err
	}
	a.Orchestrator = orch

	_, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	return a, nil
}

// provideGenkit initializes Genkit with the configured AI provider.
// Supports gemini (default), ollama, and openai.
func provideGenkit(ctx context.Context, cfg *config.Config, logger log.Logger) (*genkit.Genkit, error) {
	switch cfg.Provider {
	case config.ProviderOllama:
		ollamaPlugin := &ollama.Ollama{ServerAddress: cfg.OllamaHost}
		g := genkit.Init(ctx, genkit.WithPlugins(ollamaPlugin))
		if g == nil {
			return nil, errors.New("initializing genkit with ollama provider")
		}
		// Ollama requires explicit model registration.
		ollamaPlugin.DefineModel(g, ollama.ModelDefinition{
			Name: cfg.ModelName,
			Type: "chat",
		}, nil)
		ollamaPlugin.DefineEmbedder(g, cfg.OllamaHost, cfg.EmbedderModel, nil)
		logger.Info("initialized genkit with ollama provider",
			"model", cfg.ModelName, "host", cfg.OllamaHost)
		return g, nil

	case config.ProviderOpenAI:
		g := genkit.Init(ctx, genkit.WithPlugins(&openai.OpenAI{}))
		if g == nil {
			return nil, errors.New("initializing genkit with openai provider")
		}
		logger.Info("initialized genkit with openai provider", "model", cfg.ModelName)
		return g, nil

	default: // gemini
		g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
		if g == nil {
			return nil, errors.New("initializing genkit with gemini provider")
		}
		logger.Info("initialized genkit with gemini provider", "model", cfg.ModelName)
		return g, nil
	}
}

// provideEmbedder looks up the embedder registered by the provider
// plugin. Each provider registers embedders differently.
func provideEmbedder(g *genkit.Genkit, cfg *config.Config) ai.Embedder {
	switch cfg.Provider {
	case config.ProviderOllama:
		// Keyed by server address, registered in provideGenkit.
		return ollama.Embedder(g, cfg.OllamaHost)
	case config.ProviderOpenAI:
		return genkit.LookupEmbedder(g, api.NewName("openai", cfg.EmbedderModel))
	default:
		return googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	}
}

// provideDBPool runs migrations and creates a PostgreSQL pool.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// provideOrchestrator assembles the three pipeline stages. hist may be
// nil, which disables history biasing and archiving.
func provideOrchestrator(cfg *config.Config, gen llm.Generator, embedder ai.Embedder, idx index.Index, hist *history.Store, logger log.Logger) (*tutor.Orchestrator, error) {
	// Typed nil inside a non-nil interface would defeat the orchestrator's
	// nil checks, so only assign the optional pieces when hist exists.
	var profiles tutor.ProfileSource
	var recorder tutor.ProfileRecorder
	if hist != nil {
		profiles = hist
		recorder = hist
	}

	retriever, err := tutor.NewIndexRetriever(tutor.RetrieverConfig{
		Embedder:   embedder,
		Index:      idx,
		TopK:       cfg.TopK,
		MinResults: cfg.MinResults,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	return tutor.NewOrchestrator(tutor.OrchestratorConfig{
		Evaluator:   tutor.NewLLMEvaluator(gen, profiles, logger),
		Retriever:   retriever,
		Coordinator: tutor.NewLLMCoordinator(gen, cfg.MaxSourceChars, logger),
		Recorder:    recorder,
		Logger:      logger,
	})
}
