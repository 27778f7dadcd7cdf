// Package app provides application initialization and dependency
// wiring. Setup assembles the corpus, the vector index, the generation
// transport and the three pipeline stages into a ready Orchestrator;
// Close releases everything in reverse order.
package app

import (
	"context"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atenea-ai/atenea/internal/config"
	"github.com/atenea-ai/atenea/internal/content"
	"github.com/atenea-ai/atenea/internal/history"
	"github.com/atenea-ai/atenea/internal/index"
	"github.com/atenea-ai/atenea/internal/log"
	"github.com/atenea-ai/atenea/internal/tutor"
)

// App is the core application container.
type App struct {
	Config *config.Config
	Logger log.Logger

	// Core services
	Genkit   *genkit.Genkit
	Embedder ai.Embedder
	DBPool   *pgxpool.Pool // nil with the memory backend

	// Domain components
	Content      *content.Store
	Index        index.Index
	History      *history.Store // nil with the memory backend
	Orchestrator *tutor.Orchestrator

	cancel context.CancelFunc
}

// Close gracefully shuts down all resources.
func (a *App) Close() error {
	a.Logger.Info("shutting down application")

	if a.cancel != nil {
		a.cancel()
	}
	if a.DBPool != nil {
		a.DBPool.Close()
		a.Logger.Debug("database pool closed")
	}
	return nil
}
