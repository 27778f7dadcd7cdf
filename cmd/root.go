// Package cmd implements the atenea command line interface.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/atenea-ai/atenea/internal/app"
	"github.com/atenea-ai/atenea/internal/config"
	"github.com/atenea-ai/atenea/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "atenea",
	Short: "Atenea - tutor académico personalizado en tu terminal",
	Long: `Atenea es un tutor académico personalizado para materias STEM.

Evalúa el nivel de cada consulta, recupera material de estudio relevante
del corpus y genera una explicación adaptada al estudiante.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setupApp loads configuration, builds the logger and assembles the
// application container. Callers own the returned App and must Close it.
func setupApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger := log.New(log.Config{
		Level: parseLogLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
	})
	slog.SetDefault(logger)

	a, err := app.Setup(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing application: %w", err)
	}
	return a, nil
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// fail prints an error to stderr in the CLI's uniform format.
func fail(err error) error {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return err
}
