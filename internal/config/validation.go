package config

import (
	"fmt"
	"os"
	"slices"
)

// Validate validates configuration values. Returns sentinel errors that
// can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	// Provider and API key. Keys are read by the Genkit plugins directly;
	// only their presence is checked here so failures happen at startup.
	switch c.Provider {
	case ProviderGemini, ProviderGoogleAI:
		if os.Getenv("GEMINI_API_KEY") == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY environment variable is required\n"+
				"Get your API key at: https://ai.google.dev/gemini-api/docs/api-key",
				ErrMissingAPIKey)
		}
	case ProviderOpenAI:
		if os.Getenv("OPENAI_API_KEY") == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY environment variable is required", ErrMissingAPIKey)
		}
	case ProviderOllama:
		// Local provider, no key needed.
	default:
		return fmt.Errorf("%w: %q, must be one of: gemini, ollama, openai",
			ErrInvalidProvider, c.Provider)
	}

	if c.ModelName == "" {
		return fmt.Errorf("%w: model_name cannot be empty", ErrInvalidModelName)
	}
	if c.EmbedderModel == "" {
		return fmt.Errorf("%w: embedder_model cannot be empty", ErrInvalidEmbedderModel)
	}

	// Temperature range per the Gemini API documentation.
	if c.Temperature < 0.0 || c.Temperature > 2.0 {
		return fmt.Errorf("%w: must be between 0.0 and 2.0, got %.2f", ErrInvalidTemperature, c.Temperature)
	}

	// Pipeline tuning.
	if c.TopK < 1 || c.TopK > 20 {
		return fmt.Errorf("%w: must be between 1 and 20, got %d", ErrInvalidTopK, c.TopK)
	}
	if c.MinResults < 1 || c.MinResults > c.TopK {
		return fmt.Errorf("%w: must be between 1 and top_k (%d), got %d",
			ErrInvalidMinResults, c.TopK, c.MinResults)
	}

	// Storage.
	if !slices.Contains([]string{"memory", "postgres"}, c.IndexBackend) {
		return fmt.Errorf("%w: %q, must be \"memory\" or \"postgres\"",
			ErrInvalidIndexBackend, c.IndexBackend)
	}

	// PostgreSQL settings only matter for the postgres backend.
	if c.IndexBackend == "postgres" {
		if c.PostgresHost == "" {
			return fmt.Errorf("%w: host cannot be empty", ErrInvalidPostgresHost)
		}
		if c.PostgresPort < 1 || c.PostgresPort > 65535 {
			return fmt.Errorf("%w: must be between 1 and 65535, got %d",
				ErrInvalidPostgresPort, c.PostgresPort)
		}
		if c.PostgresDBName == "" {
			return fmt.Errorf("%w: database name cannot be empty", ErrInvalidPostgresDBName)
		}
	}

	return nil
}
