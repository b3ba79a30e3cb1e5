package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config carries every externally configured value the process needs.
// Values are read once at startup; nothing re-reads the environment later.
type Config struct {
	Port int

	// Model backend
	ModelProvider   string // "anthropic" or "openai"
	ModelName       string
	AnthropicAPIKey string
	OpenAIAPIKey    string
	ModelBackendURL string // target of the raw proxy route

	// Document service
	DocsServiceURL   string
	DocsServiceToken string
	DocsLocalDir     string

	// Geocoding
	GeocoderURL string

	DatabasePath string
}

const (
	DefaultPort      = 8080
	DefaultModelName = "claude-sonnet-4-20250514"
)

// Load reads configuration from the environment. A .env file is honored
// when present so local runs do not need exported variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             DefaultPort,
		ModelProvider:    getenv("MODEL_PROVIDER", "anthropic"),
		ModelName:        getenv("MODEL_NAME", DefaultModelName),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		ModelBackendURL:  os.Getenv("MODEL_BACKEND_URL"),
		DocsServiceURL:   os.Getenv("DOCS_SERVICE_URL"),
		DocsServiceToken: os.Getenv("DOCS_SERVICE_TOKEN"),
		DocsLocalDir:     getenv("DOCS_LOCAL_DIR", "documents"),
		GeocoderURL:      getenv("GEOCODER_URL", "https://nominatim.openstreetmap.org/search"),
		DatabasePath:     getenv("DATABASE_PATH", "byggassist.db"),
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		cfg.Port = p
	}

	return cfg, nil
}

// ModelCredential returns the credential for the configured provider.
// An empty result means the mock responder should be used.
func (c *Config) ModelCredential() string {
	switch c.ModelProvider {
	case "openai":
		return c.OpenAIAPIKey
	default:
		return c.AnthropicAPIKey
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
