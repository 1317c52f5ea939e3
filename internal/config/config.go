package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Server
	Port int `env:"NEXUS_PORT" envDefault:"8080"`

	// Credential blob on disk (localStorage analog)
	CredentialsFile string `env:"NEXUS_CREDENTIALS_FILE" envDefault:"nexus_keys.json"`

	// Gemini key supplied by the hosting environment; used whenever the
	// stored gemini credential is the managed sentinel.
	GeminiAPIKey string `env:"GEMINI_API_KEY"`

	// OpenAI-compatible endpoints
	OpenAIBaseURL string `env:"NEXUS_OPENAI_BASE_URL" envDefault:"https://api.openai.com"`
	GroqBaseURL   string `env:"NEXUS_GROQ_BASE_URL" envDefault:"https://api.groq.com/openai"`

	RequestTimeout time.Duration `env:"NEXUS_REQUEST_TIMEOUT" envDefault:"120s"`

	// true = scripted mock streamer instead of real providers (useful for dev)
	UseMockLLM bool `env:"NEXUS_USE_MOCK_LLM" envDefault:"false"`

	Debug bool `env:"NEXUS_DEBUG" envDefault:"false"`
}

// Load reads all env vars and builds the config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
