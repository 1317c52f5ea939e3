package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/nexuspro/nexus/internal/domain"
)

// FactoryConfig carries the provider endpoints and the environment-managed
// Gemini key.
type FactoryConfig struct {
	OpenAIBaseURL string
	GroqBaseURL   string
	GeminiAPIKey  string
	Timeout       time.Duration
}

// Factory routes each completion request to the provider that serves the
// requested model, building the provider client per call so that
// credential edits take effect immediately and no state survives between
// calls.
type Factory struct {
	cfg   FactoryConfig
	creds func() domain.Credentials
}

// NewFactory creates the routing streamer. creds is consulted on every
// call and must be safe for concurrent use.
func NewFactory(cfg FactoryConfig, creds func() domain.Credentials) *Factory {
	return &Factory{cfg: cfg, creds: creds}
}

// StreamCompletion implements domain.CompletionStreamer.
func (f *Factory) StreamCompletion(ctx context.Context, req domain.CompletionRequest) (<-chan domain.Fragment, error) {
	model, ok := domain.FindModel(req.ModelID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrModelNotFound, req.ModelID)
	}

	creds := f.creds()
	switch model.Provider {
	case domain.ProviderGemini:
		key := creds.Gemini
		if key == "" || key == domain.ManagedCredential {
			key = f.cfg.GeminiAPIKey
		}
		client, err := NewGeminiClient(ctx, key)
		if err != nil {
			return nil, err
		}
		return client.StreamCompletion(ctx, req)

	case domain.ProviderOpenAI:
		return NewOpenAICompatClient(f.cfg.OpenAIBaseURL, creds.OpenAI, f.cfg.Timeout).StreamCompletion(ctx, req)

	case domain.ProviderGroq:
		return NewOpenAICompatClient(f.cfg.GroqBaseURL, creds.Groq, f.cfg.Timeout).StreamCompletion(ctx, req)

	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, model.Provider)
	}
}
