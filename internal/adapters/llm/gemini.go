package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/nexuspro/nexus/internal/domain"
)

// GeminiClient streams completions from the Gemini API.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a streamer backed by the Gemini Developer API.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiClient{client: client}, nil
}

// StreamCompletion implements domain.CompletionStreamer.
func (g *GeminiClient) StreamCompletion(ctx context.Context, req domain.CompletionRequest) (<-chan domain.Fragment, error) {
	// History as alternating user/model turns; system-role entries travel
	// only through the dedicated SystemInstruction field.
	var contents []*genai.Content
	for _, m := range req.History {
		switch m.Role {
		case domain.RoleUser:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		case domain.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		}
	}
	contents = append(contents, genai.NewContentFromText(req.UserText, genai.RoleUser))

	temp := float32(req.Config.Temperature)
	topP := float32(req.Config.TopP)
	topK := float32(req.Config.TopK)

	cfg := &genai.GenerateContentConfig{
		Temperature: &temp,
		TopP:        &topP,
		TopK:        &topK,
	}
	if req.Config.MaxOutputTokens != nil {
		cfg.MaxOutputTokens = int32(*req.Config.MaxOutputTokens)
	}
	if req.Config.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.Config.SystemInstruction, genai.RoleUser)
	}

	out := make(chan domain.Fragment)
	go func() {
		defer close(out)

		for resp, err := range g.client.Models.GenerateContentStream(ctx, req.ModelID, contents, cfg) {
			if err != nil {
				emit(ctx, out, domain.Fragment{Err: fmt.Errorf("gemini stream: %w", err)})
				return
			}
			text := resp.Text()
			if text == "" {
				continue
			}
			if !emit(ctx, out, domain.Fragment{Text: text}) {
				return
			}
		}
	}()

	return out, nil
}

// emit sends a fragment unless the context is gone first.
func emit(ctx context.Context, out chan<- domain.Fragment, f domain.Fragment) bool {
	select {
	case out <- f:
		return true
	case <-ctx.Done():
		return false
	}
}
