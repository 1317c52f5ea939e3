package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nexuspro/nexus/internal/domain"
)

// OpenAICompatClient streams completions from any OpenAI-compatible
// chat-completions endpoint (OpenAI itself, Groq).
type OpenAICompatClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewOpenAICompatClient(baseURL, apiKey string, timeout time.Duration) *OpenAICompatClient {
	return &OpenAICompatClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature *float64      `json:"temperature,omitempty"`
	TopP        *float64      `json:"top_p,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason,omitempty"`
	} `json:"choices"`
}

type errorResponse struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// StreamCompletion implements domain.CompletionStreamer. Transport and
// auth failures surface before any fragment is produced; failures
// mid-stream terminate the channel with an error fragment.
func (c *OpenAICompatClient) StreamCompletion(ctx context.Context, req domain.CompletionRequest) (<-chan domain.Fragment, error) {
	messages := make([]chatMessage, 0, len(req.History)+2)
	if req.Config.SystemInstruction != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.Config.SystemInstruction})
	}
	for _, m := range req.History {
		switch m.Role {
		case domain.RoleUser:
			messages = append(messages, chatMessage{Role: "user", Content: m.Content})
		case domain.RoleAssistant:
			messages = append(messages, chatMessage{Role: "assistant", Content: m.Content})
		}
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.UserText})

	// top_k is not part of the chat-completions surface; it only reaches
	// providers that accept it.
	temp := req.Config.Temperature
	topP := req.Config.TopP
	body, err := json.Marshal(&chatCompletionRequest{
		Model:       req.ModelID,
		Messages:    messages,
		Stream:      true,
		Temperature: &temp,
		TopP:        &topP,
		MaxTokens:   req.Config.MaxOutputTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != nil {
			return nil, fmt.Errorf("LLM API error [%d]: %s (type: %s)", resp.StatusCode, errResp.Error.Message, errResp.Error.Type)
		}
		return nil, fmt.Errorf("LLM API error [%d]: %s", resp.StatusCode, string(respBody))
	}

	out := make(chan domain.Fragment)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		reader := bufio.NewReader(resp.Body)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			line, err := reader.ReadString('\n')
			if err != nil {
				if err != io.EOF {
					emit(ctx, out, domain.Fragment{Err: fmt.Errorf("failed to read stream: %w", err)})
				}
				return
			}

			line = strings.TrimSpace(line)
			if !strings.HasPrefix(line, "data: ") {
				continue
			}

			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				return
			}

			var chunk streamChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				// Skip malformed chunks
				continue
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			if text := chunk.Choices[0].Delta.Content; text != "" {
				if !emit(ctx, out, domain.Fragment{Text: text}) {
					return
				}
			}
		}
	}()

	return out, nil
}
