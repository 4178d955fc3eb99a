package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultBaseURL is the OpenRouter chat-completions endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"

// OpenRouter is the production Gateway: an OpenAI-compatible chat
// completions client with optional structured output.
type OpenRouter struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *log.Logger
}

// NewOpenRouter builds the gateway. timeout bounds each completion
// request on top of any caller context deadline.
func NewOpenRouter(baseURL, apiKey string, timeout time.Duration, logger *log.Logger) *OpenRouter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &OpenRouter{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.WithPrefix("openrouter"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type       string          `json:"type"`
	JSONSchema json.RawMessage `json:"json_schema"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	MaxTokens      int             `json:"max_tokens"`
	Temperature    float64         `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (o *OpenRouter) CompleteStructured(ctx context.Context, model, system, prompt string, schema json.RawMessage) (json.RawMessage, error) {
	req := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &responseFormat{Type: "json_schema", JSONSchema: schema},
		MaxTokens:      200,
		Temperature:    0.1,
	}
	content, err := o.complete(ctx, req, true)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(content), nil
}

func (o *OpenRouter) CompleteText(ctx context.Context, model, system, prompt string) (string, error) {
	req := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   200,
		Temperature: 0.7,
	}
	return o.complete(ctx, req, false)
}

func (o *OpenRouter) complete(ctx context.Context, req chatRequest, structured bool) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// Providers reject the response_format block with a client error
		// when the model cannot do schema-constrained output.
		if structured && resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusUnauthorized {
			return "", fmt.Errorf("%w: %s", ErrStructuredUnsupported, string(raw))
		}
		return "", fmt.Errorf("completion failed: status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}

	o.logger.Debug("completion",
		"model", req.Model,
		"structured", structured,
		"duration", time.Since(start))
	return parsed.Choices[0].Message.Content, nil
}
