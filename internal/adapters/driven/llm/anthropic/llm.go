// Package anthropic provides an LLM service adapter using the
// Anthropic Messages API.
package anthropic

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

	"github.com/custodia-labs/docsearch/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "https://api.anthropic.com/v1"
	DefaultModel     = "claude-3-5-haiku-latest"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 1024

	apiVersion = "2023-06-01"
)

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	// APIKey authenticates requests. Required.
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com/v1).
	BaseURL string

	// Model is the model to use (default: claude-3-5-haiku-latest).
	Model string

	// Timeout is the request timeout (default: 120s). Streaming
	// requests are not subject to it.
	Timeout time.Duration
}

// LLMService provides text generation using the Messages API.
type LLMService struct {
	client    *http.Client
	streaming *http.Client
	baseURL   string
	model     string
	apiKey    string
}

// message is the Messages API message format.
type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesRequest is the /messages request format.
type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

// messagesResponse is the non-streaming /messages response format.
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// streamEvent is one server-sent event payload from a streaming
// /messages request. Only content deltas and errors are interesting.
type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewLLMService creates a new Anthropic LLM service.
func NewLLMService(cfg Config) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &LLMService{
		client:    &http.Client{Timeout: cfg.Timeout},
		streaming: &http.Client{},
		baseURL:   cfg.BaseURL,
		model:     cfg.Model,
		apiKey:    cfg.APIKey,
	}
}

// Generate produces a completion for a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	resp, err := s.send(ctx, s.client, prompt, opts, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var msgResp messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	var b strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// GenerateStream produces a completion incrementally by reading the
// API's server-sent events.
func (s *LLMService) GenerateStream(ctx context.Context, prompt string, opts driven.GenerateOptions) (<-chan string, <-chan error) {
	tokens := make(chan string)
	errCh := make(chan error, 1)

	go func() {
		defer close(tokens)
		defer close(errCh)

		resp, err := s.send(ctx, s.streaming, prompt, opts, true)
		if err != nil {
			errCh <- err
			return
		}
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var event streamEvent
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
				// Keep-alive and unknown event payloads are skipped.
				continue
			}
			switch event.Type {
			case "content_block_delta":
				if event.Delta.Text == "" {
					continue
				}
				select {
				case tokens <- event.Delta.Text:
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				}
			case "error":
				errCh <- fmt.Errorf("anthropic: %s", event.Error.Message)
				return
			case "message_stop":
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errCh <- fmt.Errorf("read stream: %w", err)
		}
	}()

	return tokens, errCh
}

func (s *LLMService) send(ctx context.Context, client *http.Client, prompt string, opts driven.GenerateOptions, stream bool) (*http.Response, error) {
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}
	reqBody := messagesRequest{
		Model:       s.model,
		MaxTokens:   maxTokens,
		System:      opts.SystemPrompt,
		Messages:    []message{{Role: "user", Content: prompt}},
		Temperature: opts.Temperature,
		Stream:      stream,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/messages",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("anthropic error (status %d): %s", resp.StatusCode, string(body))
	}
	return resp, nil
}

// ModelName returns the name of the model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key with a minimal generation request.
func (s *LLMService) Ping(ctx context.Context) error {
	if s.apiKey == "" {
		return fmt.Errorf("anthropic: API key is not set")
	}
	_, err := s.Generate(ctx, "ping", driven.GenerateOptions{MaxTokens: 1})
	return err
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
