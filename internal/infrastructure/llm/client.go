package llm

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/colmeia/hive/internal/domain/service"
	"github.com/colmeia/hive/internal/infrastructure/config"
	"github.com/colmeia/hive/pkg/errors"
)

// Fixed request policy for the console's completion calls.
const (
	temperature    = 0.7
	maxTokens      = 2048
	requestTimeout = 30 * time.Second
)

// Client is an OpenAI-compatible HTTP chat-completion client.
// Compatible with DeepSeek, OpenAI, Ollama, vLLM and other
// /chat/completions endpoints.
type Client struct {
	cfg    func() config.ModelConfig
	client *http.Client
	logger *zap.Logger
}

// New creates a model client. cfg is read on every call so settings
// updated at runtime take effect without rebuilding the client.
func New(cfg func() config.ModelConfig, logger *zap.Logger) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
	}

	return &Client{
		cfg: cfg,
		client: &http.Client{
			Transport: transport,
			Timeout:   requestTimeout,
		},
		logger: logger.With(zap.String("component", "model-client")),
	}
}

// Compile-time interface check
var _ service.ModelClient = (*Client)(nil)

// Complete issues one non-streaming chat completion and returns the
// first choice's text. Message order: agent instruction (system) before
// conversational memory (system) before the user prompt. The agent-role
// framing must precede the memory framing.
func (c *Client) Complete(ctx context.Context, prompt, contextText, instruction string) (string, error) {
	cfg := c.cfg()
	if cfg.APIKey == "" {
		return "", errors.NewConfigError("model API key not configured")
	}

	var messages []Message
	if instruction != "" {
		messages = append(messages, Message{Role: "system", Content: instruction})
	}
	if contextText != "" {
		messages = append(messages, Message{
			Role:    "system",
			Content: "Contexto da conversa:\n" + contextText,
		})
	}
	messages = append(messages, Message{Role: "user", Content: prompt})

	apiReq := &Request{
		Model:       cfg.Model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Stream:      false,
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", errors.NewTransportError("model API request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewTransportError("read model API response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.NewTransportError(
			fmt.Sprintf("model API error %d: %s", resp.StatusCode, extractAPIError(respBody, resp.Status)),
			nil,
		)
	}

	var apiResp Response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", errors.NewResponseFormatError("parse model API response", err)
	}
	if len(apiResp.Choices) == 0 {
		return "", errors.NewResponseFormatError("model API response has no choices", nil)
	}

	return apiResp.Choices[0].Message.Content, nil
}

// extractAPIError pulls error.message out of a non-2xx body,
// falling back to the HTTP status text.
func extractAPIError(body []byte, status string) string {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	return status
}
