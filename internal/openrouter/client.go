// ABOUTME: HTTP client for the OpenRouter chat-completion endpoint
// ABOUTME: One blocking POST per question; translates upstream status codes to friendly text

package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// DefaultBaseURL is the OpenRouter API root.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// Message is one entry of the conversation sent upstream. The client is
// payload-agnostic and forwards whatever sequence it receives.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Roles used by the bot: one system message (persona and formatting rules)
// followed by one user message (the question).
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// UpstreamError reports a completion-endpoint failure with a status code and
// a message safe to show to the user.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Status, e.Message)
}

// friendlyMessage translates an upstream status code into a human-readable
// explanation. Unmapped codes get a generic message.
func friendlyMessage(status int) string {
	messages := map[int]string{
		http.StatusBadRequest:          "Malformed request to the completion service.",
		http.StatusUnauthorized:        "The OpenRouter key was rejected.",
		http.StatusForbidden:           "No access to the requested model.",
		http.StatusNotFound:            "Completion endpoint not found. Check the api/v1/chat/completions URL.",
		http.StatusTooManyRequests:     "Free-tier limits exceeded. Try again later.",
		http.StatusInternalServerError: "Unexpected error on the OpenRouter side. Try again later.",
		http.StatusBadGateway:          "Error relaying the request upstream. Try again later.",
		http.StatusServiceUnavailable:  "OpenRouter is unavailable. Try again later.",
		http.StatusGatewayTimeout:      "Timed out waiting for the upstream response. Try again later.",
	}

	if msg, ok := messages[status]; ok {
		return msg
	}
	return "Service unavailable. Please try again later."
}

// Client issues chat-completion requests. No retries, no streaming.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a Client. An empty baseURL selects DefaultBaseURL.
func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{},
		logger:  slog.Default().With("component", "openrouter"),
	}
}

// ChatOptions are the per-request completion parameters.
type ChatOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatOnce sends one synchronous completion request and returns the answer
// text together with the measured round-trip latency.
//
// A missing API key fails fast with an UpstreamError before any network
// call. Non-2xx responses and unparseable bodies come back as UpstreamError;
// transport failures (including a hit timeout) are returned as-is.
func (c *Client) ChatOnce(ctx context.Context, messages []Message, opts ChatOptions) (string, time.Duration, error) {
	if c.apiKey == "" {
		return "", 0, &UpstreamError{Status: http.StatusUnauthorized, Message: "Missing OpenRouter API key."}
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(chatRequest{
		Model:       opts.Model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", 0, fmt.Errorf("encoding completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", 0, fmt.Errorf("building completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return "", elapsed, fmt.Errorf("sending completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		c.logger.Warn("completion request failed", "status", resp.StatusCode, "elapsed_ms", elapsed.Milliseconds())
		return "", elapsed, &UpstreamError{Status: resp.StatusCode, Message: friendlyMessage(resp.StatusCode)}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil || len(parsed.Choices) == 0 {
		return "", elapsed, &UpstreamError{Status: http.StatusInternalServerError, Message: "Unexpected response shape from OpenRouter."}
	}

	c.logger.Debug("completion request succeeded", "model", opts.Model, "elapsed_ms", elapsed.Milliseconds())
	return parsed.Choices[0].Message.Content, elapsed, nil
}
