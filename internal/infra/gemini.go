package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// placeholderAPIKey is the value shipped in sample configuration files.
const placeholderAPIKey = "YOUR_API_KEY_HERE"

// ErrGeminiDisabled is returned when no usable API key is configured.
var ErrGeminiDisabled = errors.New("gemini: api key not configured")

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

// geminiRequest is the generateContent body: {contents:[{parts:[{text}]}]}.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// GeminiClient calls the Gemini generateContent endpoint. All calls go through
// a circuit breaker.
type GeminiClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	cb         *CircuitBreaker
}

// NewGeminiClient builds a client for baseURL/model:generateContent.
func NewGeminiClient(baseURL, model, apiKey string, cb *CircuitBreaker) *GeminiClient {
	if cb == nil {
		cb = NewCircuitBreaker(DefaultCBConfig())
	}
	return &GeminiClient{
		apiKey:     strings.TrimSpace(apiKey),
		endpoint:   strings.TrimRight(baseURL, "/") + "/" + model + ":generateContent",
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cb:         cb,
	}
}

// Enabled reports whether a real API key is configured.
func (c *GeminiClient) Enabled() bool {
	return c.apiKey != "" && c.apiKey != placeholderAPIKey
}

// Breaker exposes the circuit breaker state for /health.
func (c *GeminiClient) Breaker() *CircuitBreaker { return c.cb }

// Generate sends prompt and returns the text of the first candidate.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Enabled() {
		return "", ErrGeminiDisabled
	}
	var text string
	err := c.cb.Execute(func() error {
		var err error
		text, err = c.generate(ctx, prompt)
		return err
	})
	return text, err
}

func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}}})
	if err != nil {
		return "", fmt.Errorf("gemini: marshal request: %w", err)
	}

	// Key goes in a header: transport errors quote the request URL.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gemini: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gemini: returned %d", resp.StatusCode)
	}

	var result geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini: empty response")
	}
	text := strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}
