// Package translate sends Japanese source comments to an OpenAI-compatible
// chat-completions API and returns their English renderings.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Defaults
// ---------------------------------------------------------------------------

const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultModel      = "text-translation-3"
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
	DefaultTimeout    = 60 * time.Second

	translationTemperature = 0.3
)

// systemPrompt steers the model toward literal, technical translations.
const systemPrompt = "You are a professional translator specializing in translating programming comments and documentation from Japanese to English. Maintain the technical meaning and nuance. Provide only the translated text without explanations."

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

// Config carries the connection and retry parameters for a Client.
// Zero values fall back to the package defaults.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Proxy      string
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
}

// Client talks to a single chat-completions endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Request is one piece of Japanese text to translate, with optional
// surrounding source context to disambiguate short fragments.
type Request struct {
	Text   string
	Before string
	After  string
}

// New returns a Client for cfg, applying defaults for unset fields.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	httpClient, err := makeHTTPClient(cfg.Proxy, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &Client{cfg: cfg, httpClient: httpClient}, nil
}

// Translate returns the English rendering of req.Text. Whitespace-only input
// comes back unchanged without touching the network. Rate limits and server
// errors are retried with exponential backoff until MaxRetries is exhausted.
func (c *Client) Translate(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return req.Text, nil
	}

	payload, err := buildChatRequest(c.cfg.Model, systemPrompt, buildUserPrompt(req), translationTemperature)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return "", err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if attempt >= c.cfg.MaxRetries {
				return "", fmt.Errorf("request failed: %w", err)
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.backoff(attempt)):
			}
			continue
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			text, err := extractResponseText(respBody)
			if err != nil {
				return "", err
			}
			return strings.TrimSpace(unwrapFence(text)), nil
		}

		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		if !retryable || attempt >= c.cfg.MaxRetries {
			return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 500))
		}

		wait := c.backoff(attempt)
		if resp.StatusCode == http.StatusTooManyRequests {
			if hinted := parseRetryDelay(resp, respBody); hinted > 0 {
				wait = hinted
			}
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
	}

	return "", fmt.Errorf("exhausted all %d retries", c.cfg.MaxRetries)
}

func (c *Client) backoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * c.cfg.RetryDelay
}

// ---------------------------------------------------------------------------
// Prompt and wire format
// ---------------------------------------------------------------------------

func buildUserPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Translate the following Japanese text to English:\n\n")
	if req.Before != "" {
		fmt.Fprintf(&b, "Context before: %s\n\n", req.Before)
	}
	fmt.Fprintf(&b, "Text to translate: %s\n\n", req.Text)
	if req.After != "" {
		fmt.Fprintf(&b, "Context after: %s\n\n", req.After)
	}
	b.WriteString("Translation:")
	return b.String()
}

func buildChatRequest(model, system, user string, temperature float64) ([]byte, error) {
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	req := struct {
		Model       string  `json:"model"`
		Messages    []msg   `json:"messages"`
		Temperature float64 `json:"temperature"`
		Stream      bool    `json:"stream"`
	}{
		Model: model,
		Messages: []msg{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		Stream:      false,
	}
	return json.Marshal(req)
}

func extractResponseText(body []byte) (string, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("parsing API response: %w", err)
	}

	if errVal, ok := raw["error"]; ok && errVal != nil {
		if errMap, ok := errVal.(map[string]any); ok {
			if msg, ok := errMap["message"].(string); ok && msg != "" {
				return "", fmt.Errorf("API error: %s", msg)
			}
		}
		return "", fmt.Errorf("API error: %s", truncate(string(body), 500))
	}

	choices, ok := raw["choices"].([]any)
	if !ok || len(choices) == 0 {
		return "", fmt.Errorf("API response has no choices: %s", truncate(string(body), 500))
	}
	choice, ok := choices[0].(map[string]any)
	if !ok {
		return "", fmt.Errorf("API response has an unexpected choice shape: %s", truncate(string(body), 500))
	}
	message, ok := choice["message"].(map[string]any)
	if !ok {
		return "", fmt.Errorf("API response has an unexpected message shape: %s", truncate(string(body), 500))
	}
	content, ok := message["content"].(string)
	if !ok {
		return "", fmt.Errorf("API response has no content: %s", truncate(string(body), 500))
	}
	return content, nil
}

// markdownFence matches a response that is entirely wrapped in a Markdown
// code fence, as some models do despite the prompt.
var markdownFence = regexp.MustCompile("(?s)\\A```[a-zA-Z]*\\s*(.*?)\\s*```\\s*\\z")

func unwrapFence(s string) string {
	if m := markdownFence.FindStringSubmatch(strings.TrimSpace(s)); m != nil {
		return m[1]
	}
	return s
}

// ---------------------------------------------------------------------------
// HTTP plumbing
// ---------------------------------------------------------------------------

var retryAfterHint = regexp.MustCompile(`try again in ([0-9.]+)s`)

// parseRetryDelay extracts a server-suggested wait from a 429 response,
// checking the Retry-After header first and the error message second.
func parseRetryDelay(resp *http.Response, body []byte) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if m := retryAfterHint.FindSubmatch(body); m != nil {
		if secs, err := strconv.ParseFloat(string(m[1]), 64); err == nil && secs > 0 {
			return time.Duration((secs + 0.5) * float64(time.Second))
		}
	}
	return 0
}

func makeHTTPClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", proxyURL, err)
		}
		transport.Proxy = http.ProxyURL(parsed)
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}
	return &http.Client{Transport: transport, Timeout: timeout}, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
