// Package openai provides the scoring backend client for an
// OpenAI-compatible chat completions endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Strob0t/AdForge/internal/config"
	"github.com/Strob0t/AdForge/internal/domain"
	"github.com/Strob0t/AdForge/internal/port/scorer"
	"github.com/Strob0t/AdForge/internal/resilience"
)

// Client scores advertisements by prompting a chat model. It implements
// both the scorer port and the resilience refresher contract: on a
// credential-expired failure the API key is re-read from its source.
type Client struct {
	baseURL    string
	model      string
	keyFile    string
	httpClient *http.Client
	breaker    *resilience.Breaker

	keyMu  sync.RWMutex
	apiKey string
}

// NewClient creates a scoring client from config.
func NewClient(cfg config.Scorer) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		model:   cfg.Model,
		keyFile: cfg.APIKeyFile,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetBreaker attaches a circuit breaker to all outgoing calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// chatRequest is the OpenAI-compatible completion request body.
type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Score implements scorer.Scorer.
func (c *Client) Score(ctx context.Context, req scorer.Request) (*scorer.Result, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(req.Actor)},
			{Role: "user", Content: userPrompt(req)},
		},
		Temperature:    0.7,
		ResponseFormat: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	data, err := c.doRequest(ctx, body)
	if err != nil {
		return nil, err
	}

	var resp chatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode completion: %s", domain.ErrMalformedOutput, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: completion has no choices", domain.ErrMalformedOutput)
	}

	var result scorer.Result
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &result); err != nil {
		return nil, fmt.Errorf("%w: decode scores: %s", domain.ErrMalformedOutput, err)
	}
	return &result, nil
}

// RefreshCredentials implements resilience.Refresher by re-reading the API
// key from its file source. Without a file source there is nothing to
// refresh and the expiry is terminal.
func (c *Client) RefreshCredentials(_ context.Context) error {
	if c.keyFile == "" {
		return fmt.Errorf("no api key file configured: %w", domain.ErrCredentialExpired)
	}
	data, err := os.ReadFile(c.keyFile)
	if err != nil {
		return fmt.Errorf("read api key file: %w", err)
	}

	c.keyMu.Lock()
	c.apiKey = strings.TrimSpace(string(data))
	c.keyMu.Unlock()
	return nil
}

func (c *Client) doRequest(ctx context.Context, body []byte) ([]byte, error) {
	var result []byte
	call := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		c.keyMu.RLock()
		key := c.apiKey
		c.keyMu.RUnlock()
		if key != "" {
			req.Header.Set("Authorization", "Bearer "+key)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if err := classifyStatus(resp.StatusCode, data); err != nil {
			return err
		}

		result = data
		return nil
	}

	if c.breaker != nil {
		if err := c.breaker.Do(call); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := call(); err != nil {
		return nil, err
	}
	return result, nil
}

// classifyStatus maps backend HTTP failures onto the domain error taxonomy
// so the resilient invoker can choose its recovery path.
func classifyStatus(status int, body []byte) error {
	switch {
	case status < 400:
		return nil
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("backend status %d: %w", status, domain.ErrRateLimited)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("backend status %d: %w", status, domain.ErrCredentialExpired)
	default:
		return fmt.Errorf("backend status %d: %s", status, truncate(body, 256))
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
