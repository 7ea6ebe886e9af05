package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single evaluation call.
const DefaultTimeout = 5 * time.Second

// maxResponseBytes caps how much of an evaluator response is read.
const maxResponseBytes = 1 << 20

// Client calls the external evaluation service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client used for evaluation calls.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// NewClient creates an evaluation service client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("scorer base url is required")
	}

	client := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Evaluate submits a decision for scoring. Any transport failure, non-2xx
// status or undecodable response is returned as an error; the caller is
// expected to fall back locally rather than retry. A response that omits the
// explanation is accepted and given the summary band for its karma impact.
func (c *Client) Evaluate(ctx context.Context, req Request) (Evaluation, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return Evaluation{}, fmt.Errorf("marshal evaluation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/evaluate-decision", bytes.NewReader(body))
	if err != nil {
		return Evaluation{}, fmt.Errorf("build evaluation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Evaluation{}, fmt.Errorf("call evaluation service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Evaluation{}, fmt.Errorf("evaluation service returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Evaluation{}, fmt.Errorf("read evaluation response: %w", err)
	}

	var evaluation Evaluation
	if err := json.Unmarshal(raw, &evaluation); err != nil {
		return Evaluation{}, fmt.Errorf("decode evaluation response: %w", err)
	}

	evaluation.KarmaImpact = ClampKarma(evaluation.KarmaImpact)
	if strings.TrimSpace(evaluation.Explanation) == "" {
		evaluation.Explanation = Summarize(evaluation.KarmaImpact)
	}
	return evaluation, nil
}
