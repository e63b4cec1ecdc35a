// Package samplefeed provides a Go client for the samplefeed HTTP API.
//
// Usage:
//
//	client := samplefeed.New("http://localhost:8080", "api-token")
//
//	samples, err := client.Samples.List(ctx)
//
//	result, err := client.Samples.Result(ctx, samples[0].JobID)
package samplefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Client is the samplefeed API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	Samples *SamplesService
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a samplefeed client.
// baseURL should be the root URL (e.g. "http://localhost:8080").
// token is the server's API token; leave it empty when the API is open.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	c.Samples = &SamplesService{c: c}
	return c
}

// Health checks that the samplefeed server is reachable.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	return doRequest[HealthResponse](ctx, c, http.MethodGet, "/health", http.StatusOK)
}

// --- internal helpers ---

func (c *Client) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func doRequest[T any](ctx context.Context, c *Client, method, path string, expectedStatus int) (*T, error) {
	req, err := c.newRequest(ctx, method, path)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != expectedStatus {
		return nil, parseError(resp)
	}

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("samplefeed: decode response: %w", err)
	}
	return &out, nil
}

func parseError(resp *http.Response) *APIError {
	e := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		e.Message = body.Error
	} else {
		e.Message = http.StatusText(resp.StatusCode)
	}
	return e
}
