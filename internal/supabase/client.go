// Package supabase is a minimal read-only client for the PostgREST interface
// a Supabase project exposes under /rest/v1.
//
// Usage:
//
//	client := supabase.New("https://project.supabase.co", "anon-key")
//
//	var rows []map[string]any
//	err := client.Select(ctx, "analysis_jobs", supabase.Query{
//	    supabase.Eq("status", "complete"),
//	    supabase.Limit(10),
//	}, &rows)
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const restPath = "/rest/v1/"

// Client issues PostgREST queries authenticated with a project API key.
// The key is sent both as the apikey header and as a Bearer token.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client whose transport and timeout are used.
// The client's transport is wrapped so the Bearer header is still attached.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every request. Zero keeps the HTTP client's own timeout.
// It never modifies a client passed to WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New creates a Client for the project at baseURL (e.g. "https://abc.supabase.co").
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}

	timeout := c.httpClient.Timeout
	if c.timeout > 0 {
		timeout = c.timeout
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: "Bearer"})
	c.httpClient = &http.Client{
		Transport: &oauth2.Transport{Source: src, Base: c.httpClient.Transport},
		Timeout:   timeout,
	}
	return c
}

// Select runs GET /rest/v1/{table}?{query} and decodes the JSON array
// response into out.
func (c *Client) Select(ctx context.Context, table string, query Query, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, table, query)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("supabase: decode response: %w", err)
	}
	return nil
}

// --- internal helpers ---

func (c *Client) newRequest(ctx context.Context, method, table string, query Query) (*http.Request, error) {
	target := c.baseURL + restPath + table
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("supabase: build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func parseError(resp *http.Response) *RequestError {
	e := &RequestError{StatusCode: resp.StatusCode}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
		e.Message = body.Message
	} else {
		e.Message = http.StatusText(resp.StatusCode)
	}
	return e
}
