package samplefeed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// SamplesService reads completed samples.
type SamplesService struct {
	c *Client
}

// List returns the most recent completed samples, newest first.
func (s *SamplesService) List(ctx context.Context) ([]SampleFile, error) {
	out, err := doRequest[[]SampleFile](ctx, s.c, http.MethodGet, "/samples", http.StatusOK)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// Get returns the summary of one completed sample.
func (s *SamplesService) Get(ctx context.Context, jobID string) (*SampleFile, error) {
	return doRequest[SampleFile](ctx, s.c, http.MethodGet, "/samples/"+url.PathEscape(jobID), http.StatusOK)
}

// Result returns the raw analysis result of one completed sample.
func (s *SamplesService) Result(ctx context.Context, jobID string) (json.RawMessage, error) {
	out, err := doRequest[json.RawMessage](ctx, s.c, http.MethodGet, "/samples/"+url.PathEscape(jobID)+"/result", http.StatusOK)
	if err != nil {
		return nil, err
	}
	return *out, nil
}
