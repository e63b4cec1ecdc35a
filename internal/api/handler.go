package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gsarma/samplefeed/internal/sample"
)

// SampleFetcher is the read path the handlers serve. *sample.Fetcher
// implements it.
type SampleFetcher interface {
	ListCompleted(ctx context.Context) ([]sample.SampleFile, error)
	Get(ctx context.Context, jobID string) (sample.SampleFile, error)
	Result(ctx context.Context, jobID string) (json.RawMessage, error)
}

type Handler struct {
	samples SampleFetcher
}

// Health reports that the process is up. It does not reach the backend.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListSamples returns the most recent completed samples.
func (h *Handler) ListSamples(c *gin.Context) {
	samples, err := h.samples.ListCompleted(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, samples)
}

// GetSample returns the summary of one completed sample.
func (h *Handler) GetSample(c *gin.Context) {
	jobID, ok := jobIDParam(c)
	if !ok {
		return
	}
	s, err := h.samples.Get(c.Request.Context(), jobID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// GetSampleResult returns the raw result payload of one completed sample.
func (h *Handler) GetSampleResult(c *gin.Context) {
	jobID, ok := jobIDParam(c)
	if !ok {
		return
	}
	result, err := h.samples.Result(c.Request.Context(), jobID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", result)
}

// jobIDParam returns the :job_id path parameter, or writes 400 when it
// holds characters that are not safe in a backend query.
func jobIDParam(c *gin.Context) (string, bool) {
	jobID := c.Param("job_id")
	if !sample.ValidJobID(jobID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": sample.ErrInvalidJobID.Error()})
		return "", false
	}
	return jobID, true
}

func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	if errors.Is(err, sample.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "sample not found"})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": "backend request failed"})
}
