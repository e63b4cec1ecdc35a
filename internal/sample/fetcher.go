// Package sample fetches completed analysis jobs and flattens them into
// SampleFile summaries.
package sample

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gsarma/samplefeed/internal/metrics"
)

// ListLimit is the number of most recent completed jobs ListCompleted returns.
const ListLimit = 10

// ErrNotFound is returned when no completed job matches an identifier.
var ErrNotFound = errors.New("sample not found")

// ErrInvalidJobID is returned by callers that reject an identifier with
// ValidJobID.
var ErrInvalidJobID = errors.New("invalid job id")

// ValidJobID reports whether id is non-empty and made only of URL unreserved
// characters (A-Z a-z 0-9 . _ ~ -). Only such ids may be passed to Get and
// Result, which place them in backend queries verbatim.
func ValidJobID(id string) bool {
	if id == "" {
		return false
	}
	for i := 0; i < len(id); i++ {
		switch b := id[i]; {
		case 'a' <= b && b <= 'z', 'A' <= b && b <= 'Z', '0' <= b && b <= '9':
		case b == '-', b == '.', b == '_', b == '~':
		default:
			return false
		}
	}
	return true
}

// JobSource reads completed jobs from the analysis backend.
type JobSource interface {
	// ListCompletedJobs returns up to limit completed jobs, newest first.
	ListCompletedJobs(ctx context.Context, limit int) ([]Job, error)
	// FindCompletedJobs returns the completed jobs with the given identifier.
	FindCompletedJobs(ctx context.Context, jobID string) ([]Job, error)
}

// Fetcher is the read path over a JobSource. It holds no state between calls.
type Fetcher struct {
	source JobSource
	log    zerolog.Logger
}

func NewFetcher(source JobSource, logger zerolog.Logger) *Fetcher {
	return &Fetcher{source: source, log: logger}
}

// ListCompleted returns the most recent completed jobs as SampleFiles, in
// the order the source returned them.
func (f *Fetcher) ListCompleted(ctx context.Context) ([]SampleFile, error) {
	f.log.Debug().Msg("Fetching completed sample files")

	start := time.Now()
	jobs, err := f.source.ListCompletedJobs(ctx, ListLimit)
	metrics.ObserveBackend("list", outcome(err), start)
	if err != nil {
		f.log.Error().Err(err).Msg("Failed to fetch completed sample files")
		return nil, fmt.Errorf("list completed samples: %w", err)
	}
	f.log.Info().Int("jobs", len(jobs)).Msg("Fetched completed sample files")

	samples := make([]SampleFile, len(jobs))
	for i, job := range jobs {
		samples[i] = f.derive(job, i)
	}
	return samples, nil
}

// Get returns the SampleFile of a single completed job.
func (f *Fetcher) Get(ctx context.Context, jobID string) (SampleFile, error) {
	job, err := f.find(ctx, "get", jobID)
	if err != nil {
		return SampleFile{}, err
	}
	return f.derive(job, 0), nil
}

// Result returns the verbatim result payload of a completed job, or an
// empty object when the job has none.
func (f *Fetcher) Result(ctx context.Context, jobID string) (json.RawMessage, error) {
	job, err := f.find(ctx, "result", jobID)
	if err != nil {
		return nil, err
	}
	return normalizeResult(job.Result), nil
}

func (f *Fetcher) find(ctx context.Context, op, jobID string) (Job, error) {
	log := f.log.With().Str("job_id", jobID).Logger()
	log.Debug().Msg("Fetching sample data")

	start := time.Now()
	jobs, err := f.source.FindCompletedJobs(ctx, jobID)
	if err == nil && len(jobs) == 0 {
		err = ErrNotFound
	}
	metrics.ObserveBackend(op, outcome(err), start)
	if errors.Is(err, ErrNotFound) {
		log.Info().Msg("No completed job with this identifier")
		return Job{}, err
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch sample data")
		return Job{}, fmt.Errorf("fetch sample %s: %w", jobID, err)
	}

	log.Debug().Msg("Fetched sample data")
	return jobs[0], nil
}

func (f *Fetcher) derive(job Job, index int) SampleFile {
	res, err := ParseResult(job.Result)
	if err != nil {
		f.log.Warn().Err(err).Str("job_id", job.JobID).Msg("Partly unreadable result payload, deriving from the readable fields")
	}
	return Derive(job, res, index)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrNotFound):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}
