package supabase

import (
	"context"

	"github.com/gsarma/samplefeed/internal/sample"
)

const (
	jobsTable      = "analysis_jobs"
	statusComplete = "complete"
)

var _ sample.JobSource = (*JobsService)(nil)

// JobsService reads analysis jobs through PostgREST.
// It implements sample.JobSource.
type JobsService struct {
	c *Client
}

func NewJobsService(c *Client) *JobsService {
	return &JobsService{c: c}
}

// ListCompletedJobs returns up to limit completed jobs, newest first.
func (s *JobsService) ListCompletedJobs(ctx context.Context, limit int) ([]sample.Job, error) {
	var jobs []sample.Job
	err := s.c.Select(ctx, jobsTable, Query{
		Eq("status", statusComplete),
		OrderDesc("created_at"),
		Limit(limit),
	}, &jobs)
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// FindCompletedJobs returns the completed jobs whose job_id is jobID.
// jobID is written into the query as is.
func (s *JobsService) FindCompletedJobs(ctx context.Context, jobID string) ([]sample.Job, error) {
	var jobs []sample.Job
	err := s.c.Select(ctx, jobsTable, Query{
		Eq("job_id", jobID),
		Eq("status", statusComplete),
	}, &jobs)
	if err != nil {
		return nil, err
	}
	return jobs, nil
}
