// Package store reads analysis jobs straight from the Postgres database
// behind the Supabase project.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gsarma/samplefeed/internal/sample"
)

// Querier is the subset of *pgxpool.Pool the store uses.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// created_at goes through to_json so the text matches what PostgREST returns.
const (
	listCompletedJobs = `
SELECT job_id::text,
       coalesce(filename, ''),
       coalesce(to_json(created_at) #>> '{}', ''),
       status,
       result
FROM analysis_jobs
WHERE status = 'complete'
ORDER BY created_at DESC
LIMIT $1`

	findCompletedJobs = `
SELECT job_id::text,
       coalesce(filename, ''),
       coalesce(to_json(created_at) #>> '{}', ''),
       status,
       result
FROM analysis_jobs
WHERE job_id::text = $1 AND status = 'complete'`
)

var _ sample.JobSource = (*Store)(nil)

// Store implements sample.JobSource over a Postgres connection pool.
type Store struct {
	db Querier
}

func New(db Querier) *Store {
	return &Store{db: db}
}

// Connect opens a pool for databaseURL and checks it is reachable.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("store: open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return pool, nil
}

func (s *Store) ListCompletedJobs(ctx context.Context, limit int) ([]sample.Job, error) {
	rows, err := s.db.Query(ctx, listCompletedJobs, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list completed jobs: %w", err)
	}
	jobs, err := pgx.CollectRows(rows, scanJob)
	if err != nil {
		return nil, fmt.Errorf("store: list completed jobs: %w", err)
	}
	return jobs, nil
}

func (s *Store) FindCompletedJobs(ctx context.Context, jobID string) ([]sample.Job, error) {
	rows, err := s.db.Query(ctx, findCompletedJobs, jobID)
	if err != nil {
		return nil, fmt.Errorf("store: find completed job: %w", err)
	}
	jobs, err := pgx.CollectRows(rows, scanJob)
	if err != nil {
		return nil, fmt.Errorf("store: find completed job: %w", err)
	}
	return jobs, nil
}

func scanJob(row pgx.CollectableRow) (sample.Job, error) {
	var (
		j      sample.Job
		result []byte
	)
	if err := row.Scan(&j.JobID, &j.Filename, &j.CreatedAt, &j.Status, &result); err != nil {
		return sample.Job{}, err
	}
	j.Result = result
	return j, nil
}
