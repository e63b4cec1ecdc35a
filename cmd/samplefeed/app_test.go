package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gsarma/samplefeed/internal/config"
	"github.com/gsarma/samplefeed/internal/sample"
)

type stubSource struct {
	jobs []sample.Job
	err  error
}

func (s stubSource) ListCompletedJobs(context.Context, int) ([]sample.Job, error) {
	return s.jobs, s.err
}

func (s stubSource) FindCompletedJobs(_ context.Context, jobID string) ([]sample.Job, error) {
	var out []sample.Job
	for _, j := range s.jobs {
		if j.JobID == jobID {
			out = append(out, j)
		}
	}
	return out, s.err
}

const restConfig = `
source: rest
supabase:
  url: https://example.supabase.co
  key: anon-key
log:
  level: error
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "samplefeed.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func runApp(t *testing.T, src stubSource, args ...string) (stdout string, a *app, err error) {
	t.Helper()

	var out, logs bytes.Buffer
	a = newApp(&out, &logs)
	a.openSource = func(_ context.Context, cfg config.Config) (sample.JobSource, func(), error) {
		return src, func() {}, nil
	}
	err = a.run(context.Background(), args)
	return out.String(), a, err
}

func TestList(t *testing.T) {
	src := stubSource{jobs: []sample.Job{
		{JobID: "abc123", Filename: "sample.fasta", CreatedAt: "2024-01-01T00:00:00Z", Status: "complete"},
	}}

	out, _, err := runApp(t, src, "list", "--config", writeConfig(t, restConfig))
	require.NoError(t, err)

	var got []sample.SampleFile
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, []sample.SampleFile{{
		JobID:             "abc123",
		Filename:          "sample.fasta",
		TotalSequences:    501,
		CreatedAt:         "2024-01-01T00:00:00Z",
		FileSizeMB:        6,
		AvgConfidence:     0.86,
		NovelSpeciesCount: 3,
	}}, got)
}

func TestResult(t *testing.T) {
	src := stubSource{jobs: []sample.Job{
		{JobID: "abc123", Result: json.RawMessage(`{"sequences":[]}`)},
	}}
	cfgPath := writeConfig(t, restConfig)

	out, _, err := runApp(t, src, "result", "abc123", "--config", cfgPath)
	require.NoError(t, err)
	require.Equal(t, "{\"sequences\":[]}\n", out)

	_, a, err := runApp(t, src, "result", "missing", "--config", cfgPath)
	require.ErrorIs(t, err, sample.ErrNotFound)
	require.False(t, a.usageError(), "a missing sample is not a usage error")
}

func TestErrors(t *testing.T) {
	errBackend := errors.New("backend down")

	tests := map[string]struct {
		src    stubSource
		config string
		args   []string

		wantUsageError bool
	}{
		"Backend failure":      {src: stubSource{err: errBackend}, config: restConfig, args: []string{"list"}},
		"Missing credentials":  {config: "source: rest\n", args: []string{"list"}},
		"Unknown source":       {config: restConfig, args: []string{"list", "--source", "ftp"}},
		"Missing job id":       {config: restConfig, args: []string{"result"}, wantUsageError: true},
		"Unknown command":      {config: restConfig, args: []string{"delete"}, wantUsageError: true},
		"Unsafe job id":        {config: restConfig, args: []string{"result", "a&select=*"}, wantUsageError: true},
		"Job id with fragment": {config: restConfig, args: []string{"result", "a#x"}, wantUsageError: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			args := append(tc.args, "--config", writeConfig(t, tc.config))

			out, a, err := runApp(t, tc.src, args...)
			require.Error(t, err)
			require.Empty(t, out)
			require.Equal(t, tc.wantUsageError, a.usageError())
		})
	}
}

func TestToken(t *testing.T) {
	out, _, err := runApp(t, stubSource{}, "token")
	require.NoError(t, err)
	require.Len(t, out, 65, "64 hex characters and a newline")
}
