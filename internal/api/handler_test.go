package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsarma/samplefeed/internal/auth"
	"github.com/gsarma/samplefeed/internal/sample"
	"github.com/gsarma/samplefeed/internal/supabase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubFetcher implements SampleFetcher for handler tests.
// Unset functions behave like an empty backend.
type stubFetcher struct {
	listFn   func(ctx context.Context) ([]sample.SampleFile, error)
	getFn    func(ctx context.Context, jobID string) (sample.SampleFile, error)
	resultFn func(ctx context.Context, jobID string) (json.RawMessage, error)
}

func (s *stubFetcher) ListCompleted(ctx context.Context) ([]sample.SampleFile, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return []sample.SampleFile{}, nil
}
func (s *stubFetcher) Get(ctx context.Context, jobID string) (sample.SampleFile, error) {
	if s.getFn != nil {
		return s.getFn(ctx, jobID)
	}
	return sample.SampleFile{}, sample.ErrNotFound
}
func (s *stubFetcher) Result(ctx context.Context, jobID string) (json.RawMessage, error) {
	if s.resultFn != nil {
		return s.resultFn(ctx, jobID)
	}
	return nil, sample.ErrNotFound
}

func newRouter(f SampleFetcher, token string) *gin.Engine {
	r := gin.New()
	RegisterRoutes(r, f, auth.NewGuard(token), zerolog.Nop())
	return r
}

func serve(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	t.Parallel()

	w := serve(newRouter(&stubFetcher{}, "tok"), http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListSamples(t *testing.T) {
	t.Parallel()

	want := []sample.SampleFile{
		{JobID: "b", Filename: "b.fasta", TotalSequences: 10, CreatedAt: "2024-01-02T00:00:00Z", FileSizeMB: 4, AvgConfidence: 0.9, NovelSpeciesCount: 1},
		{JobID: "a", Filename: "a.fasta", TotalSequences: 20, CreatedAt: "2024-01-01T00:00:00Z", FileSizeMB: 5, AvgConfidence: 0.8, NovelSpeciesCount: 0},
	}
	f := &stubFetcher{
		listFn: func(context.Context) ([]sample.SampleFile, error) { return want, nil },
	}

	w := serve(newRouter(f, ""), http.MethodGet, "/samples", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got []sample.SampleFile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, want, got)
}

func TestListSamples_EmptyIsArray(t *testing.T) {
	t.Parallel()

	w := serve(newRouter(&stubFetcher{}, ""), http.MethodGet, "/samples", nil)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[]`, w.Body.String())
}

func TestErrorMapping(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err error

		wantCode int
	}{
		"Not found":         {err: sample.ErrNotFound, wantCode: http.StatusNotFound},
		"Wrapped not found": {err: fmt.Errorf("lookup: %w", sample.ErrNotFound), wantCode: http.StatusNotFound},
		"Backend status":    {err: &supabase.RequestError{StatusCode: 500, Message: "boom"}, wantCode: http.StatusBadGateway},
		"Transport":         {err: &supabase.RequestError{Message: "dial", Err: errors.New("dial")}, wantCode: http.StatusBadGateway},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := &stubFetcher{
				listFn:   func(context.Context) ([]sample.SampleFile, error) { return nil, tc.err },
				getFn:    func(context.Context, string) (sample.SampleFile, error) { return sample.SampleFile{}, tc.err },
				resultFn: func(context.Context, string) (json.RawMessage, error) { return nil, tc.err },
			}
			r := newRouter(f, "")

			for _, path := range []string{"/samples/abc", "/samples/abc/result"} {
				w := serve(r, http.MethodGet, path, nil)
				assert.Equal(t, tc.wantCode, w.Code, path)
			}
			if !errors.Is(tc.err, sample.ErrNotFound) {
				w := serve(r, http.MethodGet, "/samples", nil)
				assert.Equal(t, tc.wantCode, w.Code, "/samples")
			}
		})
	}
}

func TestGetSample_PassesJobID(t *testing.T) {
	t.Parallel()

	var gotID string
	f := &stubFetcher{
		getFn: func(_ context.Context, jobID string) (sample.SampleFile, error) {
			gotID = jobID
			return sample.SampleFile{JobID: jobID}, nil
		},
	}

	w := serve(newRouter(f, ""), http.MethodGet, "/samples/job-42", nil)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "job-42", gotID)
}

func TestGetSampleResult_Verbatim(t *testing.T) {
	t.Parallel()

	payload := `{"sequences":[{"taxonomy":"Unknown bacterium"}],"extra":{"n":1}}`
	f := &stubFetcher{
		resultFn: func(context.Context, string) (json.RawMessage, error) {
			return json.RawMessage(payload), nil
		},
	}

	w := serve(newRouter(f, ""), http.MethodGet, "/samples/abc/result", nil)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, payload, w.Body.String())
	require.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestSamplesRequireToken(t *testing.T) {
	t.Parallel()

	r := newRouter(&stubFetcher{}, "tok")

	w := serve(r, http.MethodGet, "/samples", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodGet, "/samples", http.Header{"Authorization": {"Bearer tok"}})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	r := newRouter(&stubFetcher{}, "")

	w := serve(r, http.MethodGet, "/health", http.Header{RequestIDHeader: {"given-id"}})
	require.Equal(t, "given-id", w.Header().Get(RequestIDHeader))

	w = serve(r, http.MethodGet, "/health", nil)
	require.Len(t, w.Header().Get(RequestIDHeader), 36, "expected a generated UUID")
}

func TestUnsafeJobIDRejected(t *testing.T) {
	t.Parallel()

	var calls int
	f := &stubFetcher{
		getFn: func(context.Context, string) (sample.SampleFile, error) {
			calls++
			return sample.SampleFile{}, nil
		},
		resultFn: func(context.Context, string) (json.RawMessage, error) {
			calls++
			return json.RawMessage(`{}`), nil
		},
	}
	r := newRouter(f, "")

	for _, path := range []string{
		"/samples/a%23x",
		"/samples/a%23x/result",
		"/samples/a%26select%3D%2A%2Cusers%28%2A%29/result",
		"/samples/a%20b/result",
		"/samples/a%3Fstatus%3Deq.running/result",
	} {
		w := serve(r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.JSONEq(t, `{"error":"invalid job id"}`, w.Body.String(), path)
	}
	require.Zero(t, calls, "fetcher must not be reached")
}

// TestResultQueryKeepsStatusFilter runs the API against a PostgREST backend
// and checks what reaches it.
func TestResultQueryKeepsStatusFilter(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		queries []string
	)
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		mu.Lock()
		queries = append(queries, req.URL.RawQuery)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"job_id":"a","status":"running","result":{"secret":true}}]`))
	}))
	t.Cleanup(backend.Close)

	fetcher := sample.NewFetcher(supabase.NewJobsService(supabase.New(backend.URL, "anon-key")), zerolog.Nop())
	r := newRouter(fetcher, "")

	tests := map[string]struct {
		path string

		wantCode  int
		wantQuery string
	}{
		"Fragment":        {path: "/samples/a%23x/result", wantCode: http.StatusBadRequest},
		"Extra parameter": {path: "/samples/a%26select%3D%2A%2Cusers%28%2A%29/result", wantCode: http.StatusBadRequest},
		"Safe id":         {path: "/samples/3f2a-77.b_c~d/result", wantCode: http.StatusOK, wantQuery: "job_id=eq.3f2a-77.b_c~d&status=eq.complete"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			mu.Lock()
			queries = nil
			mu.Unlock()

			w := serve(r, http.MethodGet, tc.path, nil)
			require.Equal(t, tc.wantCode, w.Code, w.Body.String())

			mu.Lock()
			defer mu.Unlock()
			if tc.wantQuery == "" {
				require.Empty(t, queries, "backend must not be queried")
				return
			}
			require.Equal(t, []string{tc.wantQuery}, queries)
		})
	}
}
