package loadtest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_CountsFailures(t *testing.T) {
	var calls atomic.Int64
	res := Run(context.Background(), Scenario{
		Name:        "alternating",
		Concurrency: 4,
		Duration:    100 * time.Millisecond,
		Requests: []RequestFunc{
			func(ctx context.Context) error { calls.Add(1); time.Sleep(time.Millisecond); return nil },
			func(ctx context.Context) error { calls.Add(1); time.Sleep(time.Millisecond); return errors.New("boom") },
		},
	})

	require.Positive(t, res.TotalRequests)
	assert.LessOrEqual(t, res.TotalRequests, calls.Load())
	assert.Equal(t, res.TotalRequests, res.SuccessRequests+res.FailedRequests)
	assert.Positive(t, res.FailedRequests)
	assert.LessOrEqual(t, res.P50, res.P95)
	assert.LessOrEqual(t, res.Min, res.Max)
}

func TestRun_NoRequests(t *testing.T) {
	res := Run(context.Background(), Scenario{Name: "empty", Duration: 10 * time.Millisecond})
	assert.Zero(t, res.TotalRequests)
	assert.Zero(t, res.QPS)
}

func TestPercentile(t *testing.T) {
	sorted := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.Equal(t, time.Duration(6), percentile(sorted, 0.5))
	assert.Equal(t, time.Duration(10), percentile(sorted, 0.99))
	assert.Zero(t, percentile(nil, 0.5))
}

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/courses":
			w.WriteHeader(http.StatusOK)
		case "/licenses/me":
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	anon := NewClient(srv.URL, "")
	assert.NoError(t, anon.Get("/courses")(context.Background()))
	assert.Error(t, anon.Get("/licenses/me")(context.Background()))
	assert.NoError(t, anon.Get("/licenses/me", http.StatusUnauthorized)(context.Background()))
	assert.Error(t, anon.Get("/missing")(context.Background()))

	authed := NewClient(srv.URL, "tok")
	assert.NoError(t, authed.Get("/licenses/me")(context.Background()))
}
