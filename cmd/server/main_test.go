package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"finance-predictor/internal/cqrs"
	"finance-predictor/internal/handlers"
	"finance-predictor/internal/logging"
	"finance-predictor/internal/middleware"
	"finance-predictor/internal/prediction"
	"finance-predictor/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	repos := repository.NewMemoryStore().Repositories()
	market := prediction.NewPolygonClient("http://127.0.0.1:0", "", 5, nil)
	h := handlers.New(repos, market, prediction.NewTickerProvider("missing.csv"))

	m := cqrs.NewMediator(cqrs.WithLogger(logging.Discard()))
	require.NoError(t, h.Register(m))
	m.Freeze()

	limiter := middleware.NewRateLimiter(100, 100)
	t.Cleanup(limiter.Close)

	router, err := newRouter(m, limiter, []string{"*"}, logging.Discard())
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestRouterServesStatus(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/api/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, handlers.Version, body["version"])
}

func TestRouterServesMetrics(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouterUnknownRoute(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/api/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
