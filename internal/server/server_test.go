package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/copyleftdev/KERF/internal/engine"
	"github.com/copyleftdev/KERF/internal/engine/mincut"
	"github.com/copyleftdev/KERF/internal/logging"
	"github.com/copyleftdev/KERF/internal/metrics"
	"github.com/copyleftdev/KERF/internal/store"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()

	registry := engine.NewRegistry()
	require.NoError(t, registry.Register(mincut.New()))

	logger := logging.NewFromZap(zap.NewNop())
	m := metrics.New(prometheus.NewRegistry())
	eng := engine.NewEngine(registry, store.NewMemory(), logger, m)

	r := chi.NewRouter()
	r.Use(middleware.StripSlashes)
	srv := NewServer(registry, eng, logger, m)
	srv.RegisterRoutes(r)
	return r
}

func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	return out
}

func runBody(options map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"algorithmId": "mincut",
		"input": map[string]interface{}{
			"vertices": []interface{}{"A", "B", "C", "D"},
			"edges": []interface{}{
				[]interface{}{"A", "B"},
				[]interface{}{"A", "C"},
				[]interface{}{"B", "C"},
				[]interface{}{"B", "D"},
				[]interface{}{"C", "D"},
			},
		},
		"options": options,
	}
}

func TestHealthEndpoint(t *testing.T) {
	rr := doRequest(t, testRouter(t), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]interface{}{"status": "ok"}, decodeBody(t, rr))
}

func TestListAlgorithms(t *testing.T) {
	rr := doRequest(t, testRouter(t), http.MethodGet, "/algorithms", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	body := decodeBody(t, rr)
	algorithms, ok := body["algorithms"].([]interface{})
	require.True(t, ok)
	require.Len(t, algorithms, 1)

	meta := algorithms[0].(map[string]interface{})
	assert.Equal(t, "mincut", meta["id"])
	assert.NotEmpty(t, meta["options"])
}

func TestRunEndpoint(t *testing.T) {
	router := testRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/run", runBody(map[string]interface{}{"iterations": 100}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body := decodeBody(t, rr)
	assert.Equal(t, "mincut", body["algorithmId"])
	assert.Equal(t, false, body["cached"])

	result := body["result"].(map[string]interface{})
	output := result["output"].(map[string]interface{})
	assert.Equal(t, float64(2), output["minCut"])

	diagnostics := result["diagnostics"].(map[string]interface{})
	assert.Contains(t, diagnostics, "optionsUsed")
	assert.Contains(t, diagnostics, "bestIteration")
}

func TestRunEndpointCachesRepeatRequests(t *testing.T) {
	router := testRouter(t)
	payload := runBody(map[string]interface{}{"iterations": 50})

	first := doRequest(t, router, http.MethodPost, "/run", payload)
	require.Equal(t, http.StatusOK, first.Code)
	firstBody := decodeBody(t, first)
	assert.Equal(t, false, firstBody["cached"])

	second := doRequest(t, router, http.MethodPost, "/run", payload)
	require.Equal(t, http.StatusOK, second.Code)
	secondBody := decodeBody(t, second)
	assert.Equal(t, true, secondBody["cached"])

	firstOutput := firstBody["result"].(map[string]interface{})["output"]
	secondOutput := secondBody["result"].(map[string]interface{})["output"]
	assert.Equal(t, firstOutput, secondOutput)
}

func TestRunEndpointValidationFailures(t *testing.T) {
	router := testRouter(t)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{
			name:       "missing algorithmId",
			body:       map[string]interface{}{"input": map[string]interface{}{}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknown algorithm",
			body: map[string]interface{}{
				"algorithmId": "ghost",
				"input":       map[string]interface{}{},
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "empty edges",
			body: map[string]interface{}{
				"algorithmId": "mincut",
				"input":       map[string]interface{}{"edges": []interface{}{}},
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "edge object without endpoints",
			body: map[string]interface{}{
				"algorithmId": "mincut",
				"input": map[string]interface{}{
					"edges": []interface{}{map[string]interface{}{"weight": 3}},
				},
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "iterations out of range",
			body: map[string]interface{}{
				"algorithmId": "mincut",
				"input": map[string]interface{}{
					"edges": []interface{}{[]interface{}{"A", "B"}},
				},
				"options": map[string]interface{}{"iterations": 0},
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, router, http.MethodPost, "/run", tt.body)
			assert.Equal(t, tt.wantStatus, rr.Code)

			body := decodeBody(t, rr)
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestRunEndpointRejectsMalformedJSON(t *testing.T) {
	router := testRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/run", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.NotEmpty(t, decodeBody(t, rr)["message"])
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	router := testRouter(t)

	for _, path := range []string{"/nope", "/algorithms/extra"} {
		rr := doRequest(t, router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, map[string]interface{}{"message": "Not Found"}, decodeBody(t, rr))
	}

	// Wrong method on a known path is a 404 too, not a 405.
	rr := doRequest(t, router, http.MethodDelete, "/run", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestTrailingSlashNormalization(t *testing.T) {
	rr := doRequest(t, testRouter(t), http.MethodGet, "/health/", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestOptionsPreflight(t *testing.T) {
	router := testRouter(t)

	for _, path := range []string{"/run", "/algorithms", "/anything"} {
		rr := doRequest(t, router, http.MethodOptions, path, nil)
		assert.Equal(t, http.StatusNoContent, rr.Code, path)
		assert.Empty(t, rr.Body.String())
	}
}

func TestCORSHeadersOnAllResponses(t *testing.T) {
	router := testRouter(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/health"},
		{http.MethodGet, "/algorithms"},
		{http.MethodGet, "/missing"},
		{http.MethodOptions, "/run"},
	}

	for _, tt := range tests {
		rr := doRequest(t, router, tt.method, tt.path, nil)
		assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"), tt.path)
	}
}
