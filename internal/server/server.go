// Package server exposes the algorithm catalog and execution engine
// over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/copyleftdev/KERF/internal/engine"
	"github.com/copyleftdev/KERF/internal/logging"
	"github.com/copyleftdev/KERF/internal/metrics"
)

// Logger defines the logging interface used by the server. This allows
// us to be flexible with our logging implementation.
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// Server wires the registry and engine to the HTTP boundary.
type Server struct {
	registry *engine.Registry
	engine   *engine.Engine
	logger   Logger
	metrics  *metrics.Metrics
}

// NewServer creates a server over the given registry and engine.
// metrics may be nil.
func NewServer(registry *engine.Registry, eng *engine.Engine, logger Logger, m *metrics.Metrics) *Server {
	return &Server{
		registry: registry,
		engine:   eng,
		logger:   logger,
		metrics:  m,
	}
}

// RegisterRoutes mounts the service endpoints on the router. Unknown
// routes and methods both answer 404 with the JSON error envelope.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Use(corsMiddleware)

	r.Get("/algorithms", s.handleListAlgorithms)
	r.Post("/run", s.handleRun)
	r.Get("/health", s.handleHealth)

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleNotFound)
}

// corsMiddleware adds permissive cross-origin headers to every
// response and answers pre-flight OPTIONS requests with 204.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleListAlgorithms(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"algorithms": s.registry.ListMetadata(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.respondError(w, http.StatusNotFound, "Not Found")
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req engine.RunRequest
	if err := decodeJSONBody(r.Body, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.AlgorithmID == "" {
		s.respondError(w, http.StatusBadRequest, "algorithmId is required")
		return
	}

	resp, err := s.engine.Run(r.Context(), req)
	if err != nil {
		s.respondEngineError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, resp)
}

func decodeJSONBody(body io.Reader, dst interface{}) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// Reject trailing garbage after the JSON document.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

// respondEngineError maps the engine's error taxonomy to HTTP statuses:
// client faults become 400, unknown identifiers 404, and everything
// else 500 with a generic message. Internal detail is logged, not
// leaked to the caller.
func (s *Server) respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch engine.KindOf(err) {
	case engine.ErrorKindClient:
		s.respondError(w, http.StatusBadRequest, err.Error())
	case engine.ErrorKindNotFound:
		s.respondError(w, http.StatusNotFound, err.Error())
	default:
		logging.FromContext(r.Context()).Error("internal error", map[string]interface{}{
			"error": err.Error(),
			"path":  r.URL.Path,
		})
		s.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	if s.metrics != nil {
		s.metrics.HTTPErrors.WithLabelValues(strconv.Itoa(status)).Inc()
	}
	s.respondJSON(w, status, map[string]string{"message": message})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
