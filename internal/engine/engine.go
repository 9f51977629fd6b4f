// Package engine orchestrates memoized algorithm execution: it resolves
// algorithms from a registry, validates inputs and options, derives a
// deterministic fingerprint for each request, and consults a result
// store so identical work is never recomputed.
package engine

import (
	"context"
	"time"

	"github.com/copyleftdev/KERF/internal/metrics"
)

// Logger is the logging surface the engine needs. The logging package's
// Logger satisfies it.
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
}

// RunRequest is a single execution request as received at the boundary.
type RunRequest struct {
	AlgorithmID string                 `json:"algorithmId"`
	Input       interface{}            `json:"input"`
	Options     map[string]interface{} `json:"options"`
}

// RunResponse is the outcome of a RunRequest. Cached reports whether
// the result was served from the store rather than computed.
type RunResponse struct {
	AlgorithmID string  `json:"algorithmId"`
	Cached      bool    `json:"cached"`
	Result      *Result `json:"result"`
}

// Engine executes requests against the registry, memoizing through the
// store. It holds no per-request state and is safe for concurrent use.
type Engine struct {
	registry *Registry
	store    Store
	logger   Logger
	metrics  *metrics.Metrics

	// now is swappable in tests to pin record timestamps.
	now func() time.Time
}

// NewEngine creates an engine over the given registry and store.
// metrics may be nil when no collector is registered.
func NewEngine(registry *Registry, store Store, logger Logger, m *metrics.Metrics) *Engine {
	return &Engine{
		registry: registry,
		store:    store,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
}

// Run drives a request through the execution state machine:
// validate → fingerprint → lookup → (hit | execute + persist) → respond.
func (e *Engine) Run(ctx context.Context, req RunRequest) (*RunResponse, error) {
	if req.AlgorithmID == "" {
		return nil, NewClientError("algorithmId is required")
	}

	alg, err := e.registry.Lookup(req.AlgorithmID)
	if err != nil {
		return nil, err
	}

	input, err := alg.ParseInput(req.Input)
	if err != nil {
		return nil, asClientError(err, "invalid input")
	}

	opts, err := ValidateOptions(alg.Metadata().Options, req.Options)
	if err != nil {
		return nil, err
	}

	fp := Fingerprint(req.AlgorithmID, input, opts)

	cached, err := e.store.Get(ctx, fp)
	if err != nil {
		return nil, WrapInternal(err, "cache lookup failed").WithComponent("store")
	}
	if cached != nil {
		e.countLookup(req.AlgorithmID, true)
		result := cached.Result
		// The fingerprint guarantees the stored options are value-equal
		// to the current ones; overwriting keeps the response
		// self-describing either way.
		result.Diagnostics = withOptionsUsed(result.Diagnostics, opts)
		e.logger.Debug("cache hit", map[string]interface{}{
			"algorithm":   req.AlgorithmID,
			"fingerprint": fp,
		})
		return &RunResponse{AlgorithmID: req.AlgorithmID, Cached: true, Result: &result}, nil
	}
	e.countLookup(req.AlgorithmID, false)

	start := e.now()
	result, err := alg.Execute(ctx, input, opts)
	if err != nil {
		if KindOf(err) == ErrorKindClient {
			return nil, err
		}
		return nil, WrapInternal(err, "algorithm execution failed").WithComponent(req.AlgorithmID)
	}
	if e.metrics != nil {
		e.metrics.RunDuration.WithLabelValues(req.AlgorithmID).Observe(time.Since(start).Seconds())
	}

	result.Diagnostics = withOptionsUsed(result.Diagnostics, opts)

	record := &CacheRecord{
		Fingerprint: fp,
		AlgorithmID: req.AlgorithmID,
		CreatedAt:   e.now().UTC(),
		Result:      *result,
	}
	inserted, err := e.store.PutIfAbsent(ctx, record)
	if err != nil {
		// A failed write means future identical requests recompute, which
		// is tolerable, but the failure itself must surface to the caller.
		return nil, WrapInternal(err, "cache write failed").WithComponent("store")
	}
	if !inserted {
		e.logger.Debug("lost cache write race, keeping locally computed result", map[string]interface{}{
			"algorithm":   req.AlgorithmID,
			"fingerprint": fp,
		})
	}

	e.logger.Info("algorithm executed", map[string]interface{}{
		"algorithm":   req.AlgorithmID,
		"fingerprint": fp,
		"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
	})

	return &RunResponse{AlgorithmID: req.AlgorithmID, Cached: false, Result: result}, nil
}

func (e *Engine) countLookup(algorithmID string, hit bool) {
	if e.metrics == nil {
		return
	}
	if hit {
		e.metrics.CacheHits.WithLabelValues(algorithmID).Inc()
	} else {
		e.metrics.CacheMisses.WithLabelValues(algorithmID).Inc()
	}
}

// withOptionsUsed returns diagnostics augmented with the resolved
// options, copying so stored records are never aliased by responses.
func withOptionsUsed(diagnostics map[string]interface{}, opts Options) map[string]interface{} {
	out := make(map[string]interface{}, len(diagnostics)+1)
	for k, v := range diagnostics {
		out[k] = v
	}
	out["optionsUsed"] = opts.Values()
	return out
}

// asClientError keeps an already-classified engine error as-is and
// wraps anything else as a client-class validation failure.
func asClientError(err error, message string) error {
	if _, ok := AsEngineError(err); ok {
		return err
	}
	return &Error{Kind: ErrorKindClient, Message: message, Err: err}
}
