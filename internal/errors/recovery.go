// Package errors carries HTTP-level error middleware for the KERF
// algorithm service.
package errors

import (
	"net/http"
	"runtime/debug"

	"github.com/copyleftdev/KERF/internal/logging"
)

// RecoveryMiddleware returns a middleware that recovers from panics,
// logs them with a stack trace, and answers with the service's JSON
// error envelope.
func RecoveryMiddleware(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					fields := map[string]interface{}{
						"error": rec,
						"stack": string(debug.Stack()),
					}
					if r != nil {
						fields["method"] = r.Method
						fields["path"] = r.URL.Path
					}
					logger.Error("recovered from panic", fields)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"message":"Internal Server Error"}`))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// ErrorLogger is a middleware that logs every error response (status
// 400 and above) for operator visibility.
func ErrorLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rw, r)

			if rw.status >= http.StatusBadRequest {
				logger.Warn("request failed", map[string]interface{}{
					"status": rw.status,
					"method": r.Method,
					"path":   r.URL.Path,
					"ip":     r.RemoteAddr,
				})
			}
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code before writing the header.
func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
