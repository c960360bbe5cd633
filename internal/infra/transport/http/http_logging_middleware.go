package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/nofilahm/salesdash/internal/infra/logging"
)

// StatusRecorder wraps http.ResponseWriter to capture the response status and size.
type StatusRecorder struct {
	http.ResponseWriter
	StatusCode  int
	BytesSent   int
	wroteHeader bool
}

func (w *StatusRecorder) WriteHeader(code int) {
	if !w.wroteHeader {
		w.StatusCode = code
		w.wroteHeader = true
	}

	w.ResponseWriter.WriteHeader(code)
}

func (w *StatusRecorder) Write(b []byte) (int, error) {
	w.wroteHeader = true

	n, err := w.ResponseWriter.Write(b)
	w.BytesSent += n

	if err != nil {
		return n, fmt.Errorf("write: %w", err)
	}

	return n, nil
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *StatusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// LoggingMiddleware creates middleware that logs HTTP request and response details.
// Requests are logged at DEBUG; responses at a level chosen by status code:
// 5xx ERROR, 4xx WARN, otherwise INFO. Health probes are only logged at DEBUG.
func LoggingMiddleware(next http.Handler, log logging.Logger) http.Handler {
	//nolint:varnamelen
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		log.DebugContext(r.Context(), "request", logging.Group("http",
			"uri", r.RequestURI,
			"method", r.Method,
			"remote", r.RemoteAddr,
		))

		rec := &StatusRecorder{ResponseWriter: w, StatusCode: http.StatusOK}

		next.ServeHTTP(rec, r)

		var level logging.Level

		switch {
		case rec.StatusCode >= http.StatusInternalServerError:
			level = logging.LevelError
		case rec.StatusCode >= http.StatusBadRequest:
			level = logging.LevelWarn
		case r.URL.Path == "/healthz":
			level = logging.LevelDebug
		default:
			level = logging.LevelInfo
		}

		log.Log(r.Context(), level, "response", logging.Group("http",
			"uri", r.RequestURI,
			"method", r.Method,
			"status", rec.StatusCode,
			"bytes_sent", rec.BytesSent,
			"duration", time.Since(start),
		))
	})
}
