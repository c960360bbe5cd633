package http

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/nofilahm/salesdash/internal/infra/logging"
)

// RescueingMiddleware creates middleware that recovers from panics in HTTP handlers.
// The panic and stack trace are logged and the client receives 500 Internal Server Error.
// http.ErrAbortHandler is re-raised so the server can abort the connection.
func RescueingMiddleware(next http.Handler, log logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			p := recover()
			if p == nil {
				return
			}

			if err, ok := p.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(p)
			}

			log.ErrorContext(r.Context(), "request panic", logging.Group("http",
				"uri", r.RequestURI,
				"method", r.Method,
			), logging.Group("error",
				"panic", p,
				"stack", string(debug.Stack()),
			))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}
