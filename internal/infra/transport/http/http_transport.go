package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nofilahm/salesdash/internal/infra/logging"
)

// HTTPTransportConfig contains configuration parameters for HTTP servers.
// Durations accept Go syntax ("5s") or a number of seconds.
type HTTPTransportConfig struct {
	// ServerAddr is the network address to listen on
	ServerAddr string `env:"SERVER_ADDR" default:":8080"`
	// ReadHeaderTimeout is the timeout for reading request headers
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" default:"5s"`

	ReadTimeout  time.Duration `env:"READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" default:"30s"`

	// ShutdownTimeout bounds how long in-flight requests may run after ctx is cancelled
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// HTTPTransport defines the interface for HTTP handlers that can serve requests.
type HTTPTransport interface {
	http.Handler
}

// HTTPHandlerFunc converts an HTTPTransport into a standard http.HandlerFunc.
// This allows using HTTPTransport implementations with standard HTTP middleware.
func HTTPHandlerFunc(handler HTTPTransport) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}
}

// Middleware wraps handler with the standard chain: panic recovery, logging and tracing.
func Middleware(handler HTTPTransport, log logging.Logger) http.Handler {
	handler = RescueingMiddleware(handler, log)
	handler = LoggingMiddleware(handler, log)
	handler = TracingMiddleware(handler)

	return handler
}

// ListenAndServe starts an HTTP server with the given handler and configuration.
// It sets up standard middleware for logging, tracing, and panic recovery.
// When ctx is cancelled the server shuts down gracefully and nil is returned.
// Returns an error if the server fails to start or encounters an error while running.
func ListenAndServe(ctx context.Context, handler HTTPTransport, cfg HTTPTransportConfig) (err error) {
	log := logging.GetLogger("infra.transport.http")

	//nolint:exhaustruct
	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           Middleware(handler, log),
		ErrorLog:          logging.GetLogLogger(log, logging.LevelError),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
	defer server.Close()

	sock, err := net.Listen("tcp", cfg.ServerAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	log.InfoContext(ctx, "listening", "addr", sock.Addr().String())

	shutdownErr := make(chan error, 1)

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()

		log.InfoContext(shutdownCtx, "shutting down")
		shutdownErr <- server.Shutdown(shutdownCtx)
	}()

	if err := server.Serve(sock); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	if err := <-shutdownErr; err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
