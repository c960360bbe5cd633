package dashboardsvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/nofilahm/salesdash/internal/domain"
	context_ "github.com/nofilahm/salesdash/internal/infra/context"
	"github.com/nofilahm/salesdash/internal/infra/logging"
	http_ "github.com/nofilahm/salesdash/internal/infra/transport/http"
	"github.com/nofilahm/salesdash/internal/repo/session"
)

// ErrNoSession is returned when a handler runs without the session middleware.
var ErrNoSession = errors.New("no session in request context")

// HTTPTransportConfig contains configuration parameters for the HTTP transport layer.
type HTTPTransportConfig struct {
	http_.HTTPTransportConfig

	Cookie http_.SessionCookieConfig `envPrefix:"COOKIE_"`
}

// HTTPTransport handles HTTP requests for the dashboard.
// Every request is one Gate event; the resulting session is saved before the view is written.
type HTTPTransport struct {
	gate     *Gate
	sessions session.Repository
	log      logging.Logger
	cfg      HTTPTransportConfig
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport instance with the given configuration.
func NewHTTPTransport(gate *Gate, sessions session.Repository, cfg HTTPTransportConfig) *HTTPTransport {
	return &HTTPTransport{
		gate:     gate,
		sessions: sessions,
		log:      logging.GetLogger("svc.dashboardsvc.http_transport"),
		cfg:      cfg,
	}
}

// ServeHTTP implements http.Handler and sets up routes for the dashboard endpoints:
// - GET /: Render the current view
// - POST /login: Submit the login form (username, password)
// - POST /tab: Select a dashboard tab (tab)
// - POST /logout: Log out and reset the session
// - GET /healthz: Liveness probe
// All routes except /healthz run behind the session middleware.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	app := http.NewServeMux()
	app.HandleFunc("GET /{$}", ht.HandleRender)
	app.HandleFunc("POST /login", ht.HandleLogin)
	app.HandleFunc("POST /tab", ht.HandleTab)
	app.HandleFunc("POST /logout", ht.HandleLogout)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", ht.HandleHealth)
	mux.Handle("/", http_.SessionMiddleware(app, ht.sessions, ht.gate.NewSession, ht.cfg.Cookie, ht.log))
	mux.ServeHTTP(w, r)
}

// HandleHealth answers liveness probes.
func (ht *HTTPTransport) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok\n"))
}

// HandleRender renders the view of the caller's session.
func (ht *HTTPTransport) HandleRender(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleRender(w, r)
}

func (ht *HTTPTransport) handleRender(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "render failed", "error", err)
		} else {
			log.DebugContext(ctx, "view rendered")
		}
	}(r.Context())

	s, err := ht.session(w, r)
	if err != nil {
		return err
	}

	return ht.respond(r.Context(), w, s, NewJSONRenderer(w, http.StatusOK))
}

// HandleLogin processes login form submissions.
// Expects form parameters: username, password.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogin(w, r)
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "login request failed", "error", err)
		} else {
			log.DebugContext(ctx, "login request handled")
		}
	}(r.Context())

	s, err := ht.session(w, r)
	if err != nil {
		return err
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return fmt.Errorf("parse form: %w", err)
	}

	next, err := ht.gate.Login(r.Context(), s, r.PostFormValue("username"), r.PostFormValue("password"))

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		if err := ht.save(r.Context(), w, next); err != nil {
			return err
		}

		return errors.Join(err, ht.gate.RenderLoginFailure(r.Context(), NewJSONRenderer(w, http.StatusUnauthorized)))
	case errors.Is(err, domain.ErrInvalidTransition):
		return errors.Join(err, ht.respond(r.Context(), w, next, NewJSONRenderer(w, http.StatusConflict).WithError(err.Error())))
	case err != nil:
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return fmt.Errorf("login: %w", err)
	}

	return ht.respond(http_.WithSession(r.Context(), next), w, next, NewJSONRenderer(w, http.StatusOK))
}

// HandleTab processes tab selections.
// Expects form parameter: tab.
func (ht *HTTPTransport) HandleTab(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleTab(w, r)
}

func (ht *HTTPTransport) handleTab(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "tab request failed", "error", err)
		} else {
			log.DebugContext(ctx, "tab request handled")
		}
	}(r.Context())

	s, err := ht.session(w, r)
	if err != nil {
		return err
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return fmt.Errorf("parse form: %w", err)
	}

	next, err := ht.gate.SelectTab(r.Context(), s, r.PostFormValue("tab"))

	switch {
	case errors.Is(err, domain.ErrNotLoggedIn):
		return errors.Join(err, ht.respond(r.Context(), w, next, NewJSONRenderer(w, http.StatusUnauthorized).WithError(err.Error())))
	case errors.Is(err, domain.ErrUnknownTab):
		return errors.Join(err, ht.respond(r.Context(), w, next, NewJSONRenderer(w, http.StatusBadRequest).WithError(err.Error())))
	case err != nil:
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return fmt.Errorf("select tab: %w", err)
	}

	return ht.respond(r.Context(), w, next, NewJSONRenderer(w, http.StatusOK))
}

// HandleLogout ends the caller's session and issues a fresh one.
func (ht *HTTPTransport) HandleLogout(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogout(w, r)
}

func (ht *HTTPTransport) handleLogout(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "logout request failed", "error", err)
		} else {
			log.DebugContext(ctx, "logout request handled")
		}
	}(r.Context())

	s, err := ht.session(w, r)
	if err != nil {
		return err
	}

	if err := ht.sessions.Delete(r.Context(), s.ID); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return fmt.Errorf("delete session: %w", err)
	}

	next := ht.gate.Logout(r.Context(), s)

	return ht.respond(http_.WithSession(r.Context(), next), w, next, NewJSONRenderer(w, http.StatusOK))
}

func (ht *HTTPTransport) session(w http.ResponseWriter, r *http.Request) (domain.Session, error) {
	s, ok := context_.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return domain.Session{}, ErrNoSession
	}

	return s, nil
}

// save stores s and points the session cookie at it. It must run before the body is written.
func (ht *HTTPTransport) save(ctx context.Context, w http.ResponseWriter, s domain.Session) error {
	if err := ht.sessions.Save(ctx, s); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return fmt.Errorf("save session: %w", err)
	}

	http_.SetSessionCookie(w, ht.cfg.Cookie, s.ID)

	return nil
}

// respond saves s and renders its view.
func (ht *HTTPTransport) respond(ctx context.Context, w http.ResponseWriter, s domain.Session, renderer *JSONRenderer) error {
	if err := ht.save(ctx, w, s); err != nil {
		return err
	}

	if err := ht.gate.Render(ctx, s, renderer); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	return nil
}
