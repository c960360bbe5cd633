package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/nofilahm/salesdash/internal/domain"
	context_ "github.com/nofilahm/salesdash/internal/infra/context"
	"github.com/nofilahm/salesdash/internal/infra/logging"
	"github.com/nofilahm/salesdash/internal/repo/session"
)

// SessionCookieConfig contains configuration parameters for the session cookie.
type SessionCookieConfig struct {
	// Name is the cookie carrying the session id
	Name string `env:"NAME" default:"dashboard_session"`
	// Secure restricts the cookie to HTTPS
	Secure bool `env:"SECURE" default:"false"`
}

// SessionMiddleware creates middleware that resolves the session cookie.
// Unknown, malformed or expired session ids are replaced by newSession().
// The session, its id and the logged in username are added to the request context.
func SessionMiddleware(
	next http.Handler,
	sessions session.Repository,
	newSession func() domain.Session,
	cfg SessionCookieConfig,
	log logging.Logger,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := lookupSession(r, sessions, cfg)
		if errors.Is(err, domain.ErrSessionNotFound) {
			s = newSession()
		} else if err != nil {
			log.ErrorContext(r.Context(), "load session failed", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

func lookupSession(r *http.Request, sessions session.Repository, cfg SessionCookieConfig) (domain.Session, error) {
	cookie, err := r.Cookie(cfg.Name)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: no cookie", domain.ErrSessionNotFound)
	}

	id, ok := session.ParseID(cookie.Value)
	if !ok {
		return domain.Session{}, fmt.Errorf("%w: malformed id", domain.ErrSessionNotFound)
	}

	s, err := sessions.Get(r.Context(), id)
	if err != nil {
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}

	return s, nil
}

// WithSession returns a context carrying s, its id and username.
func WithSession(ctx context.Context, s domain.Session) context.Context {
	ctx = context_.WithSessionID(ctx, string(s.ID))
	ctx = context_.WithUsername(ctx, s.Username)

	return context_.WithSession(ctx, s)
}

// SetSessionCookie writes the cookie that identifies s on subsequent requests.
func SetSessionCookie(w http.ResponseWriter, cfg SessionCookieConfig, id domain.SessionID) {
	//nolint:exhaustruct
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    string(id),
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
