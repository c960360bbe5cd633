package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nofilahm/salesdash/internal/domain"
	context_ "github.com/nofilahm/salesdash/internal/infra/context"
	"github.com/nofilahm/salesdash/internal/infra/logging"
	. "github.com/nofilahm/salesdash/internal/infra/transport/http"
	"github.com/nofilahm/salesdash/internal/repo/session"
)

func TestTracingMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
	}{
		{name: "generated", header: ""},
		{name: "propagated", header: "req-42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var seen string

			handler := TracingMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				seen, _ = context_.TraceIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(TraceIDHeader, tt.header)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if seen == "" {
				t.Fatal("no trace id in context")
			}

			if tt.header != "" && seen != tt.header {
				t.Errorf("trace id = %q, want %q", seen, tt.header)
			}

			if got := rec.Header().Get(TraceIDHeader); got != seen {
				t.Errorf("response header = %q, want %q", got, seen)
			}
		})
	}
}

func TestRescueingMiddleware(t *testing.T) {
	t.Parallel()

	handler := RescueingMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), logging.NewNopLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestLoggingMiddlewareRecordsStatus(t *testing.T) {
	t.Parallel()

	var rec *StatusRecorder

	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		rec, _ = w.(*StatusRecorder)

		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("short and stout"))
	}), logging.NewNopLogger())

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if rec == nil {
		t.Fatal("handler did not receive a StatusRecorder")
	}

	if rec.StatusCode != http.StatusTeapot || rec.BytesSent != len("short and stout") {
		t.Errorf("recorded %d/%d bytes", rec.StatusCode, rec.BytesSent)
	}
}

func TestSessionMiddleware(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := SessionCookieConfig{Name: "dashboard_session"}
	sessions := session.NewMemoryRepository(session.MemorySessionRepositoryConfig{TTL: time.Hour})

	stored := domain.NewSession(session.NewID(), time.Now())
	stored.LoggedIn = true
	stored.Username = "admin"
	stored.CurrentTab = domain.TabCustomer

	if err := sessions.Save(ctx, stored); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	fresh := domain.NewSession(session.NewID(), time.Now())

	tests := []struct {
		name   string
		cookie string
		want   domain.SessionID
		user   string
	}{
		{name: "no cookie", want: fresh.ID},
		{name: "malformed cookie", cookie: "../../etc/passwd", want: fresh.ID},
		{name: "unknown session", cookie: string(session.NewID()), want: fresh.ID},
		{name: "known session", cookie: string(stored.ID), want: stored.ID, user: "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var (
				got  domain.Session
				user string
			)

			handler := SessionMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got, _ = context_.SessionFromContext(r.Context())
				user, _ = context_.UsernameFromContext(r.Context())
			}), sessions, func() domain.Session { return fresh }, cfg, logging.NewNopLogger())

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: cfg.Name, Value: tt.cookie})
			}

			handler.ServeHTTP(httptest.NewRecorder(), req)

			if got.ID != tt.want {
				t.Errorf("session id = %q, want %q", got.ID, tt.want)
			}

			if user != tt.user {
				t.Errorf("username = %q, want %q", user, tt.user)
			}
		})
	}
}

func TestSetSessionCookie(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	SetSessionCookie(rec, SessionCookieConfig{Name: "dashboard_session"}, "abc")

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %v, want one", cookies)
	}

	c := cookies[0]
	if c.Name != "dashboard_session" || c.Value != "abc" || !c.HttpOnly || c.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie = %+v", c)
	}
}
