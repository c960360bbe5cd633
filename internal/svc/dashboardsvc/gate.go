package dashboardsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nofilahm/salesdash/internal/domain"
	"github.com/nofilahm/salesdash/internal/infra/logging"
	"github.com/nofilahm/salesdash/internal/repo/credential"
	"github.com/nofilahm/salesdash/internal/repo/dataset"
	"github.com/nofilahm/salesdash/internal/svc/analyticssvc"
)

// Gate is the login and navigation state machine in front of the dashboard.
// It never mutates the Session it is given; every event returns the next Session.
//
//	LoggedOut --login ok--> LoggedIn(DefaultTab)
//	LoggedOut --login bad--> LoggedOut (ErrInvalidCredentials)
//	LoggedIn(t) --select t'--> LoggedIn(t')
//	any --logout--> LoggedOut (fresh session)
type Gate struct {
	cfg       GateConfig
	store     credential.Store
	datasets  dataset.Repository
	analytics analyticssvc.AnalyticsService
	newID     func() domain.SessionID
	now       func() time.Time
	log       logging.Logger
}

// NewGate creates a Gate. Session ids are produced by newID.
func NewGate(
	cfg GateConfig,
	store credential.Store,
	datasets dataset.Repository,
	analytics analyticssvc.AnalyticsService,
	newID func() domain.SessionID,
) *Gate {
	return &Gate{
		cfg:       cfg,
		store:     store,
		datasets:  datasets,
		analytics: analytics,
		newID:     newID,
		now:       time.Now,
		log:       logging.GetLogger("svc.dashboardsvc.gate"),
	}
}

// WithClock replaces the time source. Intended for tests.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now

	return g
}

// NewSession returns a logged out session on the default tab.
func (g *Gate) NewSession() domain.Session {
	return domain.NewSession(g.newID(), g.now())
}

// Login authenticates username and password against the credential store.
// A rejected pair returns s unchanged with domain.ErrInvalidCredentials;
// a session that is already logged in returns domain.ErrInvalidTransition.
func (g *Gate) Login(ctx context.Context, s domain.Session, username, password string) (_ domain.Session, err error) {
	log := g.log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "login rejected", "error", err)
		} else {
			log.InfoContext(ctx, "user logged in")
		}
	}()

	if s.LoggedIn {
		return s, fmt.Errorf("%w: already logged in as %s", domain.ErrInvalidTransition, s.Username)
	}

	ok, err := g.store.Authenticate(ctx, username, password)
	if err != nil {
		return s, fmt.Errorf("authenticate: %w", err)
	}

	if !ok {
		return s, domain.ErrInvalidCredentials
	}

	s.LoggedIn = true
	s.Username = username
	s.CurrentTab = domain.DefaultTab

	return s, nil
}

// SelectTab switches the dashboard to the named tab.
// Returns domain.ErrNotLoggedIn for logged out sessions and domain.ErrUnknownTab for bad names.
func (g *Gate) SelectTab(ctx context.Context, s domain.Session, name string) (_ domain.Session, err error) {
	defer func() {
		if err != nil {
			g.log.WarnContext(ctx, "tab selection rejected", "tab", name, "error", err)
		} else {
			g.log.DebugContext(ctx, "tab selected", "tab", s.CurrentTab)
		}
	}()

	if !s.LoggedIn {
		return s, domain.ErrNotLoggedIn
	}

	tab, err := domain.ParseTab(name)
	if err != nil {
		return s, err
	}

	s.CurrentTab = tab

	return s, nil
}

// Logout returns a fresh logged out session with a new id. Nothing of s is carried over.
func (g *Gate) Logout(ctx context.Context, s domain.Session) domain.Session {
	if s.LoggedIn {
		g.log.InfoContext(ctx, "user logged out", logging.Group("user", "username", s.Username))
	}

	return g.NewSession()
}

// Render presents the view for s: the login form when logged out, otherwise the
// current tab computed from the dataset. Dataset failures render as UnavailableView.
func (g *Gate) Render(ctx context.Context, s domain.Session, r Renderer) (err error) {
	defer func() {
		if err != nil {
			g.log.ErrorContext(ctx, "render failed", "error", err)
		}
	}()

	if !s.LoggedIn {
		if err := r.RenderLogin(ctx, LoginView{Fields: loginFields()}); err != nil {
			return fmt.Errorf("render login: %w", err)
		}

		return nil
	}

	tab := s.CurrentTab
	if _, err := domain.ParseTab(string(tab)); err != nil {
		tab = domain.DefaultTab
	}

	ds, err := g.datasets.Load(ctx, g.cfg.DatasetPath)
	if err != nil {
		view := UnavailableView{
			Username: s.Username,
			Tab:      tab,
			Tabs:     tabLinks(tab),
			Source:   g.cfg.DatasetPath,
			Message:  unavailableMessage(err),
		}

		if err := r.RenderUnavailable(ctx, view); err != nil {
			return fmt.Errorf("render unavailable: %w", err)
		}

		return nil
	}

	view := DashboardView{
		Username: s.Username,
		Tab:      tab,
		Tabs:     tabLinks(tab),
		Records:  ds.Len(),
		Dropped:  ds.Dropped,
	}

	switch tab {
	case domain.TabCustomer:
		customer := g.analytics.CustomerView(ctx, ds)
		view.Customer = &customer
	case domain.TabProduct:
		product := g.analytics.ProductView(ctx, ds)
		view.Product = &product
	default:
		sales := g.analytics.SalesView(ctx, ds)
		view.Sales = &sales
	}

	if err := r.RenderDashboard(ctx, view); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}

	return nil
}

// RenderLoginFailure presents the login form with the generic failure message.
func (g *Gate) RenderLoginFailure(ctx context.Context, r Renderer) error {
	view := LoginView{Fields: loginFields(), Failed: true, Message: LoginFailedMessage}

	if err := r.RenderLogin(ctx, view); err != nil {
		return fmt.Errorf("render login: %w", err)
	}

	return nil
}

func unavailableMessage(err error) string {
	if errors.Is(err, domain.ErrMissingColumn) {
		return "The dataset is missing a required column."
	}

	return "The dataset could not be loaded."
}
