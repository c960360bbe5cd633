package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrUnknownTab is returned when navigating to a tab that does not exist.
	ErrUnknownTab = errors.New("unknown tab")
	// ErrNotLoggedIn is returned when a dashboard event arrives for a logged out session.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrInvalidTransition is returned when an event is not accepted in the session's current state.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrSessionNotFound is returned when a session id is unknown or expired.
	ErrSessionNotFound = errors.New("session not found")
)

// Tab identifies a dashboard view.
type Tab string

const (
	TabSales    Tab = "sales"
	TabCustomer Tab = "customer"
	TabProduct  Tab = "product"
)

// DefaultTab is the tab shown right after login and after any reset.
const DefaultTab = TabSales

// Tabs returns all dashboard tabs in navigation order.
func Tabs() []Tab {
	return []Tab{TabSales, TabCustomer, TabProduct}
}

// ParseTab resolves a tab name case-insensitively ("Sales", "sales").
func ParseTab(name string) (Tab, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	for _, tab := range Tabs() {
		if string(tab) == name {
			return tab, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownTab, name)
}

// Title returns the display name of the tab.
func (t Tab) Title() string {
	if t == "" {
		return ""
	}

	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// SessionID identifies one browsing session.
type SessionID string

// Session is the per-browser navigation and login state.
// Username is non-empty iff LoggedIn is true.
type Session struct {
	ID         SessionID
	LoggedIn   bool
	Username   string
	CurrentTab Tab
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// NewSession returns a logged out session on the default tab.
func NewSession(id SessionID, now time.Time) Session {
	return Session{
		ID:         id,
		LoggedIn:   false,
		Username:   "",
		CurrentTab: DefaultTab,
		CreatedAt:  now,
		LastSeenAt: now,
	}
}

// Valid reports whether the session satisfies its invariants.
func (s Session) Valid() bool {
	if s.LoggedIn != (s.Username != "") {
		return false
	}

	_, err := ParseTab(string(s.CurrentTab))

	return err == nil
}

// Expired reports whether the session has been idle for longer than ttl.
// A non-positive ttl never expires.
func (s Session) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}

	return now.Sub(s.LastSeenAt) > ttl
}
