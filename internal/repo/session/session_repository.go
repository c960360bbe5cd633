package session

import (
	"context"

	"github.com/google/uuid"

	"github.com/nofilahm/salesdash/internal/domain"
)

// Repository stores one Session per browsing session id.
type Repository interface {
	// Get returns the session with the given id.
	// Returns domain.ErrSessionNotFound if it is unknown or has expired.
	Get(ctx context.Context, id domain.SessionID) (domain.Session, error)

	// Save stores s under s.ID, replacing any previous value.
	Save(ctx context.Context, s domain.Session) error

	// Delete removes the session with the given id. Unknown ids are ignored.
	Delete(ctx context.Context, id domain.SessionID) error
}

// NewID returns a fresh random session id.
func NewID() domain.SessionID {
	return domain.SessionID(uuid.NewString())
}

// ParseID validates an id received from a client, e.g. a cookie value.
func ParseID(raw string) (domain.SessionID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}

	return domain.SessionID(id.String()), true
}
