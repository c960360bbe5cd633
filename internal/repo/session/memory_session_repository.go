package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nofilahm/salesdash/internal/domain"
	"github.com/nofilahm/salesdash/internal/infra/logging"
)

// MemorySessionRepositoryConfig holds configuration for the in-memory session repository.
type MemorySessionRepositoryConfig struct {
	// TTL is the idle time after which a session is discarded; 0 keeps sessions forever
	TTL time.Duration `env:"TTL" default:"30m"`
	// SweepInterval is how often expired sessions are purged in the background
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" default:"1m"`
}

// MemoryRepository keeps sessions in process memory. Sessions do not survive a restart.
type MemoryRepository struct {
	cfg      MemorySessionRepositoryConfig
	log      logging.Logger
	now      func() time.Time
	m        sync.Mutex
	sessions map[domain.SessionID]domain.Session
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository(cfg MemorySessionRepositoryConfig) *MemoryRepository {
	return &MemoryRepository{
		cfg:      cfg,
		log:      logging.GetLogger("repo.session.memory_repository"),
		now:      time.Now,
		sessions: make(map[domain.SessionID]domain.Session),
	}
}

// WithClock replaces the time source. Intended for tests.
func (r *MemoryRepository) WithClock(now func() time.Time) *MemoryRepository {
	r.now = now

	return r
}

// Get implements Repository.Get. Expired sessions are removed on access.
func (r *MemoryRepository) Get(ctx context.Context, id domain.SessionID) (domain.Session, error) {
	r.m.Lock()
	defer r.m.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return domain.Session{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}

	if s.Expired(r.now(), r.cfg.TTL) {
		delete(r.sessions, id)
		r.log.DebugContext(ctx, "session expired", logging.Group("session", "id", id, "lastSeen", s.LastSeenAt))

		return domain.Session{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}

	return s, nil
}

// Save implements Repository.Save and refreshes LastSeenAt.
func (r *MemoryRepository) Save(_ context.Context, s domain.Session) error {
	r.m.Lock()
	defer r.m.Unlock()

	s.LastSeenAt = r.now()
	r.sessions[s.ID] = s

	return nil
}

// Delete implements Repository.Delete.
func (r *MemoryRepository) Delete(_ context.Context, id domain.SessionID) error {
	r.m.Lock()
	defer r.m.Unlock()

	delete(r.sessions, id)

	return nil
}

// Sweep removes all expired sessions and returns how many were removed.
func (r *MemoryRepository) Sweep(ctx context.Context) int {
	r.m.Lock()
	defer r.m.Unlock()

	now := r.now()
	removed := 0

	for id, s := range r.sessions {
		if s.Expired(now, r.cfg.TTL) {
			delete(r.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		r.log.DebugContext(ctx, "sessions swept", "removed", removed, "remaining", len(r.sessions))
	}

	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *MemoryRepository) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}
