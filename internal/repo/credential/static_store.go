package credential

import (
	"context"

	"github.com/nofilahm/salesdash/internal/domain"
)

// StaticStore holds plaintext credentials in memory. It is fixed at construction.
type StaticStore struct {
	users map[string]string
}

var _ Store = (*StaticStore)(nil)

// NewStaticStore creates a StaticStore from the given credentials.
func NewStaticStore(creds []domain.Credential) (*StaticStore, error) {
	if err := validate(creds); err != nil {
		return nil, err
	}

	users := make(map[string]string, len(creds))
	for _, cred := range creds {
		users[cred.Username] = cred.Password
	}

	return &StaticStore{users: users}, nil
}

// Authenticate implements Store.Authenticate.
func (s *StaticStore) Authenticate(_ context.Context, username, password string) (bool, error) {
	stored, ok := s.users[username]

	return ok && stored == password, nil
}

// Close implements Store.Close.
func (s *StaticStore) Close() error {
	return nil
}
