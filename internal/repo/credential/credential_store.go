package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nofilahm/salesdash/internal/domain"
)

// Backends accepted by CredentialStoreConfig.Backend.
const (
	BackendStatic = "static"
	BackendSQLite = "sqlite"
)

// ErrUnknownBackend is returned for an unsupported CredentialStoreConfig.Backend.
var ErrUnknownBackend = errors.New("unknown credential backend")

// Store answers whether a username/password pair is valid.
type Store interface {
	// Authenticate returns true iff username is known and password matches it exactly.
	// Unknown users and wrong passwords both yield false with a nil error;
	// the error is reserved for backend failures.
	Authenticate(ctx context.Context, username, password string) (bool, error)

	// Close releases any resources held by the store.
	Close() error
}

// StoreFactory creates a Store. Returns an error if initialization fails.
type StoreFactory func(ctx context.Context) (Store, error)

// CredentialStoreConfig selects and seeds the credential store.
type CredentialStoreConfig struct {
	// Backend is "static" (in-memory map) or "sqlite" (hashed passwords in a database)
	Backend string `env:"BACKEND" default:"static"`

	// Users is a comma separated list of username:password pairs
	Users string `env:"USERS" default:"nofil:12345,admin:admin123"`

	// File optionally names a YAML/JSON/TOML file with a "users" list; it replaces Users when set
	File string `env:"FILE" default:""`

	// DatabasePath is the SQLite database file used by the sqlite backend
	DatabasePath string `env:"DATABASE_PATH" default:"var/storage/credentials.db"`
}

// StoreFactoryFromConfig returns a StoreFactory building the configured backend.
func StoreFactoryFromConfig(cfg CredentialStoreConfig) StoreFactory {
	return func(ctx context.Context) (Store, error) {
		creds, err := cfg.credentials()
		if err != nil {
			return nil, err
		}

		switch strings.ToLower(cfg.Backend) {
		case "", BackendStatic:
			return NewStaticStore(creds)
		case BackendSQLite:
			return NewSQLiteStore(ctx, cfg, creds)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
		}
	}
}

func (cfg CredentialStoreConfig) credentials() ([]domain.Credential, error) {
	if cfg.File != "" {
		creds, err := LoadFile(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("load credential file: %w", err)
		}

		return creds, nil
	}

	creds, err := ParseUsers(cfg.Users)
	if err != nil {
		return nil, fmt.Errorf("parse users: %w", err)
	}

	return creds, nil
}

// ParseUsers parses "alice:secret,bob:hunter2". Passwords may contain ':'.
// Blank entries are ignored; duplicate usernames are rejected.
func ParseUsers(users string) ([]domain.Credential, error) {
	var creds []domain.Credential

	for _, entry := range strings.Split(users, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		username, password, ok := strings.Cut(entry, ":")
		if !ok || username == "" {
			return nil, fmt.Errorf("%w: malformed entry %q", ErrInvalidCredentialSet, entry)
		}

		creds = append(creds, domain.Credential{Username: username, Password: password})
	}

	if err := validate(creds); err != nil {
		return nil, err
	}

	return creds, nil
}

// ErrInvalidCredentialSet is returned for credential configuration that cannot be used.
var ErrInvalidCredentialSet = errors.New("invalid credential set")

func validate(creds []domain.Credential) error {
	seen := make(map[string]struct{}, len(creds))

	for _, cred := range creds {
		if cred.Username == "" {
			return fmt.Errorf("%w: empty username", ErrInvalidCredentialSet)
		}

		if _, dup := seen[cred.Username]; dup {
			return fmt.Errorf("%w: %w: %s", ErrInvalidCredentialSet, domain.ErrDuplicateUsername, cred.Username)
		}

		seen[cred.Username] = struct{}{}
	}

	return nil
}
