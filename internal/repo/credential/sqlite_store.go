package credential

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/nofilahm/salesdash/internal/domain"
	"github.com/nofilahm/salesdash/internal/infra/logging"
)

// SQLiteStore keeps sha256 password digests in a SQLite table.
// The table is (re)seeded from configuration on startup.
type SQLiteStore struct {
	db        *sql.DB
	log       logging.Logger
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens the database at cfg.DatabasePath, creates the schema if
// needed and replaces the stored credentials with the given ones.
func NewSQLiteStore(ctx context.Context, cfg CredentialStoreConfig, seed []domain.Credential) (*SQLiteStore, error) {
	log := logging.GetLogger("repo.credential.sqlite_store").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

	if err := validate(seed); err != nil {
		return nil, err
	}

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir all: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()

		return nil, fmt.Errorf("ping db: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()

		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if err := initializeDB(ctx, db); err != nil {
		db.Close()

		return nil, fmt.Errorf("initialize db: %w", err)
	}

	store := &SQLiteStore{
		db:        db,
		log:       log,
		writeLock: new(sync.Mutex),
	}

	if err := store.seed(ctx, seed); err != nil {
		db.Close()

		return nil, fmt.Errorf("seed credentials: %w", err)
	}

	log.DebugContext(ctx, "credential store ready", "users", len(seed))

	return store, nil
}

func initializeDB(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS credentials (
			username      TEXT    PRIMARY KEY,
			password_hash BLOB    NOT NULL,
			updated_at    INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

func (s *SQLiteStore) seed(ctx context.Context, creds []domain.Credential) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// the configured set replaces whatever an earlier run stored
	if _, err := tx.ExecContext(ctx, `DELETE FROM credentials`); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}

	now := time.Now().Unix()

	for _, cred := range creds {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO credentials (username, password_hash, updated_at) VALUES (?, ?, ?)`,
			cred.Username,
			hashPassword(cred.Password),
			now,
		); err != nil {
			return fmt.Errorf("insert %s: %w", cred.Username, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// Authenticate implements Store.Authenticate.
func (s *SQLiteStore) Authenticate(ctx context.Context, username, password string) (ok bool, err error) {
	defer func() {
		if err != nil {
			s.log.ErrorContext(ctx, "authenticate failed", "error", err)
		}
	}()

	var passwordHash []byte

	err = s.db.QueryRowContext(ctx,
		"SELECT password_hash FROM credentials WHERE username = ?",
		username,
	).Scan(&passwordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("query credential: %w", err)
	}

	return hmac.Equal(hashPassword(password), passwordHash), nil
}

// Close implements Store.Close by closing the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}

func hashPassword(password string) []byte {
	sum := sha256.Sum256([]byte(password))

	return sum[:]
}
