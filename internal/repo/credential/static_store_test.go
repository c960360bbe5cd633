package credential_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nofilahm/salesdash/internal/domain"
	. "github.com/nofilahm/salesdash/internal/repo/credential"
)

func TestStaticStore_Authenticate(t *testing.T) {
	t.Parallel()

	store, err := NewStaticStore([]domain.Credential{{Username: "admin", Password: "admin123"}})
	if err != nil {
		t.Fatalf("NewStaticStore() error = %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		want     bool
	}{
		{name: "exact pair", username: "admin", password: "admin123", want: true},
		{name: "wrong password", username: "admin", password: "wrong", want: false},
		{name: "unknown user", username: "ghost", password: "x", want: false},
		{name: "username is case-sensitive", username: "Admin", password: "admin123", want: false},
		{name: "password is case-sensitive", username: "admin", password: "ADMIN123", want: false},
		{name: "empty password", username: "admin", password: "", want: false},
		{name: "empty pair", username: "", password: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := store.Authenticate(context.Background(), tt.username, tt.password)
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}

			if got != tt.want {
				t.Errorf("Authenticate(%q, %q) = %v, want %v", tt.username, tt.password, got, tt.want)
			}
		})
	}
}

func TestStaticStore_RejectsDuplicates(t *testing.T) {
	t.Parallel()

	_, err := NewStaticStore([]domain.Credential{
		{Username: "admin", Password: "a"},
		{Username: "admin", Password: "b"},
	})
	if !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Errorf("NewStaticStore() error = %v, want %v", err, domain.ErrDuplicateUsername)
	}
}

func TestParseUsers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		users   string
		want    []domain.Credential
		wantErr error
	}{
		{
			name:  "default users",
			users: "nofil:12345,admin:admin123",
			want:  []domain.Credential{
				{Username: "nofil", Password: "12345"},
				{Username: "admin", Password: "admin123"},
			},
		},
		{
			name:  "password containing colon and surrounding blanks",
			users: " ops:a:b , ",
			want:  []domain.Credential{{Username: "ops", Password: "a:b"}},
		},
		{
			name:  "empty list",
			users: "",
			want:  nil,
		},
		{
			name:    "missing separator",
			users:   "admin",
			wantErr: ErrInvalidCredentialSet,
		},
		{
			name:    "duplicate username",
			users:   "admin:a,admin:b",
			wantErr: domain.ErrDuplicateUsername,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseUsers(tt.users)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseUsers() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("ParseUsers() error = %v", err)
			}

			if len(got) != len(tt.want) {
				t.Fatalf("ParseUsers() = %v, want %v", got, tt.want)
			}

			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseUsers()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	files := map[string]string{
		"users.yaml": "users:\n  - username: Admin\n    password: Secret1\n  - username: nofil\n    password: \"12345\"\n",
		"users.json": `{"users":[{"username":"Admin","password":"Secret1"},{"username":"nofil","password":"12345"}]}`,
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
				t.Fatalf("write file: %v", err)
			}

			creds, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}

			want := []domain.Credential{
				{Username: "Admin", Password: "Secret1"},
				{Username: "nofil", Password: "12345"},
			}

			if len(creds) != len(want) {
				t.Fatalf("LoadFile() = %v, want %v", creds, want)
			}

			for i := range want {
				if creds[i] != want[i] {
					t.Errorf("LoadFile()[%d] = %v, want %v", i, creds[i], want[i])
				}
			}
		})
	}
}

func TestStoreFactoryFromConfig(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	store, err := StoreFactoryFromConfig(CredentialStoreConfig{
		Backend: BackendStatic,
		Users:   "nofil:12345,admin:admin123",
	})(ctx)
	if err != nil {
		t.Fatalf("factory error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if ok, _ := store.Authenticate(ctx, "nofil", "12345"); !ok {
		t.Error("expected nofil to authenticate")
	}

	_, err = StoreFactoryFromConfig(CredentialStoreConfig{Backend: "ldap"})(ctx)
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("factory error = %v, want %v", err, ErrUnknownBackend)
	}
}
