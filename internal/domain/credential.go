package domain

import "errors"

var (
	// ErrInvalidCredentials is returned when the username/password combination is incorrect.
	// Unknown usernames and wrong passwords are reported identically.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrDuplicateUsername is returned when a credential set names the same user twice.
	ErrDuplicateUsername = errors.New("duplicate username")
)

// Credential is a username/password pair known to the credential store.
type Credential struct {
	Username string `mapstructure:"username"` // Login username, case-sensitive
	Password string `mapstructure:"password"` // Plaintext password as configured
}
