package credential

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/nofilahm/salesdash/internal/domain"
)

// LoadFile reads credentials from a YAML, JSON or TOML file shaped like
//
//	users:
//	  - username: admin
//	    password: admin123
//
// The format is chosen from the file extension. Usernames are kept as list
// values, never as map keys, so their case survives decoding.
func LoadFile(path string) ([]domain.Credential, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var creds []domain.Credential
	if err := v.UnmarshalKey("users", &creds); err != nil {
		return nil, fmt.Errorf("unmarshal users: %w", err)
	}

	if err := validate(creds); err != nil {
		return nil, err
	}

	return creds, nil
}
