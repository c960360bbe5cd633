package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadDotenv loads variables from the given .env files into the process
// environment. Files that do not exist are skipped; variables that are already
// set are never overridden, so the real environment always wins.
func LoadDotenv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return fmt.Errorf("load %s: %w", path, err)
		}
	}

	return nil
}
