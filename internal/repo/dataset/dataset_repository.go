package dataset

import (
	"context"

	"github.com/nofilahm/salesdash/internal/domain"
)

// Repository loads cleaned order datasets.
type Repository interface {
	// Load reads, cleans and returns the dataset stored at source.
	// On failure it returns a *domain.LoadError together with the
	// domain.NewUnavailableDataset marker, never a nil dataset.
	Load(ctx context.Context, source string) (*domain.Dataset, error)
}
