package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nofilahm/salesdash/internal/domain"
	"github.com/nofilahm/salesdash/internal/infra/logging"
)

// FileDatasetRepositoryConfig holds configuration for the file-backed dataset repository.
type FileDatasetRepositoryConfig struct {
	// Delimiter separates fields of .csv and .txt sources; `\t` selects tab
	Delimiter string `env:"DELIMITER" default:","`
	// Sheet names the worksheet read from .xlsx sources; empty selects the first one
	Sheet string `env:"SHEET" default:""`
}

// CacheStats is a snapshot of the repository cache counters.
type CacheStats struct {
	Entries     int    // Cached datasets
	Hits        uint64 // Loads answered from an unchanged file stat
	Revalidated uint64 // Loads whose stat changed but whose content fingerprint did not
	Parsed      uint64 // Loads that read and cleaned the source
}

type cacheEntry struct {
	size    int64
	modTime time.Time
	dataset *domain.Dataset
}

func (e *cacheEntry) matches(info os.FileInfo) bool {
	return e.size == info.Size() && e.modTime.Equal(info.ModTime())
}

// FileRepository loads datasets from local files and caches them by absolute path.
// Cached datasets are shared between callers and must be treated as read-only.
type FileRepository struct {
	cfg   FileDatasetRepositoryConfig
	log   logging.Logger
	m     sync.RWMutex
	group singleflight.Group

	entries map[string]*cacheEntry

	hits        atomic.Uint64
	revalidated atomic.Uint64
	parsed      atomic.Uint64
}

var _ Repository = (*FileRepository)(nil)

// NewFileRepository creates a FileRepository with an empty cache.
func NewFileRepository(cfg FileDatasetRepositoryConfig) *FileRepository {
	return &FileRepository{
		cfg:     cfg,
		log:     logging.GetLogger("repo.dataset.file_repository"),
		entries: make(map[string]*cacheEntry),
	}
}

// Load implements Repository.Load.
func (r *FileRepository) Load(ctx context.Context, source string) (ds *domain.Dataset, err error) {
	log := r.log.With(logging.Group("dataset", "source", source))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "failed to load dataset", "error", err)
		} else {
			log.DebugContext(ctx, "dataset loaded",
				logging.Group("dataset", "records", ds.Len(), "dropped", ds.Dropped, "fingerprint", ds.Fingerprint),
			)
		}
	}()

	if err := ctx.Err(); err != nil {
		return unavailable(source, err)
	}

	path, err := filepath.Abs(source)
	if err != nil {
		return unavailable(source, fmt.Errorf("resolve path: %w", err))
	}

	info, err := os.Stat(path)
	if err != nil {
		return unavailable(source, err)
	}

	if info.IsDir() {
		return unavailable(source, fmt.Errorf("%w: %s is a directory", ErrUnsupportedFormat, path))
	}

	if entry, ok := r.lookup(path); ok && entry.matches(info) {
		r.hits.Add(1)

		return entry.dataset, nil
	}

	value, err, _ := r.group.Do(path, func() (any, error) {
		return r.reload(path, info)
	})
	if err != nil {
		return unavailable(source, err)
	}

	ds, _ = value.(*domain.Dataset)

	return ds, nil
}

// Invalidate drops the cached dataset for source, if any.
func (r *FileRepository) Invalidate(source string) {
	path, err := filepath.Abs(source)
	if err != nil {
		path = source
	}

	r.m.Lock()
	defer r.m.Unlock()

	delete(r.entries, path)
}

// Purge drops every cached dataset.
func (r *FileRepository) Purge() {
	r.m.Lock()
	defer r.m.Unlock()

	clear(r.entries)
}

// Stats returns the current cache counters.
func (r *FileRepository) Stats() CacheStats {
	r.m.RLock()
	entries := len(r.entries)
	r.m.RUnlock()

	return CacheStats{
		Entries:     entries,
		Hits:        r.hits.Load(),
		Revalidated: r.revalidated.Load(),
		Parsed:      r.parsed.Load(),
	}
}

func (r *FileRepository) lookup(path string) (*cacheEntry, bool) {
	r.m.RLock()
	defer r.m.RUnlock()

	entry, ok := r.entries[path]

	return entry, ok
}

func (r *FileRepository) store(path string, entry *cacheEntry) {
	r.m.Lock()
	defer r.m.Unlock()

	r.entries[path] = entry
}

func (r *FileRepository) reload(path string, info os.FileInfo) (*domain.Dataset, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	sum := sha256.Sum256(content)
	fingerprint := hex.EncodeToString(sum[:])

	if entry, ok := r.lookup(path); ok && entry.dataset.Fingerprint == fingerprint {
		r.revalidated.Add(1)
		r.store(path, &cacheEntry{size: info.Size(), modTime: info.ModTime(), dataset: entry.dataset})

		return entry.dataset, nil
	}

	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}

	tbl, err := readTable(content, format, r.cfg)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", format, err)
	}

	out, err := clean(tbl)
	if err != nil {
		return nil, err
	}

	ds := &domain.Dataset{
		Source:      path,
		Fingerprint: fingerprint,
		Columns:     out.columns,
		Records:     out.records,
		Dropped:     out.dropped,
	}

	r.parsed.Add(1)
	r.store(path, &cacheEntry{size: info.Size(), modTime: info.ModTime(), dataset: ds})

	return ds, nil
}

func unavailable(source string, err error) (*domain.Dataset, error) {
	return domain.NewUnavailableDataset(source), &domain.LoadError{Path: source, Err: err}
}
