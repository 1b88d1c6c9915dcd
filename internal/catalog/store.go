package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store owns the error catalog for the lifetime of the process.
//
// The catalog is read from its Source exactly once, even when Load is called
// concurrently. After that the catalog is never mutated, so reads need no locking.
type Store struct {
	source Source
	logger *zap.Logger

	once    sync.Once
	catalog *Catalog
	err     error
}

// NewStore creates a store over source. Nothing is read until Load.
func NewStore(source Source, logger *zap.Logger) (*Store, error) {
	if source == nil {
		return nil, errors.New("catalog source is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{source: source, logger: logger}, nil
}

// Load parses the source on first call and returns the cached result afterwards.
//
// Every call returns the same *Catalog (or the same error). A returned error is a
// *LoadError and matches ErrCatalogLoad.
func (s *Store) Load(ctx context.Context) (*Catalog, error) {
	s.once.Do(func() {
		start := time.Now()
		cat, err := s.source.Read(ctx)
		if err != nil {
			var le *LoadError
			if !errors.As(err, &le) {
				err = &LoadError{Source: s.source.Name(), Err: err}
			}
			s.err = err
			s.logger.Error("catalog load failed",
				zap.String("source", s.source.Name()),
				zap.Error(err))
			return
		}
		s.catalog = cat
		s.logger.Info("catalog loaded",
			zap.String("source", s.source.Name()),
			zap.Int("records", cat.Len()),
			zap.Duration("duration", time.Since(start)))
	})
	return s.catalog, s.err
}

// BySlug returns the record for slug, compared case-insensitively.
// A missing slug, or a catalog that failed to load, reports false.
func (s *Store) BySlug(slug string) (Record, bool) {
	return s.All().Get(strings.ToLower(slug))
}

// All returns the full catalog, loading it if needed.
// A failed load yields an empty catalog; the failure itself is reported by Load.
func (s *Store) All() *Catalog {
	cat, err := s.Load(context.Background())
	if err != nil {
		return &Catalog{}
	}
	return cat
}
