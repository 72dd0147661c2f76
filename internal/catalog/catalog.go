// Package catalog serves the lesson archive from the JSON artifact the
// nightly fetch job writes to disk.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/allegro/bigcache/v3"
	"go.uber.org/zap"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/domain"
)

const cacheKey = "archive"

// ErrUnavailable signals that neither the cache file nor the mock
// fallback could be read. The fetch job has not produced an artifact yet.
var ErrUnavailable = errors.New("catalog artifact unavailable")

// Service reads the catalog artifact and memoizes the parsed result so a
// page full of clients does not hammer the filesystem. Entries expire on
// the reload interval, picking up fresh artifacts without a restart.
type Service struct {
	path     string
	mockPath string
	cache    *bigcache.BigCache
	logger   *zap.Logger
}

// NewService constructs the catalog service. reload bounds how stale a
// served catalog may be relative to the artifact on disk.
func NewService(path, mockPath string, reload time.Duration, log *zap.Logger) (*Service, error) {
	if path == "" {
		return nil, errors.New("catalog: cache file path is required")
	}
	if reload <= 0 {
		reload = time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}

	cache, err := bigcache.New(context.Background(), bigcache.DefaultConfig(reload))
	if err != nil {
		return nil, fmt.Errorf("catalog: init cache: %w", err)
	}

	return &Service{
		path:     path,
		mockPath: mockPath,
		cache:    cache,
		logger:   log,
	}, nil
}

// Catalog returns the parsed archive, from memory when fresh enough.
func (s *Service) Catalog(ctx context.Context) (*domain.Catalog, error) {
	if raw, err := s.cache.Get(cacheKey); err == nil {
		return decode(raw)
	}

	raw, err := s.loadArtifact()
	if err != nil {
		return nil, err
	}

	catalog, err := decode(raw)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(cacheKey, raw); err != nil {
		s.logger.Warn("catalog cache set failed", zap.Error(err))
	}

	return catalog, nil
}

// Stats aggregates the numbers shown on the archive landing page.
func (s *Service) Stats(ctx context.Context) (domain.CatalogStats, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return domain.CatalogStats{}, err
	}

	stats := domain.CatalogStats{
		TotalVideos: catalog.TotalVideos,
		LastUpdated: catalog.LastUpdated,
	}

	totalSeconds := 0
	var first, last string
	for _, v := range catalog.Videos {
		totalSeconds += v.DurationSeconds
		if v.PublishedAt == "" {
			continue
		}
		if first == "" || v.PublishedAt < first {
			first = v.PublishedAt
		}
		if last == "" || v.PublishedAt > last {
			last = v.PublishedAt
		}
	}

	stats.TotalHours = totalSeconds / 3600
	if first != "" {
		stats.FirstVideoDate = &first
	}
	if last != "" {
		stats.LastVideoDate = &last
	}

	return stats, nil
}

// loadArtifact reads the primary artifact and falls back to the mock
// file kept for local development and cold deploys.
func (s *Service) loadArtifact() ([]byte, error) {
	raw, err := os.ReadFile(s.path)
	if err == nil {
		return raw, nil
	}

	primaryErr := err
	if s.mockPath != "" {
		if raw, err := os.ReadFile(s.mockPath); err == nil {
			s.logger.Warn("serving mock catalog artifact",
				zap.String("path", s.mockPath),
				zap.Error(primaryErr),
			)
			return raw, nil
		}
	}

	s.logger.Error("catalog artifact missing", zap.String("path", s.path), zap.Error(primaryErr))
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, primaryErr)
}

func decode(raw []byte) (*domain.Catalog, error) {
	var catalog domain.Catalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("catalog: decode artifact: %w", err)
	}

	if catalog.TotalVideos == 0 {
		catalog.TotalVideos = len(catalog.Videos)
	}

	return &catalog, nil
}
