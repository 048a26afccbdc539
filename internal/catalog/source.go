// internal/catalog/source.go
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"motor-picker/internal/common/logger"
	"motor-picker/internal/common/metrics"
	"motor-picker/internal/models"

	"github.com/redis/go-redis/v9"
)

// Source produces a validated catalog.
type Source interface {
	Name() string
	Load(ctx context.Context) (*Catalog, error)
}

const snapshotKeyPrefix = "motor-picker:catalog:"

type snapshot struct {
	Version string             `json:"version"`
	Motors  []models.MotorSpec `json:"motors"`
}

// CachedSource keeps a snapshot of another source's catalog in redis. Only
// the catalog is cached; match results are always computed fresh. Redis
// failures degrade to loading from the wrapped source.
type CachedSource struct {
	inner  Source
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedSource(inner Source, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedSource {
	return &CachedSource{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "catalog-cache", "source": inner.Name()}),
	}
}

func (s *CachedSource) Name() string { return s.inner.Name() + "+redis" }

func (s *CachedSource) key() string { return snapshotKeyPrefix + s.inner.Name() }

func (s *CachedSource) Load(ctx context.Context) (*Catalog, error) {
	if cat, ok := s.fromCache(ctx); ok {
		return cat, nil
	}

	cat, err := s.inner.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, cat)
	return cat, nil
}

func (s *CachedSource) fromCache(ctx context.Context) (*Catalog, bool) {
	raw, err := s.client.Get(ctx, s.key()).Result()
	if errors.Is(err, redis.Nil) {
		metrics.CatalogCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		metrics.CatalogCacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("catalog cache read failed", map[string]interface{}{"error": err})
		return nil, false
	}

	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		metrics.CatalogCacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("discarding unreadable catalog snapshot", map[string]interface{}{"error": err})
		return nil, false
	}
	cat, err := New(snap.Motors)
	if err != nil || cat.Version() != snap.Version {
		metrics.CatalogCacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("discarding inconsistent catalog snapshot", map[string]interface{}{
			"snapshotVersion": snap.Version,
		})
		return nil, false
	}

	metrics.CatalogCacheLookups.WithLabelValues("hit").Inc()
	s.logger.Debug("catalog served from cache", map[string]interface{}{
		"version": cat.Version(),
		"entries": cat.Len(),
	})
	return cat, true
}

func (s *CachedSource) store(ctx context.Context, cat *Catalog) {
	data, err := json.Marshal(snapshot{Version: cat.Version(), Motors: cat.motors})
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, s.key(), data, s.ttl).Err(); err != nil {
		s.logger.Warn("catalog cache write failed", map[string]interface{}{"error": err})
	}
}

// Invalidate drops the cached snapshot so the next Load reaches the source.
func (s *CachedSource) Invalidate(ctx context.Context) error {
	return s.client.Del(ctx, s.key()).Err()
}
