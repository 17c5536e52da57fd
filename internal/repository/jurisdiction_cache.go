package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/nplvision/sol-engine/internal/models"
	appErrors "github.com/nplvision/sol-engine/pkg/errors"
)

const jurisdictionCacheKeyPrefix = "sol:jurisdiction:"

// jurisdictionSource is the uncached read side of the rule store.
type jurisdictionSource interface {
	GetByState(ctx context.Context, stateCode string) (*models.JurisdictionRule, error)
}

// cacheMetrics receives hit/miss observations. Satisfied by the metrics
// service; nil disables observation.
type cacheMetrics interface {
	CacheHit()
	CacheMiss()
}

// CachedJurisdictionStore fronts the jurisdiction repository with a Redis
// cache. Rules change rarely, so entries live until the TTL elapses or an
// administrative correction invalidates them.
type CachedJurisdictionStore struct {
	source  jurisdictionSource
	cache   *CacheRepository
	ttl     time.Duration
	metrics cacheMetrics
	logger  *zap.Logger
}

// NewCachedJurisdictionStore wraps the source with caching.
func NewCachedJurisdictionStore(source jurisdictionSource, cache *CacheRepository, ttl time.Duration, metrics cacheMetrics, logger *zap.Logger) *CachedJurisdictionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedJurisdictionStore{source: source, cache: cache, ttl: ttl, metrics: metrics, logger: logger}
}

// GetByState returns the cached rule, falling back to fetch-and-populate on
// a miss. Unknown jurisdictions are not negatively cached; the miss is rare
// and the error must stay current with corrections.
func (s *CachedJurisdictionStore) GetByState(ctx context.Context, stateCode string) (*models.JurisdictionRule, error) {
	key := jurisdictionCacheKeyPrefix + stateCode

	var cached models.JurisdictionRule
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		if s.metrics != nil {
			s.metrics.CacheHit()
		}
		return &cached, nil
	}
	if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Sugar().Warnw("jurisdiction cache read failed", "state", stateCode, "error", err)
	}
	if s.metrics != nil {
		s.metrics.CacheMiss()
	}

	return s.fetchAndPopulate(ctx, stateCode, key)
}

// Invalidate drops the cached entry for a state after a data correction.
func (s *CachedJurisdictionStore) Invalidate(ctx context.Context, stateCode string) error {
	return s.cache.Delete(ctx, jurisdictionCacheKeyPrefix+stateCode)
}

func (s *CachedJurisdictionStore) fetchAndPopulate(ctx context.Context, stateCode, key string) (*models.JurisdictionRule, error) {
	rule, err := s.source.GetByState(ctx, stateCode)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, rule, s.ttl); err != nil {
		s.logger.Sugar().Warnw("jurisdiction cache write failed", "state", stateCode, "error", err)
	}
	return rule, nil
}
