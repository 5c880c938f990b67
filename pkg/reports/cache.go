package reports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/renovapanel/renova/pkg/observability"
)

const statsCacheKey = "dashboard:stats"

// CachedService fronts a Service with a short-TTL Redis cache for the
// dashboard snapshot. A nil Redis client disables caching and every
// call falls through. Sales listings are never cached.
type CachedService struct {
	service Service
	redis   *redis.Client
	ttl     time.Duration
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewCachedService creates a new CachedService
func NewCachedService(service Service, client *redis.Client, ttl time.Duration, logger *observability.Logger, metrics *observability.Metrics) *CachedService {
	return &CachedService{
		service: service,
		redis:   client,
		ttl:     ttl,
		logger:  logger,
		metrics: metrics,
	}
}

// ComputeStats implements Service. Staleness is bounded by the TTL;
// writes do not invalidate the entry.
func (c *CachedService) ComputeStats(ctx context.Context) (*Stats, error) {
	if c.redis == nil {
		return c.service.ComputeStats(ctx)
	}

	cached, err := c.redis.Get(ctx, statsCacheKey).Result()
	if err == nil {
		stats := &Stats{}
		if err := json.Unmarshal([]byte(cached), stats); err == nil {
			c.metrics.StatsCacheHitsTotal.Inc()
			return stats, nil
		}
	}
	c.metrics.StatsCacheMissesTotal.Inc()

	stats, err := c.service.ComputeStats(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(stats); err == nil {
		if err := c.redis.Set(ctx, statsCacheKey, data, c.ttl).Err(); err != nil {
			c.logger.WithError(err).Warn("failed to cache dashboard stats")
		}
	}

	return stats, nil
}

// ListSales implements Service
func (c *CachedService) ListSales(ctx context.Context, filter *SalesFilter) ([]*SaleRecord, error) {
	return c.service.ListSales(ctx, filter)
}
