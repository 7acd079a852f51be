// Package forecastcache holds the most recent forecast bundle per grid cell
// and refreshes it synchronously once the TTL lapses.
package forecastcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/wxgate/wxgate/internal/metrics"
	"github.com/wxgate/wxgate/internal/models"
	"github.com/wxgate/wxgate/internal/nws"
)

// Fetcher is the slice of the agency client the cache refreshes through.
type Fetcher interface {
	Forecast(ctx context.Context, cell models.GridCell, hourly bool) (*nws.ForecastResult, error)
}

// Cache keys bundles by grid cell. A refresh fetches both the hourly and the
// daily product; if either fails the prior entry stays untouched, so callers
// never observe a half-replaced bundle. Concurrent refreshes of one cell cost
// redundant upstream calls, never inconsistent data.
type Cache struct {
	fetcher Fetcher
	clock   clockwork.Clock

	mu      sync.Mutex
	entries map[models.GridCell]models.ForecastBundle
}

func New(fetcher Fetcher) *Cache {
	return NewWithClock(fetcher, clockwork.NewRealClock())
}

// NewWithClock injects the time source, letting tests walk the TTL boundary.
func NewWithClock(fetcher Fetcher, clock clockwork.Clock) *Cache {
	return &Cache{
		fetcher: fetcher,
		clock:   clock,
		entries: make(map[models.GridCell]models.ForecastBundle),
	}
}

// GetOrRefresh returns the cached bundle for a cell, refreshing first when the
// entry is absent or has aged at least ttl (the boundary itself counts as
// stale).
func (c *Cache) GetOrRefresh(ctx context.Context, cell models.GridCell, ttl time.Duration) (models.ForecastBundle, error) {
	now := c.clock.Now()

	c.mu.Lock()
	bundle, ok := c.entries[cell]
	c.mu.Unlock()

	if ok && now.Sub(bundle.CachedAt) < ttl {
		metrics.CacheHits.WithLabelValues("forecast").Inc()
		return bundle, nil
	}
	metrics.CacheMisses.WithLabelValues("forecast").Inc()

	fresh, err := c.refresh(ctx, cell)
	if err != nil {
		return models.ForecastBundle{}, fmt.Errorf("unable to obtain weather information for %s: %w", cell, err)
	}
	return fresh, nil
}

// refresh fetches hourly then daily; both must succeed before anything is
// written back.
func (c *Cache) refresh(ctx context.Context, cell models.GridCell) (models.ForecastBundle, error) {
	hourly, err := c.fetcher.Forecast(ctx, cell, true)
	if err != nil {
		return models.ForecastBundle{}, err
	}

	daily, err := c.fetcher.Forecast(ctx, cell, false)
	if err != nil {
		return models.ForecastBundle{}, err
	}

	bundle := models.ForecastBundle{
		Cell:        cell,
		Hourly:      hourly.Periods,
		Daily:       daily.Periods,
		GeneratedAt: daily.GeneratedAt,
		UpdatedAt:   daily.UpdatedAt,
		CachedAt:    c.clock.Now(),
	}

	c.mu.Lock()
	c.entries[cell] = bundle
	c.mu.Unlock()

	return bundle, nil
}

// Clear drops every cached bundle.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[models.GridCell]models.ForecastBundle)
	c.mu.Unlock()
}

// Snapshot copies the cache for the admin dump, keyed by cell string.
func (c *Cache) Snapshot() map[string]models.ForecastBundle {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := make(map[string]models.ForecastBundle, len(c.entries))
	for cell, bundle := range c.entries {
		snap[cell.String()] = bundle
	}
	return snap
}
