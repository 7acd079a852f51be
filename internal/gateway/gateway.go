// Package gateway ties the resolver, forecast cache, bulletin parser, and
// alert router together behind the operations the HTTP layer exposes.
package gateway

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/wxgate/wxgate/internal/alert"
	"github.com/wxgate/wxgate/internal/forecastcache"
	"github.com/wxgate/wxgate/internal/hwo"
	"github.com/wxgate/wxgate/internal/locate"
	"github.com/wxgate/wxgate/internal/models"
	"github.com/wxgate/wxgate/internal/nws"
	"github.com/wxgate/wxgate/internal/wxerr"
)

// Query is the client-supplied location payload. City/state pairs are tried
// against the place cache first; coordinates are the fallback and the only
// way to populate it. Lat/lon accept numbers or strings, since some clients
// send coordinates as strings and some as truncated integers.
type Query struct {
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
	Lat   any    `json:"lat,omitempty"`
	Lon   any    `json:"lon,omitempty"`

	// Office, when set, pins hazard-outlook requests to that issuing office
	// instead of the one the grid cell resolves to.
	Office string `json:"office,omitempty"`
}

// Gateway owns the caches and upstream clients for one service instance.
type Gateway struct {
	resolver   *locate.Resolver
	forecasts  *forecastcache.Cache
	client     *nws.Client
	dispatcher *alert.Dispatcher

	ttl        time.Duration
	ignoreText string
	rules      alert.RuleSet
}

// Options configures a Gateway.
type Options struct {
	Client     *nws.Client
	TTL        time.Duration
	IgnoreText string
	Rules      alert.RuleSet
}

func New(opts Options) *Gateway {
	client := opts.Client
	if client == nil {
		client = nws.NewClient()
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Gateway{
		resolver:   locate.NewResolver(client),
		forecasts:  forecastcache.New(client),
		client:     client,
		dispatcher: alert.NewDispatcher(),
		ttl:        ttl,
		ignoreText: opts.IgnoreText,
		rules:      opts.Rules,
	}
}

// Resolve turns a query into a grid cell. A city/state pair not yet in the
// cache falls back to coordinates when they were supplied; without them the
// place is reported as not found, since places cannot be looked up upstream
// by name.
func (g *Gateway) Resolve(ctx context.Context, q Query) (models.GridCell, error) {
	if q.City != "" && q.State != "" {
		cell, err := g.resolver.ResolveByPlace(q.City, q.State)
		if err == nil {
			return cell, nil
		}
		if !errors.Is(err, wxerr.ErrNotFound) {
			return models.GridCell{}, err
		}
		if q.Lat == nil || q.Lon == nil {
			return models.GridCell{}, wxerr.ErrNotFound
		}
	} else if q.Lat == nil || q.Lon == nil {
		return models.GridCell{}, wxerr.Inputf("latitude and longitude are required")
	}

	coord, err := locate.NormalizePair(q.Lat, q.Lon)
	if err != nil {
		return models.GridCell{}, err
	}
	return g.resolver.ResolveByCoordinate(ctx, coord)
}

// ResolveAndForecast resolves the query and returns the cached-or-refreshed
// forecast bundle for its grid cell.
func (g *Gateway) ResolveAndForecast(ctx context.Context, q Query) (models.ForecastBundle, error) {
	cell, err := g.Resolve(ctx, q)
	if err != nil {
		return models.ForecastBundle{}, err
	}
	return g.forecasts.GetOrRefresh(ctx, cell, g.ttl)
}

// HazardOutlook resolves the query's grid cell and returns the parsed hazard
// bulletins for its zone. A pinned office in the query overrides the resolved
// cell's office; the zone filter belongs to the cell's own office and is
// skipped for pinned bulletins. The products API is the primary source; when
// it fails, the legacy HTML page for the office is parsed instead.
func (g *Gateway) HazardOutlook(ctx context.Context, q Query) ([]hwo.Entry, error) {
	cell, err := g.Resolve(ctx, q)
	if err != nil {
		return nil, err
	}

	office := cell.Office
	if q.Office != "" {
		office = q.Office
	}

	opts := hwo.Options{IgnoreText: g.ignoreText}
	if office == cell.Office {
		if zone, ok := g.resolver.ZoneFor(cell); ok {
			opts.ZoneFilter = zone
		}
	}

	product, err := g.client.LatestHazardOutlook(ctx, office)
	if err != nil {
		log.Printf("hwo product fetch for %s failed, trying legacy page: %v", office, err)
		return g.legacyOutlook(ctx, office)
	}
	return hwo.Parse(product.Text, opts), nil
}

func (g *Gateway) legacyOutlook(ctx context.Context, office string) ([]hwo.Entry, error) {
	page, err := g.client.HazardOutlookHTML(ctx, office)
	if err != nil {
		return nil, err
	}

	opts := hwo.LegacyOptions{IgnoreText: g.ignoreText}
	if loc, err := g.resolver.OfficeLocation(ctx, office); err == nil {
		opts.OfficeCity = loc.City
		opts.OfficeState = loc.State
		opts.MatchOffice = true
	}
	return hwo.FromHTML(page, opts), nil
}

// WarmOffice primes the office-location cache for a pinned office, so the
// legacy outlook fallback needs no extra round trip when it is first used.
func (g *Gateway) WarmOffice(ctx context.Context, office string) error {
	_, err := g.resolver.OfficeLocation(ctx, office)
	return err
}

// ClassifyAndDispatch classifies the event and fires every matching webhook
// rule, returning the number of actions executed.
func (g *Gateway) ClassifyAndDispatch(ctx context.Context, event models.AlertEvent) (int, error) {
	return g.dispatcher.Dispatch(ctx, event, g.rules)
}

// ClearCaches resets every cache table. Entries otherwise live for the
// process lifetime.
func (g *Gateway) ClearCaches() {
	g.resolver.Clear()
	g.forecasts.Clear()
}

// CacheState is the administrative dump of all cache tables.
type CacheState struct {
	Resolver  locate.Snapshot                  `json:"resolver"`
	Forecasts map[string]models.ForecastBundle `json:"forecasts"`
}

func (g *Gateway) CacheState() CacheState {
	return CacheState{
		Resolver:  g.resolver.Snapshot(),
		Forecasts: g.forecasts.Snapshot(),
	}
}
