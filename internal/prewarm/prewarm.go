// Package prewarm keeps configured locations resolved and their forecasts
// cached so the first client request never pays the upstream round trips.
package prewarm

import (
	"context"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/wxgate/wxgate/internal/config"
	"github.com/wxgate/wxgate/internal/gateway"
)

// Warmer refreshes the watched locations on an interval. Request-path
// lookups never retry upstream failures; the warmer is the one place retries
// are acceptable, since nothing is waiting on it.
type Warmer struct {
	gw        *gateway.Gateway
	locations []config.WatchedLocation
	interval  time.Duration
}

func New(gw *gateway.Gateway, locations []config.WatchedLocation, interval time.Duration) *Warmer {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Warmer{gw: gw, locations: locations, interval: interval}
}

// Run warms every location once at startup and then on each tick until the
// context is canceled.
func (w *Warmer) Run(ctx context.Context) {
	if len(w.locations) == 0 {
		return
	}

	w.warmAll(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.warmAll(ctx)
		}
	}
}

func (w *Warmer) warmAll(ctx context.Context) {
	for _, loc := range w.locations {
		if err := w.warm(ctx, loc); err != nil {
			log.Printf("prewarm %.2f,%.2f: %v", loc.Lat, loc.Lon, err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (w *Warmer) warm(ctx context.Context, loc config.WatchedLocation) error {
	operation := func() error {
		_, err := w.gw.ResolveAndForecast(ctx, gateway.Query{Lat: loc.Lat, Lon: loc.Lon})
		if err != nil {
			return err
		}
		if loc.Office != "" {
			return w.gw.WarmOffice(ctx, loc.Office)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute
	return backoff.Retry(operation, backoff.WithContext(bo, ctx))
}
