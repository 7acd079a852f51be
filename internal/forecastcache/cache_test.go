package forecastcache

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/wxgate/wxgate/internal/models"
	"github.com/wxgate/wxgate/internal/nws"
	"github.com/wxgate/wxgate/internal/wxerr"
)

type fakeFetcher struct {
	calls     int
	failDaily bool
	failAll   bool
	label     string
}

func (f *fakeFetcher) Forecast(ctx context.Context, cell models.GridCell, hourly bool) (*nws.ForecastResult, error) {
	f.calls++
	if f.failAll || (f.failDaily && !hourly) {
		return nil, &wxerr.UpstreamError{Endpoint: "forecast", Status: 503}
	}
	name := f.label + "/daily"
	if hourly {
		name = f.label + "/hourly"
	}
	return &nws.ForecastResult{
		Periods: []models.Period{{Name: name}},
	}, nil
}

var testCell = models.GridCell{Office: "GSP", X: 112, Y: 58}

func TestCache_MissThenHit(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := &fakeFetcher{label: "a"}
	cache := NewWithClock(fetcher, clock)

	bundle, err := cache.GetOrRefresh(context.Background(), testCell, time.Minute)
	require.NoError(t, err)
	require.Equal(t, "a/hourly", bundle.Hourly[0].Name)
	require.Equal(t, "a/daily", bundle.Daily[0].Name)
	require.Equal(t, 2, fetcher.calls, "one hourly and one daily fetch")

	_, err = cache.GetOrRefresh(context.Background(), testCell, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 2, fetcher.calls, "fresh entry must not refetch")
}

func TestCache_TTLBoundaryInclusive(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := &fakeFetcher{label: "a"}
	cache := NewWithClock(fetcher, clock)

	_, err := cache.GetOrRefresh(context.Background(), testCell, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 2, fetcher.calls)

	// One tick short of the TTL: still fresh.
	clock.Advance(time.Minute - time.Second)
	_, err = cache.GetOrRefresh(context.Background(), testCell, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 2, fetcher.calls)

	// Exactly at the TTL: stale, refresh fires.
	clock.Advance(time.Second)
	_, err = cache.GetOrRefresh(context.Background(), testCell, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 4, fetcher.calls)
}

func TestCache_FailedRefreshKeepsStaleEntry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := &fakeFetcher{label: "a"}
	cache := NewWithClock(fetcher, clock)

	_, err := cache.GetOrRefresh(context.Background(), testCell, time.Minute)
	require.NoError(t, err)
	before := cache.Snapshot()[testCell.String()]

	clock.Advance(2 * time.Minute)
	fetcher.failDaily = true
	_, err = cache.GetOrRefresh(context.Background(), testCell, time.Minute)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unable to obtain weather information")

	// The stale bundle survives the failed refresh untouched.
	after := cache.Snapshot()[testCell.String()]
	require.Equal(t, before.CachedAt, after.CachedAt)
	require.Equal(t, before.Hourly, after.Hourly)
}

func TestCache_FirstFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{failAll: true}
	cache := New(fetcher)

	_, err := cache.GetOrRefresh(context.Background(), testCell, time.Minute)
	require.Error(t, err)

	var ue *wxerr.UpstreamError
	require.ErrorAs(t, err, &ue)
	require.Empty(t, cache.Snapshot())
}

func TestCache_Clear(t *testing.T) {
	fetcher := &fakeFetcher{label: "a"}
	cache := New(fetcher)

	_, err := cache.GetOrRefresh(context.Background(), testCell, time.Minute)
	require.NoError(t, err)
	require.Len(t, cache.Snapshot(), 1)

	cache.Clear()
	require.Empty(t, cache.Snapshot())

	_, err = cache.GetOrRefresh(context.Background(), testCell, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 4, fetcher.calls, "cleared entry refetches")
}
