package locate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wxgate/wxgate/internal/models"
	"github.com/wxgate/wxgate/internal/nws"
	"github.com/wxgate/wxgate/internal/wxerr"
)

type fakeUpstream struct {
	pointCalls  int
	officeCalls int
	pointErr    error
	info        nws.PointInfo
	officeName  string
}

func (f *fakeUpstream) Point(ctx context.Context, lat, lon string) (*nws.PointInfo, error) {
	f.pointCalls++
	if f.pointErr != nil {
		return nil, f.pointErr
	}
	info := f.info
	return &info, nil
}

func (f *fakeUpstream) OfficeName(ctx context.Context, office string) (string, error) {
	f.officeCalls++
	return f.officeName, nil
}

func newFake() *fakeUpstream {
	return &fakeUpstream{
		info: nws.PointInfo{
			Office: "GSP",
			X:      112,
			Y:      58,
			Zone:   "NCZ501",
			City:   "Asheville",
			State:  "NC",
			RefLat: 35.595,
			RefLon: -82.554,
		},
		officeName: "Greenville-Spartanburg, SC",
	}
}

func TestResolver_ResolveByCoordinate(t *testing.T) {
	fake := newFake()
	r := NewResolver(fake)
	coord := models.Coordinate{Lat: "35.59", Lon: "-82.55"}

	cell, err := r.ResolveByCoordinate(context.Background(), coord)
	require.NoError(t, err)
	require.Equal(t, models.GridCell{Office: "GSP", X: 112, Y: 58}, cell)
	require.Equal(t, 1, fake.pointCalls)

	// All five tables must be consistent after one resolution.
	snap := r.Snapshot()
	require.Equal(t, "Asheville", snap.Locations["35.59,-82.55"].City)
	require.Equal(t, "Asheville", snap.Locations["35.6,-82.55"].City, "reference coordinate indexes the same location")
	require.Equal(t, cell, snap.Grids["NC/Asheville"])
	require.Equal(t, "GSP", snap.Offices["NC/Asheville"])
	require.Equal(t, "Greenville-Spartanburg", snap.OfficeLocations["GSP"].City)
	require.Equal(t, "NCZ501", snap.Zones[cell.String()])
}

func TestResolver_CoordinateCacheHit(t *testing.T) {
	fake := newFake()
	r := NewResolver(fake)
	coord := models.Coordinate{Lat: "35.59", Lon: "-82.55"}

	_, err := r.ResolveByCoordinate(context.Background(), coord)
	require.NoError(t, err)
	_, err = r.ResolveByCoordinate(context.Background(), coord)
	require.NoError(t, err)
	require.Equal(t, 1, fake.pointCalls, "second resolution must not call upstream")
}

func TestResolver_CachedLocationNotOverwritten(t *testing.T) {
	fake := newFake()
	r := NewResolver(fake)

	_, err := r.ResolveByCoordinate(context.Background(), models.Coordinate{Lat: "35.59", Lon: "-82.55"})
	require.NoError(t, err)

	// A different query coordinate resolving to the same reference point
	// keeps the original location entry.
	fake.info.City = "Somewhere Else"
	_, err = r.ResolveByCoordinate(context.Background(), models.Coordinate{Lat: "35.61", Lon: "-82.56"})
	require.NoError(t, err)

	snap := r.Snapshot()
	require.Equal(t, "Asheville", snap.Locations["35.6,-82.55"].City)
	require.Equal(t, "Somewhere Else", snap.Locations["35.61,-82.56"].City)
}

func TestResolver_ResolveByPlace(t *testing.T) {
	fake := newFake()
	r := NewResolver(fake)

	_, err := r.ResolveByPlace("Asheville", "NC")
	require.ErrorIs(t, err, wxerr.ErrNotFound, "place lookup has no upstream fallback")

	_, err = r.ResolveByCoordinate(context.Background(), models.Coordinate{Lat: "35.59", Lon: "-82.55"})
	require.NoError(t, err)

	cell, err := r.ResolveByPlace("Asheville", "NC")
	require.NoError(t, err)
	require.Equal(t, "GSP", cell.Office)
}

func TestResolver_UpstreamFailurePropagates(t *testing.T) {
	fake := newFake()
	fake.pointErr = &wxerr.UpstreamError{Endpoint: "points", Status: 502}
	r := NewResolver(fake)

	_, err := r.ResolveByCoordinate(context.Background(), models.Coordinate{Lat: "1", Lon: "2"})
	var ue *wxerr.UpstreamError
	require.ErrorAs(t, err, &ue)

	// A failed resolution must leave no partial cache state behind.
	snap := r.Snapshot()
	require.Empty(t, snap.Locations)
	require.Empty(t, snap.Grids)
}

func TestResolver_NotFoundPropagates(t *testing.T) {
	fake := newFake()
	fake.pointErr = wxerr.ErrNotFound
	r := NewResolver(fake)

	_, err := r.ResolveByCoordinate(context.Background(), models.Coordinate{Lat: "0", Lon: "0"})
	require.True(t, errors.Is(err, wxerr.ErrNotFound))
}

func TestResolver_Clear(t *testing.T) {
	fake := newFake()
	r := NewResolver(fake)

	_, err := r.ResolveByCoordinate(context.Background(), models.Coordinate{Lat: "35.59", Lon: "-82.55"})
	require.NoError(t, err)

	r.Clear()

	snap := r.Snapshot()
	require.Empty(t, snap.Locations)
	require.Empty(t, snap.Grids)
	require.Empty(t, snap.Offices)
	require.Empty(t, snap.OfficeLocations)
	require.Empty(t, snap.Zones)

	_, err = r.ResolveByPlace("Asheville", "NC")
	require.ErrorIs(t, err, wxerr.ErrNotFound)
}

func TestParseOfficeName(t *testing.T) {
	tests := []struct {
		name      string
		wantCity  string
		wantState string
	}{
		{"Greenville-Spartanburg, SC", "Greenville-Spartanburg", "SC"},
		{"Salt Lake City, UT", "Salt Lake City", "UT"},
		{"Marquette, MI", "Marquette", "MI"},
	}

	for _, tt := range tests {
		loc, err := ParseOfficeName(tt.name)
		require.NoError(t, err)
		require.Equal(t, tt.wantCity, loc.City)
		require.Equal(t, tt.wantState, loc.State)
	}

	_, err := ParseOfficeName("Nowhere")
	require.ErrorIs(t, err, wxerr.ErrNotFound)
}
