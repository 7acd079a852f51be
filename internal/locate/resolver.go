// Package locate resolves coordinates and city/state pairs to the weather
// agency's grid addressing, backed by cross-indexed in-process caches that
// populate lazily from the point and office endpoints.
package locate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/wxgate/wxgate/internal/metrics"
	"github.com/wxgate/wxgate/internal/models"
	"github.com/wxgate/wxgate/internal/nws"
	"github.com/wxgate/wxgate/internal/wxerr"
)

// Upstream is the slice of the agency client the resolver needs.
type Upstream interface {
	Point(ctx context.Context, lat, lon string) (*nws.PointInfo, error)
	OfficeName(ctx context.Context, office string) (string, error)
}

// Resolver owns the location caches. Successful resolution is the only way
// entries are created; nothing is evicted short of Clear. One mutex guards
// all five tables so a resolution lands in them as a unit.
type Resolver struct {
	upstream Upstream

	mu         sync.Mutex
	locations  map[models.Coordinate]models.Location
	grids      map[models.Place]models.GridCell
	offices    map[models.Place]string
	officeLocs map[string]models.OfficeLocation
	zones      map[models.GridCell]string
}

func NewResolver(upstream Upstream) *Resolver {
	r := &Resolver{upstream: upstream}
	r.reset()
	return r
}

func (r *Resolver) reset() {
	r.locations = make(map[models.Coordinate]models.Location)
	r.grids = make(map[models.Place]models.GridCell)
	r.offices = make(map[models.Place]string)
	r.officeLocs = make(map[string]models.OfficeLocation)
	r.zones = make(map[models.GridCell]string)
}

// ResolveByCoordinate maps a canonical coordinate to its grid cell, going
// upstream on a cache miss. Concurrent first lookups of the same coordinate
// may each call upstream; the loser's write is a no-op since cached locations
// are never overwritten.
func (r *Resolver) ResolveByCoordinate(ctx context.Context, coord models.Coordinate) (models.GridCell, error) {
	r.mu.Lock()
	if loc, ok := r.locations[coord]; ok {
		cell, ok := r.grids[models.Place{State: loc.State, City: loc.City}]
		r.mu.Unlock()
		if ok {
			metrics.CacheHits.WithLabelValues("location").Inc()
			return cell, nil
		}
		return models.GridCell{}, fmt.Errorf("coordinate %s: %w", coord, wxerr.ErrNotFound)
	}
	r.mu.Unlock()
	metrics.CacheMisses.WithLabelValues("location").Inc()

	info, err := r.upstream.Point(ctx, coord.Lat, coord.Lon)
	if err != nil {
		return models.GridCell{}, err
	}

	name, err := r.upstream.OfficeName(ctx, info.Office)
	if err != nil {
		return models.GridCell{}, err
	}
	officeLoc, err := ParseOfficeName(name)
	if err != nil {
		return models.GridCell{}, err
	}

	refCoord, err := NormalizePair(info.RefLat, info.RefLon)
	if err != nil {
		return models.GridCell{}, err
	}

	cell := models.GridCell{Office: info.Office, X: info.X, Y: info.Y}
	loc := models.Location{City: info.City, State: info.State, Coord: refCoord}
	place := models.Place{State: info.State, City: info.City}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Both the caller's coordinate and the grid's reference coordinate index
	// the same location. Existing entries win; a resolution never overwrites.
	if _, ok := r.locations[coord]; !ok {
		r.locations[coord] = loc
	}
	if _, ok := r.locations[refCoord]; !ok {
		r.locations[refCoord] = loc
	}
	r.grids[place] = cell
	r.offices[place] = info.Office
	r.officeLocs[info.Office] = officeLoc
	if info.Zone != "" {
		r.zones[cell] = info.Zone
	}

	return cell, nil
}

// ResolveByPlace looks a city/state pair up in the cache. It has no upstream
// path of its own: an unseen place needs a coordinate resolution first.
func (r *Resolver) ResolveByPlace(city, state string) (models.GridCell, error) {
	r.mu.Lock()
	cell, ok := r.grids[models.Place{State: state, City: city}]
	r.mu.Unlock()
	if !ok {
		metrics.CacheMisses.WithLabelValues("location").Inc()
		return models.GridCell{}, fmt.Errorf("place %s, %s: %w", city, state, wxerr.ErrNotFound)
	}
	metrics.CacheHits.WithLabelValues("location").Inc()
	return cell, nil
}

// OfficeLocation returns the office's reference city/state, cached or fetched.
func (r *Resolver) OfficeLocation(ctx context.Context, office string) (models.OfficeLocation, error) {
	r.mu.Lock()
	loc, ok := r.officeLocs[office]
	r.mu.Unlock()
	if ok {
		metrics.CacheHits.WithLabelValues("office").Inc()
		return loc, nil
	}
	metrics.CacheMisses.WithLabelValues("office").Inc()

	name, err := r.upstream.OfficeName(ctx, office)
	if err != nil {
		return models.OfficeLocation{}, err
	}
	loc, err = ParseOfficeName(name)
	if err != nil {
		return models.OfficeLocation{}, err
	}

	r.mu.Lock()
	r.officeLocs[office] = loc
	r.mu.Unlock()
	return loc, nil
}

// ZoneFor returns the hazard zone covering a cached grid cell.
func (r *Resolver) ZoneFor(cell models.GridCell) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	zone, ok := r.zones[cell]
	return zone, ok
}

// Clear resets all five tables as a unit.
func (r *Resolver) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset()
}

// Snapshot is a point-in-time copy of the caches with string keys, suitable
// for the admin dump endpoint.
type Snapshot struct {
	Locations       map[string]models.Location       `json:"locations"`
	Grids           map[string]models.GridCell       `json:"grids"`
	Offices         map[string]string                `json:"offices"`
	OfficeLocations map[string]models.OfficeLocation `json:"office_locations"`
	Zones           map[string]string                `json:"zones"`
}

func (r *Resolver) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		Locations:       make(map[string]models.Location, len(r.locations)),
		Grids:           make(map[string]models.GridCell, len(r.grids)),
		Offices:         make(map[string]string, len(r.offices)),
		OfficeLocations: make(map[string]models.OfficeLocation, len(r.officeLocs)),
		Zones:           make(map[string]string, len(r.zones)),
	}
	for coord, loc := range r.locations {
		snap.Locations[coord.String()] = loc
	}
	for place, cell := range r.grids {
		snap.Grids[place.State+"/"+place.City] = cell
	}
	for place, office := range r.offices {
		snap.Offices[place.State+"/"+place.City] = office
	}
	for office, loc := range r.officeLocs {
		snap.OfficeLocations[office] = loc
	}
	for cell, zone := range r.zones {
		snap.Zones[cell.String()] = zone
	}
	return snap
}

// ParseOfficeName splits an office display name like "Greenville-Spartanburg,
// SC" into city and state: the last space-delimited token is the state, the
// remainder (rejoined, trailing comma trimmed) is the city. Multi-word city
// names survive intact.
func ParseOfficeName(name string) (models.OfficeLocation, error) {
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return models.OfficeLocation{}, fmt.Errorf("office name %q: %w", name, wxerr.ErrNotFound)
	}
	state := fields[len(fields)-1]
	city := strings.TrimSuffix(strings.Join(fields[:len(fields)-1], " "), ",")
	return models.OfficeLocation{City: city, State: state}, nil
}
