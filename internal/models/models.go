package models

import (
	"fmt"
	"time"
)

// Coordinate is a canonicalized latitude/longitude pair. Both fields hold the
// normalized string form produced by locate.NormalizeCoord; two coordinates are
// cache-equal iff the strings match exactly.
type Coordinate struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (c Coordinate) String() string {
	return c.Lat + "," + c.Lon
}

// Location ties a city/state pair to the coordinate it was first resolved from.
// Immutable once cached; later resolutions never overwrite it.
type Location struct {
	City  string     `json:"city"`
	State string     `json:"state"`
	Coord Coordinate `json:"coord"`
}

// Place is the composite lookup key for a city within a state.
type Place struct {
	State string `json:"state"`
	City  string `json:"city"`
}

// GridCell addresses a forecast area: issuing office code plus X/Y grid indices.
// It is the join key between the location cache and the forecast cache.
type GridCell struct {
	Office string `json:"office"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

func (g GridCell) String() string {
	return fmt.Sprintf("%s/%d,%d", g.Office, g.X, g.Y)
}

// OfficeLocation is the city/state of an issuing office's reference location.
type OfficeLocation struct {
	City  string `json:"city"`
	State string `json:"state"`
}

type Temperature struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type Wind struct {
	Speed     string `json:"speed"`
	Direction string `json:"direction"`
}

// Period is a single forecast period, normalized to the same shape whether it
// came from the hourly or the daily product.
type Period struct {
	Name          string      `json:"period"`
	Start         time.Time   `json:"start"`
	End           time.Time   `json:"end"`
	Daytime       bool        `json:"daytime"`
	Temperature   Temperature `json:"temperature"`
	Precipitation int         `json:"precipitation"`
	Wind          Wind        `json:"wind"`
	Short         string      `json:"short"`
	Detailed      string      `json:"detailed"`
}

// ForecastBundle is the cached forecast state for one grid cell. A refresh
// replaces the whole bundle; there is never a partial overwrite.
type ForecastBundle struct {
	Cell        GridCell  `json:"cell"`
	Hourly      []Period  `json:"hourly"`
	Daily       []Period  `json:"forecast"`
	GeneratedAt time.Time `json:"generated"`
	UpdatedAt   time.Time `json:"updated"`
	CachedAt    time.Time `json:"cached_at"`
}

// AlertEvent is an inbound emergency alert: a type code, the SAME geo codes it
// covers, and the raw payload which is echoed unmodified into webhook bodies.
type AlertEvent struct {
	Type  string   `json:"type"`
	Codes []string `json:"codes"`
	Raw   []byte   `json:"-"`
}
