package locate

import (
	"math"
	"strconv"

	"github.com/wxgate/wxgate/internal/models"
	"github.com/wxgate/wxgate/internal/wxerr"
)

// NormalizeCoord canonicalizes one latitude or longitude value. Numeric input
// is stringified; floats are rounded to 2 decimal places first, which merges
// nearby points (within roughly a kilometre) into one cache key. Strings pass
// through unchanged, so the function is idempotent.
func NormalizeCoord(v any) (string, error) {
	switch n := v.(type) {
	case string:
		return n, nil
	case float64:
		return formatRounded(n), nil
	case float32:
		return formatRounded(float64(n)), nil
	case int:
		return strconv.Itoa(n), nil
	case int64:
		return strconv.FormatInt(n, 10), nil
	case nil:
		return "", wxerr.Inputf("missing coordinate value")
	default:
		return "", wxerr.Inputf("coordinate must be a number or string, got %T", v)
	}
}

// NormalizePair canonicalizes a latitude/longitude pair into a Coordinate.
func NormalizePair(lat, lon any) (models.Coordinate, error) {
	la, err := NormalizeCoord(lat)
	if err != nil {
		return models.Coordinate{}, err
	}
	lo, err := NormalizeCoord(lon)
	if err != nil {
		return models.Coordinate{}, err
	}
	return models.Coordinate{Lat: la, Lon: lo}, nil
}

func formatRounded(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}
