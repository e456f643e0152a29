package grid

import (
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/s2"
	"github.com/rotisserie/eris"
)

// Size is the edge length of a grid cell in degrees.
const Size = 0.01

// cellsPerDegree is 1/Size. Dividing the rounded index by it yields the
// closest float64 to the decimal cell coordinate, so keys print cleanly.
const cellsPerDegree = 100

// exactLimit is the magnitude past which v/Size no longer carries a
// fractional part; such values are already on the grid.
const exactLimit = float64(1<<53) / cellsPerDegree

// ErrMalformedKey is returned when a grid key cannot be parsed back into
// coordinates.
var ErrMalformedKey = eris.New("grid: malformed key")

// Key identifies a grid cell as "<lat>,<lon>".
type Key string

func (k Key) String() string {
	return string(k)
}

// Quantize snaps a coordinate pair onto the grid. Both planes round half
// away from zero.
func Quantize(lat, lon float64) Key {
	return Key(formatCoord(snap(lat)) + "," + formatCoord(snap(lon)))
}

// ParseKey splits a key back into its center latitude and longitude.
func ParseKey(key string) (lat, lon float64, err error) {
	latStr, lonStr, ok := strings.Cut(key, ",")
	if !ok {
		return 0, 0, eris.Wrapf(ErrMalformedKey, "no separator in %q", key)
	}
	lat, err = strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, eris.Wrapf(ErrMalformedKey, "latitude in %q", key)
	}
	lon, err = strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, eris.Wrapf(ErrMalformedKey, "longitude in %q", key)
	}
	return lat, lon, nil
}

// Bounds returns the rectangle covered by the cell centred on key.
func Bounds(key Key) (s2.Rect, error) {
	lat, lon, err := ParseKey(string(key))
	if err != nil {
		return s2.EmptyRect(), err
	}
	center := s2.LatLngFromDegrees(lat, lon)
	size := s2.LatLngFromDegrees(Size, Size)
	return s2.RectFromCenterSize(center, size), nil
}

// InRange reports whether lat/lon are finite and inside the valid
// latitude/longitude ranges.
func InRange(lat, lon float64) bool {
	if !finite(lat) || !finite(lon) {
		return false
	}
	return s2.LatLngFromDegrees(lat, lon).IsValid()
}

func snap(v float64) float64 {
	if math.Abs(v) >= exactLimit {
		return v
	}
	idx := math.Round(v / Size)
	if idx == 0 {
		// drop the sign of -0 so both sides of the axis share a key
		idx = 0
	}
	return idx / cellsPerDegree
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
