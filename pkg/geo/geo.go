// Package geo holds geographic positions for map symbols.
//
// Positions are WGS84 (EPSG:4326) latitude/longitude in degrees. Distances and
// proximity checks are evaluated in Web Mercator (EPSG:3857), the projection
// the map engine renders in.
package geo

import (
	"fmt"
	"math"
	"sync"

	"github.com/wroge/wgs84"

	"github.com/go-drift/driftmap/pkg/errors"
)

// ErrInvalidCoordinates is returned when a latitude or longitude is out of range.
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// LatLng is a geographic position in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate reports whether the position is a finite coordinate within
// [-90, 90] latitude and [-180, 180] longitude.
func (p LatLng) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) ||
		p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: lat=%v lng=%v", ErrInvalidCoordinates, p.Lat, p.Lng)
	}
	return nil
}

func (p LatLng) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.Lat, p.Lng)
}

var (
	toMercator     func(a, b, c float64) (float64, float64, float64)
	toMercatorOnce sync.Once
)

// Mercator projects the position into EPSG:3857 meters.
func (p LatLng) Mercator() (x, y float64) {
	toMercatorOnce.Do(func() {
		toMercator = wgs84.EPSG().Transform(4326, 3857)
	})
	x, y, _ = toMercator(p.Lng, p.Lat, 0)
	return x, y
}

// mercatorWorld is the EPSG:3857 width of the world in meters.
const mercatorWorld = 2 * 20037508.342789244

// GroundDistance approximates the distance in meters between two nearby
// positions. Mercator distance is scaled by the cosine of the mean latitude,
// which is accurate for the short ranges used in hit testing. The longitude
// delta takes the short way across the antimeridian.
func GroundDistance(a, b LatLng) float64 {
	ax, ay := a.Mercator()
	bx, by := b.Mercator()
	dx := math.Mod(ax-bx, mercatorWorld)
	if dx > mercatorWorld/2 {
		dx -= mercatorWorld
	} else if dx < -mercatorWorld/2 {
		dx += mercatorWorld
	}
	scale := math.Cos((a.Lat + b.Lat) / 2 * math.Pi / 180)
	return math.Hypot(dx, ay-by) * scale
}

// Bounds is a latitude/longitude rectangle. When SouthWest.Lng is greater than
// NorthEast.Lng the bounds cross the antimeridian.
type Bounds struct {
	SouthWest LatLng `json:"southWest"`
	NorthEast LatLng `json:"northEast"`
}

// Contains reports whether p lies inside the bounds, edges included.
func (b Bounds) Contains(p LatLng) bool {
	if p.Lat < b.SouthWest.Lat || p.Lat > b.NorthEast.Lat {
		return false
	}
	if b.SouthWest.Lng <= b.NorthEast.Lng {
		return p.Lng >= b.SouthWest.Lng && p.Lng <= b.NorthEast.Lng
	}
	return p.Lng >= b.SouthWest.Lng || p.Lng <= b.NorthEast.Lng
}
