// Package geom contains the geometry value types shared by the filter
// engines: points, polygons, isochrone and radius settings, and
// administrative boundary items. All validation lives here so the
// engines, the mode controller, and the persistence layer agree on what
// a committable geometry is.
package geom

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// MinPolygonPoints is the smallest point count that makes a polygon
// committable. The closing point is implicit and never stored.
const MinPolygonPoints = 3

var ErrIncomplete = errors.New("polygon needs at least 3 points")

// Point is a WGS84 coordinate pair.
type Point struct {
	Lng float64 `json:"lng" doc:"Longitude in degrees" example:"2.17"`
	Lat float64 `json:"lat" doc:"Latitude in degrees" example:"41.38"`
}

// Validate checks coordinate ranges.
func (p Point) Validate() error {
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", p.Lng)
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", p.Lat)
	}
	return nil
}

// Orb returns the point in orb's lng/lat order.
func (p Point) Orb() orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

// FromOrb converts an orb point back to a Point.
func FromOrb(p orb.Point) Point {
	return Point{Lng: p[0], Lat: p[1]}
}

// Polygon is a user-authored search area. The ring is stored open; the
// renderer closes it.
type Polygon struct {
	ID        string    `json:"id" doc:"Polygon identifier"`
	Name      string    `json:"name,omitempty" doc:"Optional display name"`
	Points    []Point   `json:"points" doc:"Ordered ring vertices (not closed)"`
	CreatedAt time.Time `json:"createdAt" doc:"Creation timestamp"`
}

// NewPolygon freezes a point sequence into a polygon with a fresh id.
func NewPolygon(points []Point) Polygon {
	pts := make([]Point, len(points))
	copy(pts, points)
	return Polygon{
		ID:        uuid.NewString(),
		Points:    pts,
		CreatedAt: time.Now().UTC(),
	}
}

// Complete reports whether the polygon has enough points to commit.
func (p Polygon) Complete() bool {
	return len(p.Points) >= MinPolygonPoints
}

// Validate checks completeness and every vertex.
func (p Polygon) Validate() error {
	if !p.Complete() {
		return fmt.Errorf("%w, got %d", ErrIncomplete, len(p.Points))
	}
	for i, pt := range p.Points {
		if err := pt.Validate(); err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
	}
	return nil
}

// Orb returns the polygon as a closed orb ring.
func (p Polygon) Orb() orb.Polygon {
	ring := make(orb.Ring, 0, len(p.Points)+1)
	for _, pt := range p.Points {
		ring = append(ring, pt.Orb())
	}
	if len(ring) > 0 {
		ring = append(ring, ring[0])
	}
	return orb.Polygon{ring}
}

// PolygonFromRing builds a Polygon from a closed orb ring, dropping the
// duplicated closing point.
func PolygonFromRing(ring orb.Ring) Polygon {
	n := len(ring)
	if n > 1 && ring[0] == ring[n-1] {
		n--
	}
	points := make([]Point, 0, n)
	for _, pt := range ring[:n] {
		points = append(points, FromOrb(pt))
	}
	return NewPolygon(points)
}
