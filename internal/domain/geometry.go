package domain

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Region is a user-selected analysis area supplied by the region selector:
// either a closed polygon ring or a point with a radius. Regions are
// immutable value types; Validate rejects degenerate input before any
// sampling happens.
type Region interface {
	Validate() error

	region()
}

// PolygonRegion is an analysis area bounded by a closed ring of
// longitude/latitude vertices. The ring's first and last vertex must be
// equal (orb's closed-ring convention).
type PolygonRegion struct {
	Ring orb.Ring
}

func (p PolygonRegion) region() {}

// Validate checks that the ring is closed, has at least 3 distinct vertices,
// and encloses a non-zero area.
func (p PolygonRegion) Validate() error {
	if len(p.Ring) < 4 || !p.Ring.Closed() {
		return fmt.Errorf("%w: polygon ring must be closed with at least 3 distinct vertices, got %d points",
			ErrInsufficientGeometry, len(p.Ring))
	}

	distinct := make(map[orb.Point]struct{}, len(p.Ring))
	for _, pt := range p.Ring[:len(p.Ring)-1] {
		distinct[pt] = struct{}{}
	}
	if len(distinct) < 3 {
		return fmt.Errorf("%w: polygon has %d distinct vertices, need at least 3",
			ErrInsufficientGeometry, len(distinct))
	}

	if math.Abs(planar.Area(p.Ring)) == 0 {
		return fmt.Errorf("%w: polygon has zero area", ErrInsufficientGeometry)
	}
	return nil
}

// Polygon returns the region as an orb.Polygon for containment tests.
func (p PolygonRegion) Polygon() orb.Polygon {
	return orb.Polygon{p.Ring}
}

// PointRegion is a circular analysis area around a center point.
type PointRegion struct {
	Center       orb.Point
	RadiusMeters float64
}

func (p PointRegion) region() {}

// Validate checks that the radius is positive and finite and the center is a
// real coordinate.
func (p PointRegion) Validate() error {
	if math.IsNaN(p.RadiusMeters) || math.IsInf(p.RadiusMeters, 0) || p.RadiusMeters <= 0 {
		return fmt.Errorf("%w: radius must be positive, got %g meters", ErrInsufficientGeometry, p.RadiusMeters)
	}
	if math.Abs(p.Center.Lon()) > 180 || math.Abs(p.Center.Lat()) > 90 {
		return fmt.Errorf("%w: center (%g, %g) is outside valid longitude/latitude range",
			ErrInsufficientGeometry, p.Center.Lon(), p.Center.Lat())
	}
	return nil
}
