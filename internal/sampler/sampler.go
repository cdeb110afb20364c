// Package sampler turns a region into a finite set of query locations using
// rejection sampling within the region's bounding box.
package sampler

import (
	"fmt"
	"math/rand"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"

	"github.com/darkskylab/skyglow-analysis/internal/domain"
)

// defaultAttemptsPerPoint bounds rejection sampling: a pathological
// near-zero-area polygon exhausts the budget and yields fewer points instead
// of looping forever.
const defaultAttemptsPerPoint = 20

// Sampler generates query locations for analysis regions. It is
// deterministic for a given seed, which is what makes area analyses
// reproducible in tests.
type Sampler struct {
	rng              *rand.Rand
	attemptsPerPoint int
}

// New creates a Sampler seeded for reproducible output.
func New(seed int64) *Sampler {
	return &Sampler{
		rng:              rand.New(rand.NewSource(seed)),
		attemptsPerPoint: defaultAttemptsPerPoint,
	}
}

// NewWithBudget creates a Sampler with a custom per-point retry budget.
func NewWithBudget(seed int64, attemptsPerPoint int) *Sampler {
	s := New(seed)
	if attemptsPerPoint > 0 {
		s.attemptsPerPoint = attemptsPerPoint
	}
	return s
}

// GenerateSamples emits up to targetCount locations inside the region. When
// the retry budget runs out (degenerate but technically valid geometry) it
// returns fewer points rather than blocking; callers decide whether the
// resulting coverage is acceptable.
func (s *Sampler) GenerateSamples(region domain.Region, targetCount int) ([]orb.Point, error) {
	if targetCount <= 0 {
		return nil, fmt.Errorf("target count must be positive, got %d", targetCount)
	}
	if region == nil {
		return nil, fmt.Errorf("%w: region is nil", domain.ErrInsufficientGeometry)
	}
	if err := region.Validate(); err != nil {
		return nil, err
	}

	switch r := region.(type) {
	case domain.PolygonRegion:
		return s.samplePolygon(r, targetCount), nil
	case domain.PointRegion:
		return s.samplePoint(r, targetCount), nil
	default:
		return nil, fmt.Errorf("%w: unsupported region type %T", domain.ErrInsufficientGeometry, region)
	}
}

// samplePolygon draws uniform points in the ring's bounding box and keeps
// those inside the polygon.
func (s *Sampler) samplePolygon(r domain.PolygonRegion, targetCount int) []orb.Point {
	bound := r.Ring.Bound()
	poly := r.Polygon()

	points := make([]orb.Point, 0, targetCount)
	budget := targetCount * s.attemptsPerPoint
	for attempts := 0; len(points) < targetCount && attempts < budget; attempts++ {
		pt := s.randomInBound(bound)
		if planar.PolygonContains(poly, pt) {
			points = append(points, pt)
		}
	}
	return points
}

// samplePoint emits the center plus uniform points within the circle's
// bounding box, keeping those within the radius.
func (s *Sampler) samplePoint(r domain.PointRegion, targetCount int) []orb.Point {
	points := make([]orb.Point, 0, targetCount)
	points = append(points, r.Center)
	if targetCount == 1 {
		return points
	}

	bound := geo.NewBoundAroundPoint(r.Center, r.RadiusMeters)
	budget := (targetCount - 1) * s.attemptsPerPoint
	for attempts := 0; len(points) < targetCount && attempts < budget; attempts++ {
		pt := s.randomInBound(bound)
		if geo.Distance(r.Center, pt) <= r.RadiusMeters {
			points = append(points, pt)
		}
	}
	return points
}

func (s *Sampler) randomInBound(b orb.Bound) orb.Point {
	return orb.Point{
		b.Min.Lon() + s.rng.Float64()*(b.Max.Lon()-b.Min.Lon()),
		b.Min.Lat() + s.rng.Float64()*(b.Max.Lat()-b.Min.Lat()),
	}
}
