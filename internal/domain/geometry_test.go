package domain

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squareRing() orb.Ring {
	return orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
}

func TestPolygonRegionValidate(t *testing.T) {
	t.Run("valid square", func(t *testing.T) {
		r := PolygonRegion{Ring: squareRing()}
		require.NoError(t, r.Validate())
	})

	t.Run("open ring", func(t *testing.T) {
		r := PolygonRegion{Ring: orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}}}
		err := r.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInsufficientGeometry)
	})

	t.Run("too few vertices", func(t *testing.T) {
		r := PolygonRegion{Ring: orb.Ring{{0, 0}, {1, 1}, {0, 0}}}
		assert.ErrorIs(t, r.Validate(), ErrInsufficientGeometry)
	})

	t.Run("duplicate vertices collapse below three", func(t *testing.T) {
		r := PolygonRegion{Ring: orb.Ring{{0, 0}, {1, 1}, {0, 0}, {1, 1}, {0, 0}}}
		assert.ErrorIs(t, r.Validate(), ErrInsufficientGeometry)
	})

	t.Run("zero area", func(t *testing.T) {
		// Three distinct but collinear vertices.
		r := PolygonRegion{Ring: orb.Ring{{0, 0}, {1, 1}, {2, 2}, {0, 0}}}
		assert.ErrorIs(t, r.Validate(), ErrInsufficientGeometry)
	})

	t.Run("empty ring", func(t *testing.T) {
		r := PolygonRegion{}
		assert.ErrorIs(t, r.Validate(), ErrInsufficientGeometry)
	})
}

func TestPointRegionValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		r := PointRegion{Center: orb.Point{-97.74, 30.27}, RadiusMeters: 5000}
		require.NoError(t, r.Validate())
	})

	t.Run("zero radius", func(t *testing.T) {
		r := PointRegion{Center: orb.Point{0, 0}, RadiusMeters: 0}
		assert.ErrorIs(t, r.Validate(), ErrInsufficientGeometry)
	})

	t.Run("negative radius", func(t *testing.T) {
		r := PointRegion{Center: orb.Point{0, 0}, RadiusMeters: -100}
		assert.ErrorIs(t, r.Validate(), ErrInsufficientGeometry)
	})

	t.Run("center off the map", func(t *testing.T) {
		r := PointRegion{Center: orb.Point{200, 95}, RadiusMeters: 100}
		assert.ErrorIs(t, r.Validate(), ErrInsufficientGeometry)
	})
}
