package radiance

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkskylab/skyglow-analysis/internal/domain"
	"github.com/darkskylab/skyglow-analysis/internal/observability"
)

// countingGateway tracks how many calls reach the wrapped source.
type countingGateway struct {
	mu          sync.Mutex
	pointCalls  int
	seriesCalls int

	found  bool
	series domain.YearlySeries
	err    error
}

func (g *countingGateway) FetchPoint(ctx context.Context, loc orb.Point) (domain.Measurement, bool, error) {
	g.mu.Lock()
	g.pointCalls++
	g.mu.Unlock()
	if g.err != nil {
		return domain.Measurement{}, false, g.err
	}
	if !g.found {
		return domain.Measurement{}, false, nil
	}
	return domain.Measurement{Location: loc, Value: 18.0, Quality: domain.QualityHigh, Source: "test"}, true, nil
}

func (g *countingGateway) FetchSeries(ctx context.Context, loc orb.Point, startYear, endYear int) (domain.YearlySeries, error) {
	g.mu.Lock()
	g.seriesCalls++
	g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	return g.series, nil
}

func TestCachedGatewayPointHit(t *testing.T) {
	inner := &countingGateway{found: true}
	cached := NewCachedGateway(inner, 16, observability.NewMetricsForTesting())
	ctx := context.Background()
	loc := orb.Point{-97.7431, 30.2672}

	m1, ok, err := cached.FetchPoint(ctx, loc)
	require.NoError(t, err)
	require.True(t, ok)

	m2, ok, err := cached.FetchPoint(ctx, loc)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, m1, m2)
	assert.Equal(t, 1, inner.pointCalls, "second lookup is served from cache")
}

func TestCachedGatewayQuantizesNearbyPoints(t *testing.T) {
	inner := &countingGateway{found: true}
	cached := NewCachedGateway(inner, 16, observability.NewMetricsForTesting())
	ctx := context.Background()

	// Within the same 4-decimal cell.
	_, _, err := cached.FetchPoint(ctx, orb.Point{-97.74310, 30.26720})
	require.NoError(t, err)
	_, _, err = cached.FetchPoint(ctx, orb.Point{-97.74312, 30.26722})
	require.NoError(t, err)
	assert.Equal(t, 1, inner.pointCalls)

	// A different cell misses.
	_, _, err = cached.FetchPoint(ctx, orb.Point{-97.7440, 30.2672})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.pointCalls)
}

func TestCachedGatewayCachesAbsence(t *testing.T) {
	inner := &countingGateway{found: false}
	cached := NewCachedGateway(inner, 16, observability.NewMetricsForTesting())
	ctx := context.Background()
	loc := orb.Point{1, 2}

	for i := 0; i < 3; i++ {
		_, ok, err := cached.FetchPoint(ctx, loc)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, 1, inner.pointCalls)
}

func TestCachedGatewayDoesNotCacheErrors(t *testing.T) {
	inner := &countingGateway{err: errors.New("upstream down")}
	cached := NewCachedGateway(inner, 16, observability.NewMetricsForTesting())
	ctx := context.Background()
	loc := orb.Point{1, 2}

	_, _, err := cached.FetchPoint(ctx, loc)
	require.Error(t, err)
	_, _, err = cached.FetchPoint(ctx, loc)
	require.Error(t, err)
	assert.Equal(t, 2, inner.pointCalls, "failures must retry the source")
}

func TestCachedGatewaySeries(t *testing.T) {
	inner := &countingGateway{series: domain.YearlySeries{{Year: 2020, Value: 1}, {Year: 2021, Value: 2}}}
	cached := NewCachedGateway(inner, 16, observability.NewMetricsForTesting())
	ctx := context.Background()
	loc := orb.Point{-97.7, 30.3}

	s1, err := cached.FetchSeries(ctx, loc, 2019, 2023)
	require.NoError(t, err)
	s2, err := cached.FetchSeries(ctx, loc, 2019, 2023)
	require.NoError(t, err)
	assert.Equal(t, s1, s2)
	assert.Equal(t, 1, inner.seriesCalls)

	// A different year range is a different entry.
	_, err = cached.FetchSeries(ctx, loc, 2015, 2023)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.seriesCalls)
}

func TestCachedGatewayEmptySeriesNotCached(t *testing.T) {
	inner := &countingGateway{series: domain.YearlySeries{}}
	cached := NewCachedGateway(inner, 16, observability.NewMetricsForTesting())
	ctx := context.Background()

	_, err := cached.FetchSeries(ctx, orb.Point{0, 0}, 2019, 2023)
	require.NoError(t, err)
	_, err = cached.FetchSeries(ctx, orb.Point{0, 0}, 2019, 2023)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.seriesCalls)
}

func TestLRUCacheEviction(t *testing.T) {
	cache := newLRUCache[int](2)

	cache.put("a", 1)
	cache.put("b", 2)

	// Touch "a" so "b" is least recently used.
	_, ok := cache.get("a")
	require.True(t, ok)

	cache.put("c", 3)

	_, ok = cache.get("b")
	assert.False(t, ok, "least recently used entry is evicted")
	v, ok := cache.get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	v, ok = cache.get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestLRUCacheUpdateExisting(t *testing.T) {
	cache := newLRUCache[string](2)

	cache.put("k", "old")
	cache.put("k", "new")

	v, ok := cache.get("k")
	require.True(t, ok)
	assert.Equal(t, "new", v)
}
