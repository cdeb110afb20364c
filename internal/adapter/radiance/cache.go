package radiance

import (
	"context"
	"fmt"
	"sync"

	"github.com/paulmach/orb"

	"github.com/darkskylab/skyglow-analysis/internal/domain"
	"github.com/darkskylab/skyglow-analysis/internal/observability"
)

// CachedGateway wraps a MeasurementGateway with in-memory LRU caches for
// point and series lookups. Keys quantize coordinates to four decimal places
// (~11 m), so neighbouring sample points within the same source cell share
// an entry.
type CachedGateway struct {
	inner   domain.MeasurementGateway
	points  *lruCache[pointEntry]
	series  *lruCache[domain.YearlySeries]
	metrics *observability.Metrics
}

type pointEntry struct {
	m  domain.Measurement
	ok bool
}

// NewCachedGateway creates a cache decorator around a gateway.
func NewCachedGateway(inner domain.MeasurementGateway, maxEntries int, metrics *observability.Metrics) *CachedGateway {
	return &CachedGateway{
		inner:   inner,
		points:  newLRUCache[pointEntry](maxEntries),
		series:  newLRUCache[domain.YearlySeries](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedGateway) FetchPoint(ctx context.Context, loc orb.Point) (domain.Measurement, bool, error) {
	key := fmt.Sprintf("%.4f,%.4f", loc.Lon(), loc.Lat())
	if cached, ok := c.points.get(key); ok {
		c.metrics.GatewayCache.WithLabelValues("point", "hit").Inc()
		return cached.m, cached.ok, nil
	}
	c.metrics.GatewayCache.WithLabelValues("point", "miss").Inc()

	m, ok, err := c.inner.FetchPoint(ctx, loc)
	if err != nil {
		return m, ok, err
	}
	// Absence is cached too: a source cell without data will not grow data
	// between requests of the same analysis.
	c.points.put(key, pointEntry{m: m, ok: ok})
	return m, ok, nil
}

func (c *CachedGateway) FetchSeries(ctx context.Context, loc orb.Point, startYear, endYear int) (domain.YearlySeries, error) {
	key := fmt.Sprintf("%.4f,%.4f|%d-%d", loc.Lon(), loc.Lat(), startYear, endYear)
	if cached, ok := c.series.get(key); ok {
		c.metrics.GatewayCache.WithLabelValues("series", "hit").Inc()
		return cached, nil
	}
	c.metrics.GatewayCache.WithLabelValues("series", "miss").Inc()

	series, err := c.inner.FetchSeries(ctx, loc, startYear, endYear)
	if err != nil {
		return nil, err
	}
	if len(series) > 0 {
		c.series.put(key, series)
	}
	return series, nil
}

// lruCache is a simple thread-safe LRU cache.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   string
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[V]) addToFront(e *entry[V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache[V]) remove(e *entry[V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
