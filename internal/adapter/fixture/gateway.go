// Package fixture implements the measurement gateway over a local JSON
// fixture file. It backs local development and deterministic tests: lookups
// resolve to the nearest fixture record within a distance cutoff, with no
// randomness anywhere.
package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/darkskylab/skyglow-analysis/internal/domain"
)

// File is the on-disk fixture format, shared with cmd/genfixtures and
// cmd/validate.
type File struct {
	Measurements []PointRecord  `json:"measurements"`
	Series       []SeriesRecord `json:"series"`
}

// PointRecord is one fixture brightness measurement.
type PointRecord struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Value      float64   `json:"value"`
	Quality    string    `json:"quality"`
	Source     string    `json:"source"`
	ObservedAt time.Time `json:"observed_at,omitzero"`
}

// SeriesRecord is one fixture yearly series anchored to a location.
type SeriesRecord struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Years []struct {
		Year  int     `json:"year"`
		Value float64 `json:"value"`
	} `json:"years"`
}

// Gateway serves measurements from a loaded fixture. It is immutable after
// Load and safe for concurrent use.
type Gateway struct {
	path         string
	measurements []domain.Measurement
	series       []seriesEntry
	maxRange     float64 // meters
}

type seriesEntry struct {
	location orb.Point
	series   domain.YearlySeries
}

// Load reads and indexes a fixture file. maxRangeMeters is the nearest-
// lookup cutoff: query locations farther than this from every record
// resolve as absent.
func Load(path string, maxRangeMeters float64) (*Gateway, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}

	g := &Gateway{path: path, maxRange: maxRangeMeters}
	for _, rec := range f.Measurements {
		g.measurements = append(g.measurements, domain.Measurement{
			Location:   orb.Point{rec.Lng, rec.Lat},
			Value:      rec.Value,
			Quality:    domain.QualityTag(rec.Quality),
			Source:     rec.Source,
			ObservedAt: rec.ObservedAt,
		})
	}
	for _, rec := range f.Series {
		series := make(domain.YearlySeries, 0, len(rec.Years))
		for _, y := range rec.Years {
			series = append(series, domain.YearValue{Year: y.Year, Value: y.Value})
		}
		if err := series.Validate(); err != nil {
			return nil, fmt.Errorf("fixture series at (%g, %g): %w", rec.Lng, rec.Lat, err)
		}
		g.series = append(g.series, seriesEntry{location: orb.Point{rec.Lng, rec.Lat}, series: series})
	}
	return g, nil
}

// FetchPoint returns the nearest fixture measurement within the cutoff.
// Ties resolve to the earliest record in file order, keeping lookups
// deterministic.
func (g *Gateway) FetchPoint(_ context.Context, loc orb.Point) (domain.Measurement, bool, error) {
	bestIdx := -1
	bestDist := g.maxRange
	for i, m := range g.measurements {
		if d := geo.Distance(loc, m.Location); d < bestDist || (bestIdx == -1 && d == bestDist) {
			bestIdx, bestDist = i, d
		}
	}
	if bestIdx == -1 {
		return domain.Measurement{}, false, nil
	}
	return g.measurements[bestIdx], true, nil
}

// FetchSeries returns the nearest fixture series within the cutoff,
// restricted to [startYear, endYear]. No series in range yields an empty
// series, not an error.
func (g *Gateway) FetchSeries(_ context.Context, loc orb.Point, startYear, endYear int) (domain.YearlySeries, error) {
	bestIdx := -1
	bestDist := g.maxRange
	for i, e := range g.series {
		if d := geo.Distance(loc, e.location); d < bestDist || (bestIdx == -1 && d == bestDist) {
			bestIdx, bestDist = i, d
		}
	}
	if bestIdx == -1 {
		return domain.YearlySeries{}, nil
	}

	out := make(domain.YearlySeries, 0, len(g.series[bestIdx].series))
	for _, yv := range g.series[bestIdx].series {
		if yv.Year >= startYear && yv.Year <= endYear {
			out = append(out, yv)
		}
	}
	return out, nil
}

// CheckReadiness reports whether the fixture actually contains data.
func (g *Gateway) CheckReadiness(_ context.Context) error {
	if len(g.measurements) == 0 && len(g.series) == 0 {
		return fmt.Errorf("fixture %s is empty", g.path)
	}
	return nil
}
