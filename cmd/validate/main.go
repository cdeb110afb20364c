// Command validate performs integrity checks on a brightness fixture file
// before it is served by the fixture gateway: coordinate ranges, value
// sanity, quality tags, and strictly increasing series years.
//
// Usage:
//
//	go run ./cmd/validate -fixture data/fixtures/brightness_austin.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/darkskylab/skyglow-analysis/internal/adapter/fixture"
	"github.com/darkskylab/skyglow-analysis/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	fixturePath := flag.String("fixture", "", "path to the fixture JSON file")
	flag.Parse()

	if *fixturePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := readFile(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	phases := []*phase{
		checkMeasurements(f),
		checkSeries(f),
		checkCoverage(f),
	}

	failed := false
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS %s\n", p.name)
			continue
		}
		failed = true
		fmt.Printf("FAIL %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("  - %s\n", e)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func readFile(path string) (fixture.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fixture.File{}, fmt.Errorf("read fixture: %w", err)
	}
	var f fixture.File
	if err := json.Unmarshal(data, &f); err != nil {
		return fixture.File{}, fmt.Errorf("parse fixture: %w", err)
	}
	return f, nil
}

func checkMeasurements(f fixture.File) *phase {
	p := &phase{name: "measurements"}
	for i, m := range f.Measurements {
		if math.Abs(m.Lat) > 90 || math.Abs(m.Lng) > 180 {
			p.errorf("measurement %d: coordinates (%g, %g) out of range", i, m.Lat, m.Lng)
		}
		if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) || m.Value < 0 {
			p.errorf("measurement %d: unusable value %g", i, m.Value)
		}
		if !domain.QualityTag(m.Quality).Known() {
			p.errorf("measurement %d: unknown quality tag %q", i, m.Quality)
		}
		if m.Source == "" {
			p.errorf("measurement %d: missing source label", i)
		}
	}
	return p
}

func checkSeries(f fixture.File) *phase {
	p := &phase{name: "series"}
	for i, rec := range f.Series {
		for j := 1; j < len(rec.Years); j++ {
			if rec.Years[j].Year <= rec.Years[j-1].Year {
				p.errorf("series %d: year %d follows year %d", i, rec.Years[j].Year, rec.Years[j-1].Year)
			}
		}
		for _, y := range rec.Years {
			if math.IsNaN(y.Value) || math.IsInf(y.Value, 0) || y.Value < 0 {
				p.errorf("series %d: unusable value %g in year %d", i, y.Value, y.Year)
			}
		}
	}
	return p
}

func checkCoverage(f fixture.File) *phase {
	p := &phase{name: "coverage"}
	if len(f.Measurements) == 0 {
		p.errorf("fixture has no measurements")
	}
	if len(f.Series) == 0 {
		p.errorf("fixture has no series")
	}
	for i, rec := range f.Series {
		if len(rec.Years) < 3 {
			p.errorf("series %d: only %d years, forecasting needs at least 3", i, len(rec.Years))
		}
	}
	return p
}
