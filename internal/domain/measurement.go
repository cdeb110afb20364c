package domain

import (
	"math"
	"time"

	"github.com/paulmach/orb"
)

// QualityTag grades the source's confidence in a single measurement.
type QualityTag string

const (
	QualityHigh   QualityTag = "high"
	QualityMedium QualityTag = "medium"
	QualityLow    QualityTag = "low"
)

// Known reports whether the tag is one of the recognized quality levels.
func (q QualityTag) Known() bool {
	switch q {
	case QualityHigh, QualityMedium, QualityLow:
		return true
	}
	return false
}

// Measurement is one georeferenced brightness reading. Immutable once
// produced by the gateway.
type Measurement struct {
	Location   orb.Point  `json:"location"` // [lon, lat]
	Value      float64    `json:"value"`    // radiance, non-negative
	Quality    QualityTag `json:"quality"`
	Source     string     `json:"source"`
	ObservedAt time.Time  `json:"observed_at,omitzero"`
}

// Usable reports whether the measurement carries a value that may enter
// statistics: finite and non-negative.
func (m Measurement) Usable() bool {
	return !math.IsNaN(m.Value) && !math.IsInf(m.Value, 0) && m.Value >= 0
}

// Sample pairs a query location with the measurement resolved for it.
// Measurement is nil when the gateway had no data for the location.
type Sample struct {
	Location    orb.Point    `json:"location"`
	Measurement *Measurement `json:"measurement,omitempty"`
}

// Absent reports whether the gateway could not supply a value here.
func (s Sample) Absent() bool {
	return s.Measurement == nil
}

// SampleSet owns a region and the ordered samples resolved for it. Absent
// samples stay in the sequence so coverage can be reported.
type SampleSet struct {
	Region  Region
	Samples []Sample
}

// Measurements returns the present measurements in sample order.
func (s SampleSet) Measurements() []Measurement {
	out := make([]Measurement, 0, len(s.Samples))
	for _, smp := range s.Samples {
		if smp.Measurement != nil {
			out = append(out, *smp.Measurement)
		}
	}
	return out
}

// UsableCount counts samples that are present and carry a usable value.
func (s SampleSet) UsableCount() int {
	n := 0
	for _, smp := range s.Samples {
		if smp.Measurement != nil && smp.Measurement.Usable() {
			n++
		}
	}
	return n
}

// AbsentCount counts samples the gateway could not resolve.
func (s SampleSet) AbsentCount() int {
	n := 0
	for _, smp := range s.Samples {
		if smp.Absent() {
			n++
		}
	}
	return n
}

// Coverage is the fraction of sampled locations with a usable value, 0 when
// the set is empty.
func (s SampleSet) Coverage() float64 {
	if len(s.Samples) == 0 {
		return 0
	}
	return float64(s.UsableCount()) / float64(len(s.Samples))
}
