package domain

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestMeasurementUsable(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  bool
	}{
		{"positive", 18.4, true},
		{"zero", 0, true},
		{"negative", -1, false},
		{"NaN", math.NaN(), false},
		{"positive infinity", math.Inf(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Measurement{Value: tt.value, Quality: QualityHigh}
			assert.Equal(t, tt.want, m.Usable())
		})
	}
}

func TestQualityTagKnown(t *testing.T) {
	assert.True(t, QualityHigh.Known())
	assert.True(t, QualityMedium.Known())
	assert.True(t, QualityLow.Known())
	assert.False(t, QualityTag("pristine").Known())
	assert.False(t, QualityTag("").Known())
}

func TestSampleSetCounts(t *testing.T) {
	usable := &Measurement{Value: 18.0, Quality: QualityHigh}
	junk := &Measurement{Value: math.NaN(), Quality: QualityLow}

	set := SampleSet{
		Region: PointRegion{Center: orb.Point{0, 0}, RadiusMeters: 100},
		Samples: []Sample{
			{Location: orb.Point{0, 0}, Measurement: usable},
			{Location: orb.Point{0.001, 0}, Measurement: junk},
			{Location: orb.Point{0.002, 0}},
		},
	}

	assert.Equal(t, 2, len(set.Measurements()))
	assert.Equal(t, 1, set.UsableCount())
	assert.Equal(t, 1, set.AbsentCount())
	assert.InDelta(t, 1.0/3.0, set.Coverage(), 1e-12)

	assert.Zero(t, SampleSet{}.Coverage())
}
