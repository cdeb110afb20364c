// Package statistics reduces brightness samples to descriptive summary
// statistics with confidence bounds.
package statistics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/darkskylab/skyglow-analysis/internal/domain"
)

// MinSamples is the smallest number of usable values Summarize accepts.
const MinSamples = 2

// zCritical95 is the standard normal critical value for a 95% interval.
const zCritical95 = 1.96

// Summarize reduces a collection of measurements to a StatisticsResult.
// Unusable entries (absent handled upstream; NaN, infinite, or negative
// values here) are discarded first. The reduction is order-independent:
// any permutation of the input yields identical output.
//
// Variance uses the population definition (divide by N). Skewness and
// excess kurtosis use the bias-corrected sample formulas and degrade to 0
// for a degenerate all-identical set instead of dividing by zero.
func Summarize(measurements []domain.Measurement) (domain.StatisticsResult, error) {
	values := make([]float64, 0, len(measurements))
	for _, m := range measurements {
		if m.Usable() {
			values = append(values, m.Value)
		}
	}
	if len(values) < MinSamples {
		return domain.StatisticsResult{}, fmt.Errorf("%w: %d usable samples, need at least %d",
			domain.ErrInsufficientData, len(values), MinSamples)
	}

	sort.Float64s(values)
	n := float64(len(values))

	mean := stat.Mean(values, nil)
	variance := stat.MomentAbout(2, values, mean, nil)
	stdDev := math.Sqrt(variance)
	minV := values[0]
	maxV := values[len(values)-1]

	var skewness, kurtosis float64
	if stdDev > 0 {
		skewness = stat.Skew(values, nil)
		kurtosis = stat.ExKurtosis(values, nil)
	}

	margin := zCritical95 * stdDev / math.Sqrt(n)

	return domain.StatisticsResult{
		Count:        len(values),
		Mean:         mean,
		Median:       percentile(values, 50),
		Variance:     variance,
		StdDev:       stdDev,
		Min:          minV,
		Max:          maxV,
		Range:        maxV - minV,
		Percentile95: percentile(values, 95),
		Skewness:     skewness,
		Kurtosis:     kurtosis,
		Confidence: domain.ConfidenceInterval{
			Lower:  mean - margin,
			Upper:  mean + margin,
			Margin: margin,
		},
	}, nil
}

// percentile returns the p-th percentile of an already-sorted slice using
// linear interpolation between order statistics: index = p/100 * (n-1),
// interpolating between the floor and ceil neighbors.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}

	idx := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
