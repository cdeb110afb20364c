// Package trend reduces a single-location yearly brightness series to
// direction, magnitude, and volatility metrics.
package trend

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/darkskylab/skyglow-analysis/internal/domain"
)

// minYears is the shortest series the analyzer accepts.
const minYears = 2

// deadBandPercent is the half-width of the stable zone: percent changes
// inside it classify as stable rather than improving or worsening.
const deadBandPercent = 1.0

// Analyze reduces a yearly series to a TrendResult. The period averages
// compare the first third against the last third of the ordered years
// (window of at least 1 year). Brightness rising means light pollution
// worsening, falling means improving; the polarity is a domain convention.
//
// The analysis is fully deterministic: same series in, same result out.
// Non-monotonic series fail fast instead of being reordered.
func Analyze(series domain.YearlySeries) (domain.TrendResult, error) {
	if err := series.Validate(); err != nil {
		return domain.TrendResult{}, err
	}
	if len(series) < minYears {
		return domain.TrendResult{}, fmt.Errorf("%w: %d years, need at least %d",
			domain.ErrInsufficientSeries, len(series), minYears)
	}

	values := series.Values()
	window := len(values) / 3
	if window < 1 {
		window = 1
	}

	firstAvg := stat.Mean(values[:window], nil)
	recentAvg := stat.Mean(values[len(values)-window:], nil)

	var percentChange float64
	if firstAvg != 0 {
		percentChange = (recentAvg - firstAvg) / firstAvg * 100
	}

	direction := domain.TrendStable
	switch {
	case firstAvg == 0 && recentAvg > 0:
		// Dark baseline that lit up: worsening even though the percent
		// change against zero is undefined.
		direction = domain.TrendWorsening
	case percentChange > deadBandPercent:
		direction = domain.TrendWorsening
	case percentChange < -deadBandPercent:
		direction = domain.TrendImproving
	}

	return domain.TrendResult{
		Direction:       direction,
		PercentChange:   percentChange,
		Magnitude:       math.Abs(recentAvg - firstAvg),
		Volatility:      volatility(values),
		FirstPeriodAvg:  firstAvg,
		RecentPeriodAvg: recentAvg,
		Years:           len(series),
	}, nil
}

// volatility is the population standard deviation of consecutive
// year-over-year differences.
func volatility(values []float64) float64 {
	deltas := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		deltas = append(deltas, values[i]-values[i-1])
	}
	if len(deltas) < 2 {
		return 0
	}
	mean := stat.Mean(deltas, nil)
	return math.Sqrt(stat.MomentAbout(2, deltas, mean, nil))
}
