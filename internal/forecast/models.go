package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/darkskylab/skyglow-analysis/internal/domain"
)

// movingAvgWindow is the trailing window of the moving-average model.
const movingAvgWindow = 3

// maxCyclePeriod caps the lag scanned for a residual cycle in the seasonal
// model.
const maxCyclePeriod = 6

// minCycleCorrelation is the weakest residual autocorrelation accepted as a
// real cycle; below it the seasonal model degrades to its trend component.
const minCycleCorrelation = 0.2

// modelSpec is one forecasting family. Fit is closed-form and deterministic;
// the returned predictor maps a year index (0 = first historical year) to a
// brightness estimate.
type modelSpec interface {
	name() string
	kind() domain.AlgorithmKind
	fit(series domain.YearlySeries) (fitted, error)
}

// fitted is a trained model: its reportable parameters and a prediction
// function over year indexes.
type fitted struct {
	params  map[string]float64
	predict func(idx float64) float64
}

// indexed converts a series to (index, value) vectors for regression.
func indexed(series domain.YearlySeries) (idx, values []float64) {
	idx = make([]float64, len(series))
	values = make([]float64, len(series))
	for i, yv := range series {
		idx[i] = float64(i)
		values[i] = yv.Value
	}
	return idx, values
}

// linearModel fits ordinary least squares of value against year index.
type linearModel struct{}

func (linearModel) name() string               { return "linear" }
func (linearModel) kind() domain.AlgorithmKind { return domain.AlgorithmLinear }

func (linearModel) fit(series domain.YearlySeries) (fitted, error) {
	idx, values := indexed(series)
	intercept, slope := stat.LinearRegression(idx, values, nil, false)
	return fitted{
		params: map[string]float64{
			"intercept":     intercept,
			"slope":         slope,
			"annual_change": slope,
		},
		predict: func(i float64) float64 { return intercept + slope*i },
	}, nil
}

// exponentialModel fits least squares of log(value) against year index and
// exponentiates back. It requires strictly positive history; a series with
// any value <= 0 skips this model without affecting the others.
type exponentialModel struct{}

func (exponentialModel) name() string               { return "exponential" }
func (exponentialModel) kind() domain.AlgorithmKind { return domain.AlgorithmExponential }

func (exponentialModel) fit(series domain.YearlySeries) (fitted, error) {
	idx, values := indexed(series)
	logs := make([]float64, len(values))
	for i, v := range values {
		if v <= 0 {
			return fitted{}, fmt.Errorf("%w: exponential model requires strictly positive history, got %g in %d",
				domain.ErrModelFit, v, series[i].Year)
		}
		logs[i] = math.Log(v)
	}

	logIntercept, logSlope := stat.LinearRegression(idx, logs, nil, false)
	lastIdx := float64(len(series) - 1)
	lastFit := math.Exp(logIntercept + logSlope*lastIdx)
	return fitted{
		params: map[string]float64{
			"log_intercept": logIntercept,
			"log_slope":     logSlope,
			"growth_rate":   math.Expm1(logSlope),
			// Value-units change per year at the end of history, so the
			// sign is comparable across model families.
			"annual_change": lastFit * math.Expm1(logSlope),
		},
		predict: func(i float64) float64 { return math.Exp(logIntercept + logSlope*i) },
	}, nil
}

// movingAverageModel carries a trailing-window average forward, nudged by a
// damped version of the window's own slope.
type movingAverageModel struct{}

func (movingAverageModel) name() string               { return "moving_average" }
func (movingAverageModel) kind() domain.AlgorithmKind { return domain.AlgorithmMovingAverage }

func (movingAverageModel) fit(series domain.YearlySeries) (fitted, error) {
	values := series.Values()
	window := movingAvgWindow
	if window > len(values) {
		window = len(values)
	}

	tail := values[len(values)-window:]
	base := stat.Mean(tail, nil)

	// Half-damped recent slope keeps the flat carry-forward from ignoring
	// an obvious local trend without turning into a second linear model.
	var slope float64
	if window >= 2 {
		slope = (tail[len(tail)-1] - tail[0]) / float64(window-1) * 0.5
	}

	lastIdx := float64(len(values) - 1)
	return fitted{
		params: map[string]float64{
			"window":        float64(window),
			"base":          base,
			"slope":         slope,
			"annual_change": slope,
		},
		predict: func(i float64) float64 { return base + slope*(i-lastIdx) },
	}, nil
}

// seasonalModel separates a linear trend from a short-period residual
// oscillation. The cycle is estimated from fixed-lag residual
// autocorrelation, which is deterministic but approximate: with only yearly
// data the "season" is really any repeating multi-year oscillation, and
// series without a detectable cycle degrade to the pure trend component.
type seasonalModel struct{}

func (seasonalModel) name() string               { return "seasonal" }
func (seasonalModel) kind() domain.AlgorithmKind { return domain.AlgorithmSeasonal }

func (seasonalModel) fit(series domain.YearlySeries) (fitted, error) {
	idx, values := indexed(series)
	intercept, slope := stat.LinearRegression(idx, values, nil, false)

	residuals := make([]float64, len(values))
	for i, v := range values {
		residuals[i] = v - (intercept + slope*idx[i])
	}

	period, phase := residualCycle(residuals)

	params := map[string]float64{
		"intercept":     intercept,
		"slope":         slope,
		"period":        float64(period),
		"annual_change": slope,
	}
	return fitted{
		params: params,
		predict: func(i float64) float64 {
			trendValue := intercept + slope*i
			if period == 0 {
				return trendValue
			}
			p := int(math.Round(i)) % period
			if p < 0 {
				p += period
			}
			return trendValue + phase[p]
		},
	}, nil
}

// residualCycle scans lags 2..maxCyclePeriod for the strongest positive
// residual autocorrelation. Ties break toward the shorter lag, keeping the
// estimate deterministic. Returns period 0 when no acceptable cycle exists.
func residualCycle(residuals []float64) (int, []float64) {
	n := len(residuals)
	best, bestCorr := 0, minCycleCorrelation
	for lag := 2; lag <= maxCyclePeriod && lag <= n/2; lag++ {
		c := stat.Correlation(residuals[:n-lag], residuals[lag:], nil)
		if !math.IsNaN(c) && c > bestCorr {
			best, bestCorr = lag, c
		}
	}
	if best == 0 {
		return 0, nil
	}

	// Phase correction: average residual per position within the cycle.
	sums := make([]float64, best)
	counts := make([]float64, best)
	for i, r := range residuals {
		p := i % best
		sums[p] += r
		counts[p]++
	}
	phase := make([]float64, best)
	for p := range phase {
		if counts[p] > 0 {
			phase[p] = sums[p] / counts[p]
		}
	}
	return best, phase
}
