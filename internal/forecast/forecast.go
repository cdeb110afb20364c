// Package forecast fits several model families to a yearly brightness
// series, validates each against held-out history, and combines them into an
// ensemble forecast with per-year uncertainty bands.
package forecast

import (
	"fmt"

	"github.com/darkskylab/skyglow-analysis/internal/domain"
)

// MinHistoryYears is the shortest series the forecaster accepts.
const MinHistoryYears = 3

// bandFraction is the per-model uncertainty band: min/max bracket the point
// estimate by this fraction.
const bandFraction = 0.10

// Forecast fits the four model families over the series and forecasts
// yearsForward years past its end. Models that cannot be fit (exponential
// over non-positive history) are skipped, recorded in SkippedModels, and
// excluded from the ensemble; everything else about the run is closed-form
// and deterministic.
func Forecast(series domain.YearlySeries, yearsForward int) (domain.EnsembleResult, error) {
	if err := series.Validate(); err != nil {
		return domain.EnsembleResult{}, err
	}
	if len(series) < MinHistoryYears {
		return domain.EnsembleResult{}, fmt.Errorf("%w: %d years of history, need at least %d",
			domain.ErrInsufficientHistory, len(series), MinHistoryYears)
	}
	if yearsForward <= 0 {
		return domain.EnsembleResult{}, fmt.Errorf("forecast horizon must be positive, got %d", yearsForward)
	}

	specs := []modelSpec{linearModel{}, exponentialModel{}, movingAverageModel{}, seasonalModel{}}

	var (
		models      []domain.PredictionModel
		validations []domain.ValidationResult
		skipped     []string
	)
	for _, spec := range specs {
		fm, err := spec.fit(series)
		if err != nil {
			// Per-model failure, absorbed: the remaining families still
			// forecast.
			skipped = append(skipped, spec.name())
			continue
		}
		models = append(models, predictForward(spec, fm, series, yearsForward))
		if vr, ok := validate(spec, series); ok {
			validations = append(validations, vr)
		}
	}
	if len(models) == 0 {
		return domain.EnsembleResult{}, fmt.Errorf("%w: no model family could be fit", domain.ErrModelFit)
	}

	lastValue := series[len(series)-1].Value
	ensemble, bands := combine(models, series.LastYear(), lastValue, yearsForward)

	return domain.EnsembleResult{
		Models:        models,
		Validations:   validations,
		Ensemble:      ensemble,
		Uncertainty:   bands,
		SkippedModels: skipped,
		HistoryYears:  len(series),
		GeneratedAt:   domain.Now(),
	}, nil
}

// predictForward turns a fitted model into per-year predictions with the
// fixed fractional per-model band. Negative point estimates clamp to zero:
// radiance cannot go below dark.
func predictForward(spec modelSpec, fm fitted, series domain.YearlySeries, yearsForward int) domain.PredictionModel {
	lastIdx := float64(len(series) - 1)
	lastYear := series.LastYear()

	points := make([]domain.PredictionPoint, 0, yearsForward)
	for h := 1; h <= yearsForward; h++ {
		v := fm.predict(lastIdx + float64(h))
		if v < 0 {
			v = 0
		}
		points = append(points, domain.PredictionPoint{
			Year:  lastYear + h,
			Value: v,
			Min:   v * (1 - bandFraction),
			Max:   v * (1 + bandFraction),
		})
	}

	return domain.PredictionModel{
		Name:        spec.name(),
		Kind:        spec.kind(),
		Parameters:  fm.params,
		Predictions: points,
	}
}

// combine synthesizes the ensemble model (cross-model average per year) and
// the per-year uncertainty bands (min/max across model point estimates, or
// the single model's own band when only one model is available).
func combine(models []domain.PredictionModel, lastYear int, lastValue float64, yearsForward int) (domain.PredictionModel, []domain.UncertaintyBand) {
	points := make([]domain.PredictionPoint, yearsForward)
	bands := make([]domain.UncertaintyBand, yearsForward)

	for h := 0; h < yearsForward; h++ {
		sum := 0.0
		lower, upper := models[0].Predictions[h].Value, models[0].Predictions[h].Value
		for _, m := range models {
			v := m.Predictions[h].Value
			sum += v
			if v < lower {
				lower = v
			}
			if v > upper {
				upper = v
			}
		}
		value := sum / float64(len(models))
		if len(models) == 1 {
			lower = models[0].Predictions[h].Min
			upper = models[0].Predictions[h].Max
		}

		year := lastYear + 1 + h
		points[h] = domain.PredictionPoint{Year: year, Value: value, Min: lower, Max: upper}
		bands[h] = domain.UncertaintyBand{Year: year, Lower: lower, Upper: upper}
	}

	annualChange := (points[yearsForward-1].Value - lastValue) / float64(yearsForward)

	ensemble := domain.PredictionModel{
		Name: "ensemble",
		Kind: domain.AlgorithmEnsemble,
		Parameters: map[string]float64{
			"models":        float64(len(models)),
			"annual_change": annualChange,
		},
		Predictions: points,
	}
	return ensemble, bands
}
