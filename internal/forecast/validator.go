package forecast

import (
	"math"

	"github.com/darkskylab/skyglow-analysis/internal/domain"
)

// Grade thresholds in series units: MAE below each bound earns the grade.
const (
	maeExcellent = 0.5
	maeGood      = 1.0
	maeFair      = 2.0
)

// validate backtests one model family: re-fit on all but the last k
// historical points (k ≈ 20% of history, at least 1), predict the held-out
// years, and measure mean absolute error. Returns ok=false when the
// truncated series cannot support a fit, in which case the model simply has
// no validation entry.
func validate(spec modelSpec, series domain.YearlySeries) (domain.ValidationResult, bool) {
	k := len(series) / 5
	if k < 1 {
		k = 1
	}
	train := series[:len(series)-k]
	if len(train) < 2 {
		return domain.ValidationResult{}, false
	}

	fm, err := spec.fit(train)
	if err != nil {
		return domain.ValidationResult{}, false
	}

	sum := 0.0
	for i, held := range series[len(train):] {
		predicted := fm.predict(float64(len(train) + i))
		if predicted < 0 {
			predicted = 0
		}
		sum += math.Abs(predicted - held.Value)
	}
	mae := sum / float64(k)

	return domain.ValidationResult{
		Model:        spec.name(),
		MAE:          mae,
		Grade:        gradeFor(mae),
		HoldoutYears: k,
	}, true
}

func gradeFor(mae float64) domain.QualityGrade {
	switch {
	case mae < maeExcellent:
		return domain.GradeExcellent
	case mae < maeGood:
		return domain.GradeGood
	case mae < maeFair:
		return domain.GradeFair
	default:
		return domain.GradePoor
	}
}
