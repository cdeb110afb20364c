package domain

import (
	"time"

	"github.com/paulmach/orb"
)

// ConfidenceInterval bounds the mean at 95% confidence.
type ConfidenceInterval struct {
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	Margin float64 `json:"margin"`
}

// StatisticsResult is the descriptive summary of one sample set. Computed
// once, never mutated.
type StatisticsResult struct {
	Count        int                `json:"count"`
	Mean         float64            `json:"mean"`
	Median       float64            `json:"median"`
	Variance     float64            `json:"variance"` // population definition
	StdDev       float64            `json:"std_dev"`
	Min          float64            `json:"min"`
	Max          float64            `json:"max"`
	Range        float64            `json:"range"`
	Percentile95 float64            `json:"percentile_95"`
	Skewness     float64            `json:"skewness"`
	Kurtosis     float64            `json:"kurtosis"` // excess kurtosis
	Confidence   ConfidenceInterval `json:"confidence_interval"`
}

// TrendDirection classifies a yearly series. Brightness rising means light
// pollution worsening; the polarity is a domain convention.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendWorsening TrendDirection = "worsening"
	TrendStable    TrendDirection = "stable"
)

// TrendResult summarizes direction, magnitude, and volatility of one
// location's yearly series.
type TrendResult struct {
	Direction       TrendDirection `json:"direction"`
	PercentChange   float64        `json:"percent_change"`
	Magnitude       float64        `json:"magnitude"` // |recent - first| in series units
	Volatility      float64        `json:"volatility"`
	FirstPeriodAvg  float64        `json:"first_period_avg"`
	RecentPeriodAvg float64        `json:"recent_period_avg"`
	Years           int            `json:"years"`
}

// AlgorithmKind identifies a forecasting model family.
type AlgorithmKind string

const (
	AlgorithmLinear        AlgorithmKind = "linear"
	AlgorithmExponential   AlgorithmKind = "exponential"
	AlgorithmMovingAverage AlgorithmKind = "movingAverage"
	AlgorithmSeasonal      AlgorithmKind = "seasonal"

	// AlgorithmEnsemble marks the synthesized cross-model average.
	AlgorithmEnsemble AlgorithmKind = "ensemble"
)

// PredictionPoint is one forecast year from one model. Min and Max bracket a
// fixed fractional band around the point estimate; this is the per-model
// uncertainty, distinct from the ensemble-level UncertaintyBand.
type PredictionPoint struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// PredictionModel is one fitted model and its forward predictions.
type PredictionModel struct {
	Name        string             `json:"name"`
	Kind        AlgorithmKind      `json:"algorithm"`
	Parameters  map[string]float64 `json:"parameters"`
	Predictions []PredictionPoint  `json:"predictions"`
}

// QualityGrade buckets a model's held-out validation error.
type QualityGrade string

const (
	GradeExcellent QualityGrade = "excellent"
	GradeGood      QualityGrade = "good"
	GradeFair      QualityGrade = "fair"
	GradePoor      QualityGrade = "poor"
)

// ValidationResult reports one model's backtest against held-out history.
type ValidationResult struct {
	Model        string       `json:"model"`
	MAE          float64      `json:"mae"`
	Grade        QualityGrade `json:"grade"`
	HoldoutYears int          `json:"holdout_years"`
}

// UncertaintyBand is the ensemble-level spread for one forecast year, taken
// from the disagreement between models.
type UncertaintyBand struct {
	Year  int     `json:"year"`
	Lower float64 `json:"lower_bound"`
	Upper float64 `json:"upper_bound"`
}

// EnsembleResult owns all fitted models plus the synthesized ensemble model
// and per-year uncertainty bands.
type EnsembleResult struct {
	Models        []PredictionModel  `json:"models"`
	Validations   []ValidationResult `json:"validations"`
	Ensemble      PredictionModel    `json:"ensemble_model"`
	Uncertainty   []UncertaintyBand  `json:"uncertainty_bands"`
	SkippedModels []string           `json:"skipped_models,omitempty"`
	HistoryYears  int                `json:"history_years"`
	GeneratedAt   time.Time          `json:"generated_at"`
}

// AnalysisKind labels the three analysis operations.
type AnalysisKind string

const (
	AnalysisArea     AnalysisKind = "area"
	AnalysisTrend    AnalysisKind = "trend"
	AnalysisForecast AnalysisKind = "forecast"
)

// AreaReport packages area statistics with coverage accounting.
type AreaReport struct {
	SampleCount int              `json:"sample_count"`
	UsableCount int              `json:"usable_count"`
	AbsentCount int              `json:"absent_count"`
	Coverage    float64          `json:"coverage"`
	Statistics  StatisticsResult `json:"statistics"`
}

// TrendReport ties a trend result to the location and year range it covers.
type TrendReport struct {
	Location  orb.Point   `json:"location"`
	StartYear int         `json:"start_year"`
	EndYear   int         `json:"end_year"`
	Trend     TrendResult `json:"trend"`
}

// ForecastReport ties an ensemble forecast to the location it covers.
type ForecastReport struct {
	Location  orb.Point      `json:"location"`
	StartYear int            `json:"start_year"`
	EndYear   int            `json:"end_year"`
	Result    EnsembleResult `json:"result"`
}

// AnalysisReport is the envelope handed to the presentation layer and to
// downstream publishers. Exactly one payload field is set, matching Kind.
type AnalysisReport struct {
	ID         string       `json:"id"`
	Kind       AnalysisKind `json:"kind"`
	ComputedAt time.Time    `json:"computed_at"`

	Area     *AreaReport     `json:"area,omitempty"`
	Trend    *TrendReport    `json:"trend,omitempty"`
	Forecast *ForecastReport `json:"forecast,omitempty"`
}
