// Package analysis orchestrates the analysis operations: area statistics
// over sampled regions, single-location trend analysis, and multi-year
// ensemble forecasting. It fans region samples out to the measurement
// gateway with bounded concurrency and fans results back in before any
// statistics run.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"

	"github.com/darkskylab/skyglow-analysis/internal/domain"
	"github.com/darkskylab/skyglow-analysis/internal/forecast"
	"github.com/darkskylab/skyglow-analysis/internal/observability"
	"github.com/darkskylab/skyglow-analysis/internal/statistics"
	"github.com/darkskylab/skyglow-analysis/internal/trend"
)

// Sampler generates query locations for a region.
type Sampler interface {
	GenerateSamples(region domain.Region, targetCount int) ([]orb.Point, error)
}

// Publisher delivers completed reports to downstream consumers. Publish
// failures are absorbed: an analysis never fails because its report could
// not be delivered.
type Publisher interface {
	Publish(ctx context.Context, report domain.AnalysisReport) error
}

// HealthChecker is implemented by gateways that can verify their backing
// source is usable.
type HealthChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Options are the per-service analysis defaults, normally sourced from
// config.
type Options struct {
	FetchConcurrency int // concurrent gateway fetches per area analysis
	SampleTarget     int // default sample count when the request omits one
	MinValidSamples  int // below this many usable samples the batch fails
	ForecastYears    int // default horizon when the request omits one
	SeriesStartYear  int // default series start when the request omits one
}

func (o Options) withDefaults() Options {
	if o.FetchConcurrency <= 0 {
		o.FetchConcurrency = 8
	}
	if o.SampleTarget <= 0 {
		o.SampleTarget = 50
	}
	if o.MinValidSamples < statistics.MinSamples {
		o.MinValidSamples = statistics.MinSamples
	}
	if o.ForecastYears <= 0 {
		o.ForecastYears = 5
	}
	if o.SeriesStartYear <= 0 {
		o.SeriesStartYear = 2014
	}
	return o
}

// Service runs analyses against a measurement gateway. Each invocation
// operates on its own inputs and returns a fresh immutable report, so
// concurrent analyses are fully independent.
type Service struct {
	gateway   domain.MeasurementGateway
	sampler   Sampler
	publisher Publisher // nil disables publishing
	logger    *slog.Logger
	metrics   *observability.Metrics
	opts      Options
}

// New creates a Service. Pass a nil publisher to disable report publishing.
func New(gateway domain.MeasurementGateway, sampler Sampler, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Service {
	return &Service{
		gateway:   gateway,
		sampler:   sampler,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		opts:      opts.withDefaults(),
	}
}

// CheckReadiness reports whether the service can serve analyses. The engine
// itself is computation-only; readiness is whatever the gateway says about
// its backing source.
func (s *Service) CheckReadiness(ctx context.Context) error {
	if hc, ok := s.gateway.(HealthChecker); ok {
		return hc.CheckReadiness(ctx)
	}
	return nil
}

// AnalyzeArea samples the region, resolves each location against the
// gateway, and reduces the usable measurements to summary statistics.
// Locations the gateway cannot resolve become absent samples; the batch only
// fails when every location errored or too few usable samples remain.
func (s *Service) AnalyzeArea(ctx context.Context, region domain.Region, targetCount int) (domain.AnalysisReport, error) {
	start := time.Now()
	if targetCount <= 0 {
		targetCount = s.opts.SampleTarget
	}

	locations, err := s.sampler.GenerateSamples(region, targetCount)
	if err != nil {
		return s.fail(domain.AnalysisArea, err)
	}

	set, failed, err := s.collectSamples(ctx, region, locations)
	if err != nil {
		return s.fail(domain.AnalysisArea, err)
	}
	// An empty location set means the sampler gave up on degenerate
	// geometry, not that the gateway is down; it falls through to the
	// usable-count check below.
	if len(locations) > 0 && failed == len(locations) {
		return s.fail(domain.AnalysisArea,
			fmt.Errorf("%w: all %d locations failed", domain.ErrGatewayUnavailable, len(locations)))
	}
	if usable := set.UsableCount(); usable < s.opts.MinValidSamples {
		return s.fail(domain.AnalysisArea,
			fmt.Errorf("%w: %d usable samples of %d requested, need at least %d",
				domain.ErrInsufficientData, usable, len(locations), s.opts.MinValidSamples))
	}

	stats, err := statistics.Summarize(set.Measurements())
	if err != nil {
		return s.fail(domain.AnalysisArea, err)
	}

	report := s.envelope(domain.AnalysisArea)
	report.Area = &domain.AreaReport{
		SampleCount: len(set.Samples),
		UsableCount: set.UsableCount(),
		AbsentCount: set.AbsentCount(),
		Coverage:    set.Coverage(),
		Statistics:  stats,
	}

	s.finish(ctx, report, start)
	s.logger.Info("area analysis complete",
		"report_id", report.ID,
		"samples", report.Area.SampleCount,
		"usable", report.Area.UsableCount,
		"absent", report.Area.AbsentCount,
	)
	return report, nil
}

// AnalyzeTrend fetches the location's yearly series and classifies its
// direction, magnitude, and volatility.
func (s *Service) AnalyzeTrend(ctx context.Context, loc orb.Point, startYear, endYear int) (domain.AnalysisReport, error) {
	start := time.Now()
	startYear, endYear = s.yearRange(startYear, endYear)

	series, err := s.fetchSeries(ctx, loc, startYear, endYear)
	if err != nil {
		return s.fail(domain.AnalysisTrend, err)
	}

	result, err := trend.Analyze(series)
	if err != nil {
		return s.fail(domain.AnalysisTrend, err)
	}

	report := s.envelope(domain.AnalysisTrend)
	report.Trend = &domain.TrendReport{
		Location:  loc,
		StartYear: startYear,
		EndYear:   endYear,
		Trend:     result,
	}

	s.finish(ctx, report, start)
	s.logger.Info("trend analysis complete",
		"report_id", report.ID,
		"direction", result.Direction,
		"percent_change", result.PercentChange,
	)
	return report, nil
}

// ForecastLocation fetches the location's yearly series and runs the
// ensemble forecaster over it.
func (s *Service) ForecastLocation(ctx context.Context, loc orb.Point, startYear, endYear, yearsForward int) (domain.AnalysisReport, error) {
	start := time.Now()
	startYear, endYear = s.yearRange(startYear, endYear)
	if yearsForward <= 0 {
		yearsForward = s.opts.ForecastYears
	}

	series, err := s.fetchSeries(ctx, loc, startYear, endYear)
	if err != nil {
		return s.fail(domain.AnalysisForecast, err)
	}

	result, err := forecast.Forecast(series, yearsForward)
	if err != nil {
		return s.fail(domain.AnalysisForecast, err)
	}
	for _, m := range result.Models {
		s.metrics.ModelFits.WithLabelValues(m.Name, "fitted").Inc()
	}
	for _, name := range result.SkippedModels {
		s.metrics.ModelFits.WithLabelValues(name, "skipped").Inc()
	}

	report := s.envelope(domain.AnalysisForecast)
	report.Forecast = &domain.ForecastReport{
		Location:  loc,
		StartYear: startYear,
		EndYear:   endYear,
		Result:    result,
	}

	s.finish(ctx, report, start)
	s.logger.Info("forecast complete",
		"report_id", report.ID,
		"models", len(result.Models),
		"skipped", len(result.SkippedModels),
		"horizon_years", yearsForward,
	)
	return report, nil
}

// collectSamples fans the locations out to the gateway with bounded
// concurrency and waits for every request before returning. Per-location
// failures become absent samples; only context cancellation aborts the
// batch. The returned count is how many locations failed with a gateway
// error (as opposed to a clean no-data answer).
func (s *Service) collectSamples(ctx context.Context, region domain.Region, locations []orb.Point) (domain.SampleSet, int, error) {
	samples := make([]domain.Sample, len(locations))
	failures := make([]bool, len(locations))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.FetchConcurrency)
	for i, loc := range locations {
		g.Go(func() error {
			// Cancellation stops issuing further gateway requests; nothing
			// already fetched needs rollback.
			if err := gctx.Err(); err != nil {
				return err
			}
			s.metrics.SamplesRequested.Inc()

			m, ok, err := s.gateway.FetchPoint(gctx, loc)
			switch {
			case err != nil:
				s.logger.Warn("point fetch failed, treating as absent",
					"lon", loc.Lon(), "lat", loc.Lat(), "error", err)
				samples[i] = domain.Sample{Location: loc}
				failures[i] = true
				s.metrics.SamplesAbsent.Inc()
			case !ok:
				samples[i] = domain.Sample{Location: loc}
				s.metrics.SamplesAbsent.Inc()
			default:
				samples[i] = domain.Sample{Location: loc, Measurement: &m}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.SampleSet{}, 0, err
	}

	failed := 0
	for _, f := range failures {
		if f {
			failed++
		}
	}
	return domain.SampleSet{Region: region, Samples: samples}, failed, nil
}

func (s *Service) fetchSeries(ctx context.Context, loc orb.Point, startYear, endYear int) (domain.YearlySeries, error) {
	series, err := s.gateway.FetchSeries(ctx, loc, startYear, endYear)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrGatewayUnavailable, err)
	}
	return series, nil
}

// yearRange fills omitted bounds: the configured start year and the current
// year from the domain clock.
func (s *Service) yearRange(startYear, endYear int) (int, int) {
	if startYear <= 0 {
		startYear = s.opts.SeriesStartYear
	}
	if endYear <= 0 {
		endYear = domain.Now().Year()
	}
	return startYear, endYear
}

func (s *Service) envelope(kind domain.AnalysisKind) domain.AnalysisReport {
	return domain.AnalysisReport{
		ID:         uuid.NewString(),
		Kind:       kind,
		ComputedAt: domain.Now(),
	}
}

func (s *Service) fail(kind domain.AnalysisKind, err error) (domain.AnalysisReport, error) {
	s.metrics.AnalysesTotal.WithLabelValues(string(kind), "error").Inc()
	return domain.AnalysisReport{}, err
}

func (s *Service) finish(ctx context.Context, report domain.AnalysisReport, start time.Time) {
	s.metrics.AnalysesTotal.WithLabelValues(string(report.Kind), "success").Inc()
	s.metrics.AnalysisDuration.WithLabelValues(string(report.Kind)).Observe(time.Since(start).Seconds())

	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, report); err != nil {
		s.metrics.PublishErrors.Inc()
		s.logger.Warn("report publish failed", "report_id", report.ID, "kind", report.Kind, "error", err)
	}
}
