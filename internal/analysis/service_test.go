package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkskylab/skyglow-analysis/internal/domain"
	"github.com/darkskylab/skyglow-analysis/internal/observability"
	"github.com/darkskylab/skyglow-analysis/internal/sampler"
)

// --- test doubles ---

// stubGateway resolves every point the same way and serves one canned series.
// behaviors can be overridden per call site.
type stubGateway struct {
	mu sync.Mutex

	pointFn   func(loc orb.Point) (domain.Measurement, bool, error)
	series    domain.YearlySeries
	seriesErr error

	pointCalls int
}

func (g *stubGateway) FetchPoint(ctx context.Context, loc orb.Point) (domain.Measurement, bool, error) {
	g.mu.Lock()
	g.pointCalls++
	g.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return domain.Measurement{}, false, err
	}
	if g.pointFn == nil {
		return domain.Measurement{Location: loc, Value: 18.0, Quality: domain.QualityHigh, Source: "stub"}, true, nil
	}
	return g.pointFn(loc)
}

func (g *stubGateway) FetchSeries(ctx context.Context, loc orb.Point, startYear, endYear int) (domain.YearlySeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g.seriesErr != nil {
		return nil, g.seriesErr
	}
	return g.series, nil
}

func (g *stubGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pointCalls
}

type recordingPublisher struct {
	mu      sync.Mutex
	reports []domain.AnalysisReport
	err     error
}

func (p *recordingPublisher) Publish(ctx context.Context, report domain.AnalysisReport) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.reports = append(p.reports, report)
	return nil
}

func (p *recordingPublisher) published() []domain.AnalysisReport {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reports
}

func newTestService(t *testing.T, gateway domain.MeasurementGateway, publisher Publisher, opts Options) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(gateway, sampler.New(1), publisher, logger, observability.NewMetricsForTesting(), opts)
}

func testRegion() domain.Region {
	return domain.PointRegion{Center: orb.Point{-97.7431, 30.2672}, RadiusMeters: 5000}
}

// --- area ---

func TestAnalyzeArea(t *testing.T) {
	gateway := &stubGateway{}
	publisher := &recordingPublisher{}
	svc := newTestService(t, gateway, publisher, Options{})

	report, err := svc.AnalyzeArea(context.Background(), testRegion(), 20)
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, domain.AnalysisArea, report.Kind)
	assert.False(t, report.ComputedAt.IsZero())
	require.NotNil(t, report.Area)
	assert.Nil(t, report.Trend)
	assert.Nil(t, report.Forecast)

	assert.Equal(t, 20, report.Area.SampleCount)
	assert.Equal(t, 20, report.Area.UsableCount)
	assert.Zero(t, report.Area.AbsentCount)
	assert.Equal(t, 1.0, report.Area.Coverage)
	assert.Equal(t, 20, report.Area.Statistics.Count)
	assert.Equal(t, 20, gateway.calls())

	require.Len(t, publisher.published(), 1)
	assert.Equal(t, report.ID, publisher.published()[0].ID)
}

func TestAnalyzeAreaPartialCoverage(t *testing.T) {
	// Points west of the center have no data; everything else resolves.
	gateway := &stubGateway{pointFn: func(loc orb.Point) (domain.Measurement, bool, error) {
		if loc.Lon() < -97.7431 {
			return domain.Measurement{}, false, nil
		}
		return domain.Measurement{Location: loc, Value: 17.5, Quality: domain.QualityMedium, Source: "stub"}, true, nil
	}}
	svc := newTestService(t, gateway, nil, Options{})

	report, err := svc.AnalyzeArea(context.Background(), testRegion(), 30)
	require.NoError(t, err)

	assert.Equal(t, 30, report.Area.SampleCount)
	assert.Greater(t, report.Area.AbsentCount, 0)
	assert.Equal(t, 30-report.Area.AbsentCount, report.Area.UsableCount)
	assert.InDelta(t, float64(report.Area.UsableCount)/30, report.Area.Coverage, 1e-12)
}

func TestAnalyzeAreaMixedFailures(t *testing.T) {
	// Some locations error; the rest resolve. The batch survives and reports
	// the failures as absent samples.
	n := 0
	var mu sync.Mutex
	gateway := &stubGateway{pointFn: func(loc orb.Point) (domain.Measurement, bool, error) {
		mu.Lock()
		n++
		flaky := n%3 == 0
		mu.Unlock()
		if flaky {
			return domain.Measurement{}, false, errors.New("upstream timeout")
		}
		return domain.Measurement{Location: loc, Value: 18.2, Quality: domain.QualityLow, Source: "stub"}, true, nil
	}}
	svc := newTestService(t, gateway, nil, Options{})

	report, err := svc.AnalyzeArea(context.Background(), testRegion(), 12)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Area.AbsentCount)
	assert.Equal(t, 8, report.Area.UsableCount)
}

func TestAnalyzeAreaAllFailed(t *testing.T) {
	gateway := &stubGateway{pointFn: func(orb.Point) (domain.Measurement, bool, error) {
		return domain.Measurement{}, false, errors.New("connection refused")
	}}
	svc := newTestService(t, gateway, nil, Options{})

	_, err := svc.AnalyzeArea(context.Background(), testRegion(), 10)
	assert.ErrorIs(t, err, domain.ErrGatewayUnavailable)
}

func TestAnalyzeAreaTooFewUsable(t *testing.T) {
	// Exactly one location resolves, the rest legitimately have no data.
	first := true
	var mu sync.Mutex
	gateway := &stubGateway{pointFn: func(loc orb.Point) (domain.Measurement, bool, error) {
		mu.Lock()
		defer mu.Unlock()
		if first {
			first = false
			return domain.Measurement{Location: loc, Value: 18, Quality: domain.QualityHigh, Source: "stub"}, true, nil
		}
		return domain.Measurement{}, false, nil
	}}
	svc := newTestService(t, gateway, nil, Options{})

	_, err := svc.AnalyzeArea(context.Background(), testRegion(), 10)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestAnalyzeAreaSamplerExhausted(t *testing.T) {
	// A valid but vanishingly thin polygon exhausts the rejection budget and
	// yields zero locations. That is a data problem, not a gateway outage:
	// the gateway must never be blamed for points that were never fetched.
	gateway := &stubGateway{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(gateway, sampler.NewWithBudget(1, 1), nil, logger, observability.NewMetricsForTesting(), Options{})

	sliver := domain.PolygonRegion{Ring: orb.Ring{{0, 0}, {10, 10}, {10.0000001, 10}, {0, 0}}}
	require.NoError(t, sliver.Validate())

	_, err := svc.AnalyzeArea(context.Background(), sliver, 10)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
	assert.NotErrorIs(t, err, domain.ErrGatewayUnavailable)
	assert.Zero(t, gateway.calls())
}

func TestAnalyzeAreaInvalidRegion(t *testing.T) {
	svc := newTestService(t, &stubGateway{}, nil, Options{})

	region := domain.PointRegion{Center: orb.Point{0, 0}, RadiusMeters: -1}
	_, err := svc.AnalyzeArea(context.Background(), region, 10)
	assert.ErrorIs(t, err, domain.ErrInsufficientGeometry)
}

func TestAnalyzeAreaCancelled(t *testing.T) {
	svc := newTestService(t, &stubGateway{}, nil, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.AnalyzeArea(ctx, testRegion(), 10)
	assert.ErrorIs(t, err, context.Canceled)
}

// --- trend ---

func TestAnalyzeTrend(t *testing.T) {
	gateway := &stubGateway{series: domain.YearlySeries{
		{Year: 2019, Value: 18.0}, {Year: 2020, Value: 18.2}, {Year: 2021, Value: 18.6}, {Year: 2022, Value: 19.0}, {Year: 2023, Value: 19.5},
	}}
	publisher := &recordingPublisher{}
	svc := newTestService(t, gateway, publisher, Options{})

	loc := orb.Point{-97.7431, 30.2672}
	report, err := svc.AnalyzeTrend(context.Background(), loc, 2019, 2023)
	require.NoError(t, err)

	assert.Equal(t, domain.AnalysisTrend, report.Kind)
	require.NotNil(t, report.Trend)
	assert.Equal(t, loc, report.Trend.Location)
	assert.Equal(t, 2019, report.Trend.StartYear)
	assert.Equal(t, 2023, report.Trend.EndYear)
	assert.Equal(t, domain.TrendWorsening, report.Trend.Trend.Direction)
	require.Len(t, publisher.published(), 1)
}

func TestAnalyzeTrendDefaultsYearRange(t *testing.T) {
	gateway := &stubGateway{series: domain.YearlySeries{{Year: 2019, Value: 1}, {Year: 2020, Value: 2}}}
	svc := newTestService(t, gateway, nil, Options{SeriesStartYear: 2014})

	report, err := svc.AnalyzeTrend(context.Background(), orb.Point{0, 0}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2014, report.Trend.StartYear)
	assert.Equal(t, domain.Now().Year(), report.Trend.EndYear)
}

func TestAnalyzeTrendEmptySeries(t *testing.T) {
	gateway := &stubGateway{series: domain.YearlySeries{}}
	svc := newTestService(t, gateway, nil, Options{})

	_, err := svc.AnalyzeTrend(context.Background(), orb.Point{0, 0}, 2019, 2023)
	assert.ErrorIs(t, err, domain.ErrInsufficientSeries)
}

func TestAnalyzeTrendGatewayDown(t *testing.T) {
	gateway := &stubGateway{seriesErr: errors.New("dial tcp: connection refused")}
	svc := newTestService(t, gateway, nil, Options{})

	_, err := svc.AnalyzeTrend(context.Background(), orb.Point{0, 0}, 2019, 2023)
	assert.ErrorIs(t, err, domain.ErrGatewayUnavailable)
}

func TestAnalyzeTrendCancellationPassesThrough(t *testing.T) {
	gateway := &stubGateway{seriesErr: fmt.Errorf("fetch: %w", context.Canceled)}
	svc := newTestService(t, gateway, nil, Options{})

	_, err := svc.AnalyzeTrend(context.Background(), orb.Point{0, 0}, 2019, 2023)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrGatewayUnavailable)
}

// --- forecast ---

func TestForecastLocation(t *testing.T) {
	gateway := &stubGateway{series: domain.YearlySeries{
		{Year: 2019, Value: 18.0}, {Year: 2020, Value: 18.2}, {Year: 2021, Value: 18.6}, {Year: 2022, Value: 19.0}, {Year: 2023, Value: 19.5},
	}}
	svc := newTestService(t, gateway, nil, Options{})

	report, err := svc.ForecastLocation(context.Background(), orb.Point{-97.7, 30.3}, 2019, 2023, 3)
	require.NoError(t, err)

	assert.Equal(t, domain.AnalysisForecast, report.Kind)
	require.NotNil(t, report.Forecast)
	assert.Len(t, report.Forecast.Result.Ensemble.Predictions, 3)
	assert.NotEmpty(t, report.Forecast.Result.Models)
}

func TestForecastLocationDefaultHorizon(t *testing.T) {
	gateway := &stubGateway{series: domain.YearlySeries{
		{Year: 2020, Value: 10}, {Year: 2021, Value: 11}, {Year: 2022, Value: 12}, {Year: 2023, Value: 13},
	}}
	svc := newTestService(t, gateway, nil, Options{ForecastYears: 4})

	report, err := svc.ForecastLocation(context.Background(), orb.Point{0, 0}, 2020, 2023, 0)
	require.NoError(t, err)
	assert.Len(t, report.Forecast.Result.Ensemble.Predictions, 4)
}

func TestForecastLocationInsufficientHistory(t *testing.T) {
	gateway := &stubGateway{series: domain.YearlySeries{{Year: 2022, Value: 1}, {Year: 2023, Value: 2}}}
	svc := newTestService(t, gateway, nil, Options{})

	_, err := svc.ForecastLocation(context.Background(), orb.Point{0, 0}, 2022, 2023, 2)
	assert.ErrorIs(t, err, domain.ErrInsufficientHistory)
}

// --- publishing ---

func TestPublishFailureIsAbsorbed(t *testing.T) {
	gateway := &stubGateway{}
	publisher := &recordingPublisher{err: errors.New("broker unreachable")}
	svc := newTestService(t, gateway, publisher, Options{})

	report, err := svc.AnalyzeArea(context.Background(), testRegion(), 10)
	require.NoError(t, err, "analysis succeeds even when publishing fails")
	assert.NotEmpty(t, report.ID)
}

func TestNilPublisher(t *testing.T) {
	svc := newTestService(t, &stubGateway{}, nil, Options{})

	_, err := svc.AnalyzeArea(context.Background(), testRegion(), 10)
	require.NoError(t, err)
}

// --- readiness ---

type readyGateway struct {
	stubGateway
	readyErr error
}

func (g *readyGateway) CheckReadiness(ctx context.Context) error { return g.readyErr }

func TestCheckReadiness(t *testing.T) {
	t.Run("gateway without health check is always ready", func(t *testing.T) {
		svc := newTestService(t, &stubGateway{}, nil, Options{})
		assert.NoError(t, svc.CheckReadiness(context.Background()))
	})

	t.Run("delegates to the gateway", func(t *testing.T) {
		g := &readyGateway{readyErr: errors.New("fixture empty")}
		svc := newTestService(t, g, nil, Options{})
		assert.Error(t, svc.CheckReadiness(context.Background()))

		g.readyErr = nil
		assert.NoError(t, svc.CheckReadiness(context.Background()))
	})
}
