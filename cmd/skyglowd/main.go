package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/darkskylab/skyglow-analysis/internal/adapter/fixture"
	httpadapter "github.com/darkskylab/skyglow-analysis/internal/adapter/http"
	kafkaadapter "github.com/darkskylab/skyglow-analysis/internal/adapter/kafka"
	"github.com/darkskylab/skyglow-analysis/internal/adapter/radiance"
	"github.com/darkskylab/skyglow-analysis/internal/analysis"
	"github.com/darkskylab/skyglow-analysis/internal/config"
	"github.com/darkskylab/skyglow-analysis/internal/domain"
	"github.com/darkskylab/skyglow-analysis/internal/observability"
	"github.com/darkskylab/skyglow-analysis/internal/sampler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	gateway, err := buildGateway(cfg, logger, metrics)
	if err != nil {
		logger.Error("failed to build measurement gateway", "error", err)
		os.Exit(1)
	}

	// Optional Kafka report publishing (feature-flagged via KAFKA_ENABLED).
	var publisher analysis.Publisher
	var closer interface{ Close() error }
	if cfg.KafkaEnabled {
		kp := kafkaadapter.NewPublisher(cfg, logger)
		publisher = kp
		closer = kp
		logger.Info("kafka report publishing enabled", "topic", cfg.KafkaReportsTopic)
	} else {
		logger.Info("kafka report publishing disabled")
	}

	seed := cfg.SampleSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	svc := analysis.New(gateway, sampler.NewWithBudget(seed, cfg.SampleMaxAttempts), publisher, logger, metrics, analysis.Options{
		FetchConcurrency: cfg.FetchConcurrency,
		SampleTarget:     cfg.SampleTarget,
		MinValidSamples:  cfg.MinValidSamples,
		ForecastYears:    cfg.ForecastYears,
		SeriesStartYear:  cfg.SeriesStartYear,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	metrics.ServiceUp.Set(1)

	<-ctx.Done()
	logger.Info("shutting down")
	metrics.ServiceUp.Set(0)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if closer != nil {
		if err := closer.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// buildGateway assembles the measurement gateway for the configured mode:
// a local fixture file or the radiance HTTP API behind an LRU cache.
func buildGateway(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (domain.MeasurementGateway, error) {
	switch cfg.GatewayMode {
	case config.GatewayModeFixture:
		gw, err := fixture.Load(cfg.FixturePath, cfg.FixtureMaxRangeM)
		if err != nil {
			return nil, err
		}
		logger.Info("fixture gateway loaded", "path", cfg.FixturePath, "max_range_m", cfg.FixtureMaxRangeM)
		return gw, nil
	default:
		client := radiance.NewClient(cfg.GatewayBaseURL, cfg.GatewayToken, cfg.GatewayTimeout, logger, metrics)
		logger.Info("radiance gateway configured",
			"base_url", cfg.GatewayBaseURL, "cache_size", cfg.GatewayCacheSize, "timeout", cfg.GatewayTimeout)
		return radiance.NewCachedGateway(client, cfg.GatewayCacheSize, metrics), nil
	}
}
