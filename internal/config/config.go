package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Gateway modes.
const (
	GatewayModeFixture = "fixture"
	GatewayModeHTTP    = "http"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Measurement gateway configuration.
	GatewayMode      string        // "fixture" or "http"
	FixturePath      string
	FixtureMaxRangeM float64       // nearest-lookup cutoff in meters
	GatewayBaseURL   string
	GatewayToken     string
	GatewayTimeout   time.Duration
	GatewayCacheSize int

	// Analysis defaults.
	FetchConcurrency  int
	SampleTarget      int
	SampleSeed        int64 // 0 means time-seeded
	SampleMaxAttempts int   // rejection-sampling retry budget per point
	MinValidSamples   int
	ForecastYears     int
	SeriesStartYear   int

	// Optional Kafka report publishing.
	KafkaEnabled      bool
	KafkaBrokers      []string
	KafkaReportsTopic string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	gatewayTimeout, err := parseDuration("GATEWAY_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		GatewayMode:      envOrDefault("GATEWAY_MODE", GatewayModeFixture),
		FixturePath:      os.Getenv("FIXTURE_PATH"),
		FixtureMaxRangeM: parsePositiveFloat("FIXTURE_MAX_RANGE_M", 5000),
		GatewayBaseURL:   os.Getenv("GATEWAY_BASE_URL"),
		GatewayToken:     os.Getenv("GATEWAY_TOKEN"),
		GatewayTimeout:   gatewayTimeout,
		GatewayCacheSize: parsePositiveInt("GATEWAY_CACHE_SIZE", 1000),

		FetchConcurrency:  parsePositiveInt("FETCH_CONCURRENCY", 8),
		SampleTarget:      parsePositiveInt("SAMPLE_TARGET", 50),
		SampleSeed:        parseInt64("SAMPLE_SEED", 0),
		SampleMaxAttempts: parsePositiveInt("SAMPLE_MAX_ATTEMPTS", 20),
		MinValidSamples:   parsePositiveInt("MIN_VALID_SAMPLES", 2),
		ForecastYears:     parsePositiveInt("FORECAST_YEARS", 5),
		SeriesStartYear:   parsePositiveInt("SERIES_START_YEAR", 2014),

		KafkaEnabled:      os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:      parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaReportsTopic: envOrDefault("KAFKA_REPORTS_TOPIC", "skyglow-analysis-reports"),
	}

	switch cfg.GatewayMode {
	case GatewayModeFixture:
		if cfg.FixturePath == "" {
			return nil, errors.New("GATEWAY_MODE is fixture but FIXTURE_PATH is not set")
		}
	case GatewayModeHTTP:
		if cfg.GatewayBaseURL == "" {
			return nil, errors.New("GATEWAY_MODE is http but GATEWAY_BASE_URL is not set")
		}
	default:
		return nil, fmt.Errorf("invalid GATEWAY_MODE %q, want %q or %q", cfg.GatewayMode, GatewayModeFixture, GatewayModeHTTP)
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaReportsTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_REPORTS_TOPIC is empty")
		}
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func parseInt64(key string, fallback int64) int64 {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func parsePositiveFloat(key string, fallback float64) float64 {
	if s := os.Getenv(key); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
			return f
		}
	}
	return fallback
}

func parseBrokers(raw string) []string {
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
