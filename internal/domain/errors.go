package domain

import "errors"

var (
	// ErrInsufficientGeometry indicates a degenerate region: a polygon with
	// fewer than 3 distinct vertices or zero area, or a non-positive radius.
	ErrInsufficientGeometry = errors.New("insufficient geometry")

	// ErrInsufficientData indicates fewer valid samples than the minimum
	// required for area statistics.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInsufficientSeries indicates a yearly series too short for trend
	// analysis (fewer than 2 years).
	ErrInsufficientSeries = errors.New("insufficient series")

	// ErrInsufficientHistory indicates a yearly series too short for
	// forecasting (fewer than 3 years).
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrMalformedSeries indicates a yearly series whose years are not
	// strictly increasing. Malformed input fails fast rather than being
	// silently reordered or deduplicated.
	ErrMalformedSeries = errors.New("malformed series")

	// ErrModelFit indicates a single forecasting model could not be fit.
	// Per-model failures are absorbed by the forecaster and never surfaced
	// to the caller unless every model fails.
	ErrModelFit = errors.New("model fit failed")

	// ErrGatewayUnavailable indicates the measurement source failed for an
	// entire batch. A failure at a single location is downgraded to an
	// absent sample instead.
	ErrGatewayUnavailable = errors.New("measurement gateway unavailable")
)
