package domain

import (
	"context"

	"github.com/paulmach/orb"
)

// MeasurementGateway supplies brightness data for query locations. The
// engine only defines this contract; the concrete transport (HTTP API,
// fixture file) is owned by the adapter packages.
//
// Both methods are pure data lookups: absence of data is not an error.
type MeasurementGateway interface {
	// FetchPoint resolves the location to a measurement, or ok=false when
	// the source has no data there. Errors are reserved for transport
	// failures (timeout, unreachable backend).
	FetchPoint(ctx context.Context, loc orb.Point) (m Measurement, ok bool, err error)

	// FetchSeries returns the yearly series for the location restricted to
	// [startYear, endYear]. A location without history yields an empty
	// series, not an error.
	FetchSeries(ctx context.Context, loc orb.Point, startYear, endYear int) (YearlySeries, error)
}
