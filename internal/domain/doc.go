// Package domain models night-sky brightness measurements and the derived
// analysis results produced from them.
//
// # Data Source
//
// Brightness values are upward radiance readings tied to a geographic
// location, typically derived from satellite composites (VIIRS DNB style
// products) or ground sensors. The engine does not parse raster or tile
// formats itself: a MeasurementGateway collaborator resolves a location to an
// already-georeferenced scalar value, and the concrete transport (HTTP API,
// local fixture file) lives in the adapter packages.
//
// # Conventions
//
// Values are non-negative scalars in the source product's radiance units.
// Higher means brighter, and brighter means more light pollution; a rising
// yearly series is therefore classified as "worsening". Logarithmic
// SQM-equivalent units and Bortle classes are presentation-layer conversions
// and are never computed here.
//
// Coordinates follow the orb convention of longitude-first points
// (orb.Point{lon, lat}). Regions come in two shapes: a closed polygon ring or
// a center point with a radius in meters.
//
// Quality tags (high, medium, low) grade per-measurement confidence as
// reported by the source. A location the gateway cannot resolve at all is an
// absent sample: it is excluded from statistics but counted for coverage
// reporting, which is how "no data available" stays distinguishable from a
// computation error.
//
// # Immutability
//
// Every derived result (StatisticsResult, TrendResult, EnsembleResult and the
// report envelopes) is a snapshot computed once from already-collected inputs
// and never mutated afterwards. A new analysis produces a new result graph,
// which is why concurrent analyses over overlapping regions need no locking.
package domain
