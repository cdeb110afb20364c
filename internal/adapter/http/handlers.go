package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/paulmach/orb"

	"github.com/darkskylab/skyglow-analysis/internal/domain"
)

// regionPayload is the wire form of a region: either a polygon vertex list
// or a center plus radius. Coordinates are [lon, lat] pairs.
type regionPayload struct {
	Polygon      [][]float64 `json:"polygon,omitempty"`
	Center       []float64   `json:"center,omitempty"`
	RadiusMeters float64     `json:"radius_meters,omitempty"`
}

func (p regionPayload) toRegion() (domain.Region, error) {
	switch {
	case len(p.Polygon) > 0:
		ring := make(orb.Ring, 0, len(p.Polygon))
		for _, v := range p.Polygon {
			if len(v) != 2 {
				return nil, fmt.Errorf("polygon vertex must be a [lon, lat] pair, got %d values", len(v))
			}
			ring = append(ring, orb.Point{v[0], v[1]})
		}
		return domain.PolygonRegion{Ring: ring}, nil
	case len(p.Center) == 2:
		return domain.PointRegion{
			Center:       orb.Point{p.Center[0], p.Center[1]},
			RadiusMeters: p.RadiusMeters,
		}, nil
	default:
		return nil, errors.New("region requires either polygon or center with radius_meters")
	}
}

type areaRequest struct {
	Region      regionPayload `json:"region"`
	SampleCount int           `json:"sample_count,omitempty"`
}

type trendRequest struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	StartYear int     `json:"start_year,omitempty"`
	EndYear   int     `json:"end_year,omitempty"`
}

type forecastRequest struct {
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	StartYear    int     `json:"start_year,omitempty"`
	EndYear      int     `json:"end_year,omitempty"`
	YearsForward int     `json:"years_forward,omitempty"`
}

func (s *Server) handleArea(w http.ResponseWriter, r *http.Request) {
	var req areaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	region, err := req.Region.toRegion()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	report, err := s.service.AnalyzeArea(r.Context(), region, req.SampleCount)
	if err != nil {
		s.writeAnalysisError(w, domain.AnalysisArea, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	var req trendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	report, err := s.service.AnalyzeTrend(r.Context(), orb.Point{req.Lng, req.Lat}, req.StartYear, req.EndYear)
	if err != nil {
		s.writeAnalysisError(w, domain.AnalysisTrend, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	var req forecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	report, err := s.service.ForecastLocation(r.Context(), orb.Point{req.Lng, req.Lat},
		req.StartYear, req.EndYear, req.YearsForward)
	if err != nil {
		s.writeAnalysisError(w, domain.AnalysisForecast, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// writeAnalysisError maps domain error kinds to HTTP statuses so clients can
// distinguish "no data available" (422) from malformed input (400) and from
// an unavailable measurement source (502).
func (s *Server) writeAnalysisError(w http.ResponseWriter, kind domain.AnalysisKind, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInsufficientGeometry),
		errors.Is(err, domain.ErrMalformedSeries):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientData),
		errors.Is(err, domain.ErrInsufficientSeries),
		errors.Is(err, domain.ErrInsufficientHistory):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrGatewayUnavailable):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("analysis failed", "kind", kind, "error", err)
	}
	writeError(w, status, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
