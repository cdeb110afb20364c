// Package radiance implements the measurement gateway against a radiance
// statistics HTTP API: point lookups and yearly series for a coordinate.
package radiance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/paulmach/orb"

	"github.com/darkskylab/skyglow-analysis/internal/domain"
	"github.com/darkskylab/skyglow-analysis/internal/observability"
)

// Client implements domain.MeasurementGateway over HTTP. A 404 from the
// upstream means "no data here" and maps to an absent sample, not an error.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a radiance API client. Pass an empty token when the
// upstream does not require one.
func NewClient(baseURL, token string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
		metrics: metrics,
	}
}

// FetchPoint resolves a location to its current brightness measurement.
func (c *Client) FetchPoint(ctx context.Context, loc orb.Point) (domain.Measurement, bool, error) {
	params := url.Values{
		"lat": {formatCoord(loc.Lat())},
		"lng": {formatCoord(loc.Lon())},
	}

	var resp pointResponse
	found, err := c.doRequest(ctx, "point", c.baseURL+"/v1/brightness/point?"+params.Encode(), &resp)
	if err != nil || !found {
		return domain.Measurement{}, false, err
	}

	return domain.Measurement{
		Location:   loc,
		Value:      resp.Value,
		Quality:    domain.QualityTag(resp.Quality),
		Source:     resp.Source,
		ObservedAt: resp.ObservedAt,
	}, true, nil
}

// FetchSeries returns the yearly brightness series for a location. A
// location without history yields an empty series.
func (c *Client) FetchSeries(ctx context.Context, loc orb.Point, startYear, endYear int) (domain.YearlySeries, error) {
	params := url.Values{
		"lat":        {formatCoord(loc.Lat())},
		"lng":        {formatCoord(loc.Lon())},
		"start_year": {strconv.Itoa(startYear)},
		"end_year":   {strconv.Itoa(endYear)},
	}

	var resp seriesResponse
	found, err := c.doRequest(ctx, "series", c.baseURL+"/v1/brightness/series?"+params.Encode(), &resp)
	if err != nil {
		return nil, err
	}
	if !found {
		return domain.YearlySeries{}, nil
	}

	series := make(domain.YearlySeries, 0, len(resp.Years))
	for _, y := range resp.Years {
		series = append(series, domain.YearValue{Year: y.Year, Value: y.Value})
	}
	return series, nil
}

// doRequest executes a GET and decodes the body into out. Returns
// found=false for a 404 without error.
func (c *Client) doRequest(ctx context.Context, op, fullURL string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.GatewayDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.GatewayRequests.WithLabelValues(op, "error").Inc()
		return false, fmt.Errorf("%s request: %w", op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.metrics.GatewayRequests.WithLabelValues(op, "absent").Inc()
		return false, nil
	case resp.StatusCode != http.StatusOK:
		c.metrics.GatewayRequests.WithLabelValues(op, "error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("radiance API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.GatewayRequests.WithLabelValues(op, "error").Inc()
		return false, fmt.Errorf("decode %s response: %w", op, err)
	}
	c.metrics.GatewayRequests.WithLabelValues(op, "success").Inc()
	return true, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// Radiance API response types.

type pointResponse struct {
	Value      float64   `json:"value"`
	Quality    string    `json:"quality"`
	Source     string    `json:"source"`
	ObservedAt time.Time `json:"observed_at"`
}

type seriesResponse struct {
	Years []struct {
		Year  int     `json:"year"`
		Value float64 `json:"value"`
	} `json:"years"`
}
