package domain

import "fmt"

// YearValue is one year's observation in a yearly brightness series.
type YearValue struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// YearlySeries is an ordered sequence of yearly values. Years must be
// strictly increasing; the series is the source of truth for trend and
// forecast work and is never reordered or deduplicated on the caller's
// behalf.
type YearlySeries []YearValue

// Validate fails fast on non-monotonic or duplicate years.
func (s YearlySeries) Validate() error {
	for i := 1; i < len(s); i++ {
		if s[i].Year <= s[i-1].Year {
			return fmt.Errorf("%w: year %d follows year %d, years must be strictly increasing",
				ErrMalformedSeries, s[i].Year, s[i-1].Year)
		}
	}
	return nil
}

// Values returns the series values in year order.
func (s YearlySeries) Values() []float64 {
	out := make([]float64, len(s))
	for i, yv := range s {
		out[i] = yv.Value
	}
	return out
}

// LastYear returns the final year of the series, 0 for an empty series.
func (s YearlySeries) LastYear() int {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Year
}
