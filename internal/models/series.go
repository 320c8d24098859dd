package models

import (
	"sort"

	"github.com/irfndi/vix-alert-go/internal/utils"
)

// SeriesPoint represents one daily close in an index series.
type SeriesPoint struct {
	Date  Date    `json:"date"`
	Value float64 `json:"value"`
}

// TimeSeries is a daily series ordered by strictly increasing date.
// Functions in this module treat a TimeSeries as immutable once built;
// transformations return a new series.
type TimeSeries []SeriesPoint

// Len returns the number of points in the series.
func (ts TimeSeries) Len() int {
	return len(ts)
}

// IsEmpty reports whether the series has no points.
func (ts TimeSeries) IsEmpty() bool {
	return len(ts) == 0
}

// Last returns the most recent point, or false when the series is empty.
func (ts TimeSeries) Last() (SeriesPoint, bool) {
	if len(ts) == 0 {
		return SeriesPoint{}, false
	}
	return ts[len(ts)-1], true
}

// Values returns the close values in date order.
func (ts TimeSeries) Values() []float64 {
	values := make([]float64, len(ts))
	for i, p := range ts {
		values[i] = p.Value
	}
	return values
}

// Validate checks that dates are strictly increasing.
func (ts TimeSeries) Validate() error {
	for i := 1; i < len(ts); i++ {
		if !ts[i-1].Date.Before(ts[i].Date) {
			return utils.NewValidationErrorf("series dates not strictly increasing at index %d: %s then %s",
				i, ts[i-1].Date, ts[i].Date)
		}
	}
	return nil
}

// SortPointsByDate orders points by ascending date in place.
func SortPointsByDate(points []SeriesPoint) {
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
}

// Observation represents the latest raw close joined with its smoothed value.
type Observation struct {
	Date       Date    `json:"date"`
	Raw        float64 `json:"raw"`
	Smoothed   float64 `json:"smoothed"`
	AboveTrend bool    `json:"above_trend"`
}
