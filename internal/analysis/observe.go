package analysis

import (
	"math"

	"github.com/irfndi/vix-alert-go/internal/models"
	"github.com/irfndi/vix-alert-go/internal/utils"
)

// LatestObservation joins the raw and smoothed series by date and returns the
// most recent date present in both. NaN values count as missing. AboveTrend
// is a strict comparison; a raw value equal to its smoothed value is not
// above trend.
func LatestObservation(raw, smoothed models.TimeSeries) (models.Observation, error) {
	smoothedByDate := make(map[models.Date]float64, smoothed.Len())
	for _, p := range smoothed {
		if math.IsNaN(p.Value) {
			continue
		}
		smoothedByDate[p.Date] = p.Value
	}

	var obs models.Observation
	found := false
	for _, p := range raw {
		if math.IsNaN(p.Value) {
			continue
		}
		smoothedValue, ok := smoothedByDate[p.Date]
		if !ok {
			continue
		}
		if !found || p.Date.After(obs.Date) {
			obs = models.Observation{
				Date:       p.Date,
				Raw:        p.Value,
				Smoothed:   smoothedValue,
				AboveTrend: p.Value > smoothedValue,
			}
			found = true
		}
	}

	if !found {
		return models.Observation{}, utils.NewValidationError("no overlapping observations between raw and smoothed series")
	}
	return obs, nil
}
