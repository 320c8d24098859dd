package analysis

import (
	"github.com/irfndi/vix-alert-go/internal/models"
	"github.com/irfndi/vix-alert-go/internal/utils"
)

// Ewma computes the exponentially weighted moving average of values with
// persistence lambda in (0, 1). The first output equals the first input; each
// later output is (1-lambda)*value + lambda*previous. A lambda close to 1
// gives a slow trend, close to 0 tracks the input almost exactly.
func Ewma(values []float64, lambda float64) ([]float64, error) {
	if lambda <= 0 || lambda >= 1 {
		return nil, utils.NewValidationErrorf("lambda must be in (0, 1), got %v", lambda)
	}

	out := make([]float64, len(values))
	if len(values) == 0 {
		return out, nil
	}

	alpha := 1 - lambda
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + lambda*out[i-1]
	}
	return out, nil
}

// EwmaSeries smooths a series with Ewma, preserving dates. The result is
// co-indexed with the input.
func EwmaSeries(ts models.TimeSeries, lambda float64) (models.TimeSeries, error) {
	smoothed, err := Ewma(ts.Values(), lambda)
	if err != nil {
		return nil, err
	}

	out := make(models.TimeSeries, len(ts))
	for i, p := range ts {
		out[i] = models.SeriesPoint{Date: p.Date, Value: smoothed[i]}
	}
	return out, nil
}
