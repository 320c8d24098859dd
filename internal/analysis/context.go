package analysis

import (
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"

	"github.com/irfndi/vix-alert-go/internal/models"
)

// MarketContext carries supplementary statistics rendered under the core
// alert values. Fields are nil when the series is too short to compute them.
type MarketContext struct {
	ChangePercent *float64 `json:"change_percent,omitempty"`
	RSI           *float64 `json:"rsi,omitempty"`
	RangeLow      *float64 `json:"range_low,omitempty"`
	RangeHigh     *float64 `json:"range_high,omitempty"`
	RangePosition *float64 `json:"range_position,omitempty"`
}

// HasStats reports whether any statistic was computed.
func (mc MarketContext) HasStats() bool {
	return mc.ChangePercent != nil || mc.RSI != nil || mc.RangeLow != nil
}

// BuildMarketContext derives day-over-day change, RSI over rsiPeriod and the
// trailing rangeWindow high/low from the raw series. A series too short for a
// statistic leaves that field nil.
func BuildMarketContext(ts models.TimeSeries, rsiPeriod, rangeWindow int) MarketContext {
	values := ts.Values()
	mc := MarketContext{}

	if n := len(values); n >= 2 {
		prev := values[n-2]
		if prev != 0 {
			change := (values[n-1] - prev) / prev * 100
			mc.ChangePercent = &change
		}
	}

	if rsiPeriod >= 2 && len(values) >= rsiPeriod+1 {
		rsiIndicator := momentum.NewRsiWithPeriod[float64](rsiPeriod)
		result := helper.ChanToSlice(rsiIndicator.Compute(helper.SliceToChan(values)))
		if len(result) > 0 {
			rsi := result[len(result)-1]
			if !math.IsNaN(rsi) {
				mc.RSI = &rsi
			}
		}
	}

	window := values
	if rangeWindow > 0 && len(values) > rangeWindow {
		window = values[len(values)-rangeWindow:]
	}
	if len(window) >= 2 {
		low, high := window[0], window[0]
		for _, v := range window[1:] {
			if v < low {
				low = v
			}
			if v > high {
				high = v
			}
		}
		mc.RangeLow = &low
		mc.RangeHigh = &high

		// Last value sits inside the window, so position is already in [0, 1].
		if high > low {
			position := (values[len(values)-1] - low) / (high - low)
			mc.RangePosition = &position
		}
	}

	return mc
}
