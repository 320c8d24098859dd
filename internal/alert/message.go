package alert

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/irfndi/vix-alert-go/internal/analysis"
	"github.com/irfndi/vix-alert-go/internal/models"
)

// Status lines appended to every alert. Wording is part of the contract;
// downstream chat filters key on it.
const (
	statusAbove = "🔴 VIX ABOVE EWMA — Risk conditions elevated."
	statusBelow = "🟢 VIX BELOW EWMA — Favorable for short-vol trades (per Sinclair)."
)

// Builder renders alert text from an observation and its market context.
type Builder struct {
	Lambda      float64
	RSIPeriod   int
	RangeWindow int
}

// NewBuilder creates a Builder that echoes the analysis parameters in its
// output labels.
func NewBuilder(lambda float64, rsiPeriod, rangeWindow int) *Builder {
	return &Builder{
		Lambda:      lambda,
		RSIPeriod:   rsiPeriod,
		RangeWindow: rangeWindow,
	}
}

// Build renders the alert body: date, raw and smoothed values to two
// decimals, any context statistics, a blank line, then the trend status.
func (b *Builder) Build(obs models.Observation, mc analysis.MarketContext) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "📅 %s\n", obs.Date)
	fmt.Fprintf(&sb, "VIX: %s\n", formatValue(obs.Raw))
	fmt.Fprintf(&sb, "EWMA(λ=%s): %s\n", decimal.NewFromFloat(b.Lambda).String(), formatValue(obs.Smoothed))

	if mc.ChangePercent != nil {
		fmt.Fprintf(&sb, "Δ1d: %s%%\n", formatSigned(*mc.ChangePercent))
	}
	if mc.RSI != nil {
		fmt.Fprintf(&sb, "RSI(%d): %s\n", b.RSIPeriod, formatValue(*mc.RSI))
	}
	if mc.RangeLow != nil && mc.RangeHigh != nil {
		fmt.Fprintf(&sb, "Range(%dd): %s - %s", b.RangeWindow, formatValue(*mc.RangeLow), formatValue(*mc.RangeHigh))
		if mc.RangePosition != nil {
			fmt.Fprintf(&sb, " (pos %s%%)", decimal.NewFromFloat(*mc.RangePosition*100).StringFixed(0))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	if obs.AboveTrend {
		sb.WriteString(statusAbove)
	} else {
		sb.WriteString(statusBelow)
	}

	return sb.String()
}

// FailureMessage renders the best-effort notification sent when a run fails.
func FailureMessage(err error) string {
	return fmt.Sprintf("⚠️ VIX alert failed: %v", err)
}

// formatValue renders a value with exactly two decimal places.
func formatValue(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// formatSigned renders a value with two decimal places and an explicit sign.
func formatSigned(v float64) string {
	s := decimal.NewFromFloat(v).StringFixed(2)
	if !strings.HasPrefix(s, "-") {
		s = "+" + s
	}
	return s
}
