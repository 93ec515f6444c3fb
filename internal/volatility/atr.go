package volatility

import (
	"fmt"
	"math"

	"asxPaperBot/internal/ports"
)

// Method selects how true ranges are averaged into an ATR value.
type Method int

const (
	// MethodSMA averages the last `period` true ranges with a simple
	// moving average. This is the default and matches the rest of this
	// system; note that most charting platforms define ATR with
	// Wilder's smoothing instead, so values will not line up with a
	// broker terminal unless MethodWilder is selected.
	MethodSMA Method = iota
	// MethodWilder applies Wilder's exponential smoothing after seeding
	// with a simple average of the first `period` true ranges.
	MethodWilder
)

// Calculator computes ATR-derived stop, target and sizing values.
// It is stateless: every call is a pure function of its arguments.
type Calculator struct {
	method Method
}

// NewCalculator creates a calculator using the given averaging method.
func NewCalculator(method Method) *Calculator {
	return &Calculator{method: method}
}

// ATR computes the Average True Range over the last `period` bars.
//
// True Range for bar i (i>0) is the greatest of:
//  1. High[i] - Low[i]
//  2. |High[i] - Close[i-1]|
//  3. |Low[i] - Close[i-1]|
//
// Bar 0's true range is High[0] - Low[0].
func (c *Calculator) ATR(highs, lows, closes []float64, period int) (float64, error) {
	if len(highs) != len(lows) || len(highs) != len(closes) {
		return 0, fmt.Errorf("%w: series lengths differ (highs=%d lows=%d closes=%d)",
			ports.ErrInsufficientData, len(highs), len(lows), len(closes))
	}
	if period <= 0 {
		return 0, fmt.Errorf("%w: period must be positive, got %d", ports.ErrInsufficientData, period)
	}
	if len(highs) < period {
		return 0, fmt.Errorf("%w: need %d bars, got %d", ports.ErrInsufficientData, period, len(highs))
	}

	trueRanges := make([]float64, len(highs))
	trueRanges[0] = highs[0] - lows[0]
	for i := 1; i < len(highs); i++ {
		tr1 := highs[i] - lows[i]
		tr2 := math.Abs(highs[i] - closes[i-1])
		tr3 := math.Abs(lows[i] - closes[i-1])
		trueRanges[i] = math.Max(tr1, math.Max(tr2, tr3))
	}

	if c.method == MethodWilder {
		return wilderATR(trueRanges, period), nil
	}
	return smaATR(trueRanges, period), nil
}

// smaATR averages the last `period` true ranges.
func smaATR(trueRanges []float64, period int) float64 {
	sum := 0.0
	for _, tr := range trueRanges[len(trueRanges)-period:] {
		sum += tr
	}
	return sum / float64(period)
}

// wilderATR seeds with a simple average of the first `period` true
// ranges, then smooths the remainder.
func wilderATR(trueRanges []float64, period int) float64 {
	atr := 0.0
	for i := 0; i < period; i++ {
		atr += trueRanges[i]
	}
	atr /= float64(period)

	for i := period; i < len(trueRanges); i++ {
		atr = (atr*float64(period-1) + trueRanges[i]) / float64(period)
	}
	return atr
}
