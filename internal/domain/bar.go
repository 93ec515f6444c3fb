package domain

import "time"

// PriceBar represents a single OHLC bar supplied by the caller for
// volatility calculations. Bars are expected in chronological order.
type PriceBar struct {
	Time  time.Time // Start time of the interval
	Open  float64   // Opening price
	High  float64   // Highest price
	Low   float64   // Lowest price
	Close float64   // Closing price
}

// SplitBars unpacks a bar series into the parallel high/low/close
// slices the ATR calculation operates on.
func SplitBars(bars []PriceBar) (highs, lows, closes []float64) {
	highs = make([]float64, len(bars))
	lows = make([]float64, len(bars))
	closes = make([]float64, len(bars))
	for i, b := range bars {
		highs[i] = b.High
		lows[i] = b.Low
		closes[i] = b.Close
	}
	return highs, lows, closes
}
