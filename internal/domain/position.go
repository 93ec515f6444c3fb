package domain

import "time"

// Position represents capital committed to a single symbol.
// At most one open position may exist per symbol at a time.
type Position struct {
	ID         string    // ULID assigned when the position is opened
	Symbol     string    // Instrument identifier (e.g., "BHP")
	EntryPrice float64   // Price at which the position was entered
	Shares     int       // Whole shares held, always >= 0
	StopLoss   float64   // Price level below entry that exits the trade
	TakeProfit float64   // Price level above entry that exits the trade
	RiskAmount float64   // Capital at risk: shares * (entry - stop)
	Confidence float64   // Signal confidence in [0,1] at entry
	EntryTime  time.Time // Timestamp when the position was entered
}
