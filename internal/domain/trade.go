package domain

import "time"

// ClosedTrade represents a completed round-trip trade. Records are
// immutable once appended to the history and are the sole input to
// the statistics calculations.
type ClosedTrade struct {
	ID         string      // ULID carried over from the position
	Symbol     string      // Instrument identifier
	EntryPrice float64     // Price at which the position was entered
	ExitPrice  float64     // Price at which the position was exited
	Shares     int         // Whole shares traded
	PnL        float64     // Realized profit and loss, signed
	Confidence float64     // Signal confidence at entry, kept for IC analysis
	Reason     CloseReason // Why the position was closed
	EntryTime  time.Time   // Timestamp when the position was entered
	ExitTime   time.Time   // Timestamp when the position was exited
}

// Return is the fractional return on the capital deployed in the trade.
// Returns 0 for a degenerate trade with no notional.
func (t *ClosedTrade) Return() float64 {
	notional := t.EntryPrice * float64(t.Shares)
	if notional == 0 {
		return 0
	}
	return t.PnL / notional
}
