package domain

// Direction represents the side of a trade (long or short).
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// RiskStatus represents the portfolio-level risk tier.
// It is derived fresh on every check and never persisted as state.
type RiskStatus string

const (
	RiskNormal   RiskStatus = "NORMAL"
	RiskAlert    RiskStatus = "ALERT"
	RiskCritical RiskStatus = "CRITICAL"
	RiskShutdown RiskStatus = "SHUTDOWN"
)

// Severity orders risk statuses so callers can compare tiers.
func (s RiskStatus) Severity() int {
	switch s {
	case RiskAlert:
		return 1
	case RiskCritical:
		return 2
	case RiskShutdown:
		return 3
	default:
		return 0
	}
}

// CloseReason indicates why a position was closed.
type CloseReason string

const (
	CloseReasonStopLoss   CloseReason = "SL"
	CloseReasonTakeProfit CloseReason = "TP"
	CloseReasonSignal     CloseReason = "SIGNAL"
	CloseReasonManual     CloseReason = "MANUAL"
	CloseReasonShutdown   CloseReason = "SHUTDOWN" // Forced flatten when the risk tier demands it
	CloseReasonEndOfDay   CloseReason = "EOD"
)
