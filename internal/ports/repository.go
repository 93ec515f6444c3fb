package ports

import (
	"context"
	"time"

	"asxPaperBot/internal/domain"
)

// TradeJournal defines the interface for persisting and retrieving
// completed trades. Stored rows carry enough columns to rebuild the
// statistics deterministically from storage alone.
type TradeJournal interface {
	// RecordTrade saves a completed trade.
	RecordTrade(ctx context.Context, trade *domain.ClosedTrade) error
	// Trades retrieves stored trades in exit-time order, up to a limit.
	// A limit <= 0 means no limit.
	Trades(ctx context.Context, limit int) ([]*domain.ClosedTrade, error)
	// TradesBySymbol retrieves the most recent trades for a symbol.
	TradesBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.ClosedTrade, error)
	// TotalPnL sums realized P&L across all stored trades.
	TotalPnL(ctx context.Context) (float64, error)
}

// RiskEvent is one audit row produced every time the risk limits are
// evaluated against the live ledger.
type RiskEvent struct {
	Time          time.Time
	Status        domain.RiskStatus
	MaxDrawdown   float64
	DailyDrawdown float64
	PortfolioHeat float64
	Balance       float64
}

// RiskEventRecorder defines the interface for persisting risk-limit
// evaluations for audit.
type RiskEventRecorder interface {
	// RecordRiskEvent saves one risk-limit evaluation.
	RecordRiskEvent(ctx context.Context, event *RiskEvent) error
	// RiskEvents retrieves stored events in time order, up to a limit.
	RiskEvents(ctx context.Context, limit int) ([]*RiskEvent, error)
}
