package risk

import (
	"fmt"
	"math"
	"sync"
	"time"

	"asxPaperBot/internal/analytics"
	"asxPaperBot/internal/domain"
	"asxPaperBot/internal/ports"
)

// SizerConfig holds configuration for the position sizer. All values
// are fixed at construction; each sizer owns one account's ledger, so
// multiple independent portfolios can coexist in a process.
type SizerConfig struct {
	AccountSize   float64 // Initial balance
	KellyFraction float64 // Fraction of full Kelly used, e.g. 0.25 for quarter-Kelly

	MaxPositionPct      float64 // Cap on any single position as a fraction of balance
	MaxRiskPerTradePct  float64 // Cap on capital at risk in one trade
	MaxPortfolioHeatPct float64 // Cap on summed at-risk capital across open positions

	// Drawdown tiers. Zero values fall back to the defaults below.
	AlertDrawdown      float64
	CriticalDrawdown   float64
	ShutdownDrawdown   float64
	AlertDailyDrawdown float64
}

// Default drawdown tiers.
const (
	DefaultAlertDrawdown      = 0.10
	DefaultCriticalDrawdown   = 0.15
	DefaultShutdownDrawdown   = 0.25
	DefaultAlertDailyDrawdown = 0.05
)

// Validate checks the configuration for internal consistency.
func (c *SizerConfig) Validate() error {
	if c.AccountSize <= 0 {
		return fmt.Errorf("%w: AccountSize must be positive, got %v", ports.ErrConfigurationError, c.AccountSize)
	}
	if c.KellyFraction <= 0 || c.KellyFraction > 1 {
		return fmt.Errorf("%w: KellyFraction must be in (0,1], got %v", ports.ErrConfigurationError, c.KellyFraction)
	}
	for name, pct := range map[string]float64{
		"MaxPositionPct":      c.MaxPositionPct,
		"MaxRiskPerTradePct":  c.MaxRiskPerTradePct,
		"MaxPortfolioHeatPct": c.MaxPortfolioHeatPct,
	} {
		if pct <= 0 || pct > 1 {
			return fmt.Errorf("%w: %s must be in (0,1], got %v", ports.ErrConfigurationError, name, pct)
		}
	}
	return nil
}

func (c *SizerConfig) applyTierDefaults() {
	if c.AlertDrawdown == 0 {
		c.AlertDrawdown = DefaultAlertDrawdown
	}
	if c.CriticalDrawdown == 0 {
		c.CriticalDrawdown = DefaultCriticalDrawdown
	}
	if c.ShutdownDrawdown == 0 {
		c.ShutdownDrawdown = DefaultShutdownDrawdown
	}
	if c.AlertDailyDrawdown == 0 {
		c.AlertDailyDrawdown = DefaultAlertDailyDrawdown
	}
}

// PositionSizer owns one account's capital-at-risk bookkeeping: balance,
// open positions, trade history and risk counters. Sizing is long-only,
// matching the system it serves; short entries are not modeled.
//
// All ledger mutation is serialized under one mutex so that concurrent
// opens cannot each pass the portfolio-heat check independently and
// jointly exceed the cap.
type PositionSizer struct {
	cfg SizerConfig

	mu                sync.Mutex
	balance           float64
	peakBalance       float64
	startDailyBalance float64
	dailyPnL          float64
	openPositions     map[string]*domain.Position
	history           []*domain.ClosedTrade
}

// NewPositionSizer creates a sizer with a fresh ledger at the configured
// account size.
func NewPositionSizer(cfg SizerConfig) (*PositionSizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyTierDefaults()
	return &PositionSizer{
		cfg:               cfg,
		balance:           cfg.AccountSize,
		peakBalance:       cfg.AccountSize,
		startDailyBalance: cfg.AccountSize,
		openPositions:     make(map[string]*domain.Position),
	}, nil
}

// Bound identifies which constraint, if any, determined the final size.
type Bound string

const (
	BoundNone          Bound = "none"
	BoundRiskBudget    Bound = "risk_budget"
	BoundPositionValue Bound = "position_value"
	BoundPortfolioHeat Bound = "portfolio_heat"
)

// SizeResult is the full breakdown of one sizing decision. Zero shares
// means "do not trade"; it is an expected outcome, not an error.
type SizeResult struct {
	Symbol       string
	Shares       int
	RiskAmount   float64 // shares * per-share risk
	PerShareRisk float64 // entry - stop

	Edge           float64 // 2*confidence - 1, clipped to >= 0
	KellyFraction  float64 // edge scaled by the configured Kelly fraction
	RawRiskBudget  float64 // balance * KellyFraction before the per-trade cap
	RiskBudget     float64 // budget actually used after the per-trade cap
	PositionValue  float64 // shares * entry
	PortfolioHeat  float64 // summed open risk before this trade, as a fraction of balance
	Bound          Bound   // constraint that determined the final size
}

// CalculateSize computes how many shares to buy for a long entry at
// `entry` with a protective stop at `stop`, given a signal confidence
// in [0,1]. Confidence is treated as an estimate of win probability:
// 0.5 maps to zero edge and sizes to zero, 1.0 to full edge.
//
// The budget is the fractional-Kelly risk allocation capped by the
// per-trade risk limit; shares derived from it are then clamped by the
// position-value cap and the remaining portfolio-heat headroom. The
// result names whichever cap bound the final size.
func (s *PositionSizer) CalculateSize(symbol string, entry, stop, confidence float64) (SizeResult, error) {
	if confidence < 0 || confidence > 1 {
		return SizeResult{}, fmt.Errorf("%w: got %v", ports.ErrInvalidConfidence, confidence)
	}
	perShareRisk := entry - stop
	if entry <= 0 || stop < 0 || perShareRisk <= 0 {
		return SizeResult{}, fmt.Errorf("%w: entry=%v stop=%v", ports.ErrInvalidStop, entry, stop)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res := SizeResult{
		Symbol:       symbol,
		PerShareRisk: perShareRisk,
		Bound:        BoundNone,
	}

	res.Edge = math.Max(0, 2*confidence-1)
	res.KellyFraction = res.Edge * s.cfg.KellyFraction
	res.RawRiskBudget = s.balance * res.KellyFraction

	fraction := res.KellyFraction
	if fraction > s.cfg.MaxRiskPerTradePct {
		fraction = s.cfg.MaxRiskPerTradePct
		res.Bound = BoundRiskBudget
	}
	res.RiskBudget = s.balance * fraction

	shares := int(math.Floor(res.RiskBudget / perShareRisk))

	// Position-value cap: shares * entry must stay within the per-position
	// share of the account.
	maxValue := s.balance * s.cfg.MaxPositionPct
	if float64(shares)*entry > maxValue {
		shares = int(math.Floor(maxValue / entry))
		res.Bound = BoundPositionValue
	}

	// Portfolio-heat cap: summed risk across open positions plus this
	// trade must stay within the heat budget.
	openRisk := s.openRiskLocked()
	if s.balance > 0 {
		res.PortfolioHeat = openRisk / s.balance
	}
	headroom := s.balance*s.cfg.MaxPortfolioHeatPct - openRisk
	if float64(shares)*perShareRisk > headroom {
		shares = int(math.Floor(headroom / perShareRisk))
		res.Bound = BoundPortfolioHeat
	}

	if shares < 0 {
		shares = 0
	}
	res.Shares = shares
	res.RiskAmount = float64(shares) * perShareRisk
	res.PositionValue = float64(shares) * entry
	return res, nil
}

// OpenPosition commits a sizing decision to the ledger. Balance is not
// debited: capital is reserved conceptually and realized P&L is booked
// only at close, keeping a single source of truth.
func (s *PositionSizer) OpenPosition(symbol string, entry float64, shares int, stop, target, riskAmount, confidence float64) (*domain.Position, error) {
	if shares <= 0 {
		return nil, fmt.Errorf("%w: shares must be positive, got %d", ports.ErrInvalidStop, shares)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.openPositions[symbol]; exists {
		return nil, fmt.Errorf("%w: %s", ports.ErrDuplicatePosition, symbol)
	}

	pos := &domain.Position{
		ID:         newID(),
		Symbol:     symbol,
		EntryPrice: entry,
		Shares:     shares,
		StopLoss:   stop,
		TakeProfit: target,
		RiskAmount: riskAmount,
		Confidence: confidence,
		EntryTime:  time.Now().UTC(),
	}
	s.openPositions[symbol] = pos
	return pos, nil
}

// ClosePosition exits an open position at `exit`, books the realized
// P&L into the balance and daily counters, and archives the trade.
func (s *PositionSizer) ClosePosition(symbol string, exit float64, reason domain.CloseReason) (*domain.ClosedTrade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, exists := s.openPositions[symbol]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ports.ErrPositionNotFound, symbol)
	}

	pnl := (exit - pos.EntryPrice) * float64(pos.Shares)
	s.balance += pnl
	if s.balance > s.peakBalance {
		s.peakBalance = s.balance
	}
	s.dailyPnL += pnl
	delete(s.openPositions, symbol)

	trade := &domain.ClosedTrade{
		ID:         pos.ID,
		Symbol:     pos.Symbol,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  exit,
		Shares:     pos.Shares,
		PnL:        pnl,
		Confidence: pos.Confidence,
		Reason:     reason,
		EntryTime:  pos.EntryTime,
		ExitTime:   time.Now().UTC(),
	}
	s.history = append(s.history, trade)
	return trade, nil
}

// ResetDailyTracking snapshots the balance as the new daily baseline.
// Invoked once per trading session by the caller's scheduler.
func (s *PositionSizer) ResetDailyTracking() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startDailyBalance = s.balance
	s.dailyPnL = 0
}

// Statistics computes aggregate metrics from the closed-trade history.
func (s *PositionSizer) Statistics() analytics.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return analytics.Compute(s.history, s.cfg.AccountSize)
}

// Balance returns the current account balance.
func (s *PositionSizer) Balance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

// PeakBalance returns the account's high-water mark.
func (s *PositionSizer) PeakBalance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peakBalance
}

// DailyPnL returns realized P&L since the last daily reset.
func (s *PositionSizer) DailyPnL() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dailyPnL
}

// OpenPositions returns a snapshot of the currently open positions.
func (s *PositionSizer) OpenPositions() []*domain.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Position, 0, len(s.openPositions))
	for _, pos := range s.openPositions {
		copied := *pos
		out = append(out, &copied)
	}
	return out
}

// History returns a snapshot of the closed-trade history in close order.
func (s *PositionSizer) History() []*domain.ClosedTrade {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.ClosedTrade, len(s.history))
	copy(out, s.history)
	return out
}

// openRiskLocked sums risk across open positions. Callers hold s.mu.
func (s *PositionSizer) openRiskLocked() float64 {
	total := 0.0
	for _, pos := range s.openPositions {
		total += pos.RiskAmount
	}
	return total
}
