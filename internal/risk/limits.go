package risk

import "asxPaperBot/internal/domain"

// Assessment is the structured outcome of a risk-limit check: the tier,
// the numbers that produced it, and the actions the caller must take.
type Assessment struct {
	Status        domain.RiskStatus
	MaxDrawdown   float64 // Decline from the peak balance
	DailyDrawdown float64 // Decline from the session-start balance
	PortfolioHeat float64 // Summed open risk as a fraction of balance
	Balance       float64
	PeakBalance   float64
	Actions       []string
}

// CheckRiskLimits evaluates the portfolio tiers against the current
// ledger. It is a pure function of current state with no side effects
// and is safe to call arbitrarily often. The most severe matching tier
// wins.
func (s *PositionSizer) CheckRiskLimits() Assessment {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := Assessment{
		Status:      domain.RiskNormal,
		Balance:     s.balance,
		PeakBalance: s.peakBalance,
	}

	if s.peakBalance > 0 && s.balance < s.peakBalance {
		a.MaxDrawdown = (s.peakBalance - s.balance) / s.peakBalance
	}
	if s.startDailyBalance > 0 && s.balance < s.startDailyBalance {
		a.DailyDrawdown = (s.startDailyBalance - s.balance) / s.startDailyBalance
	}
	if s.balance > 0 {
		a.PortfolioHeat = s.openRiskLocked() / s.balance
	}

	switch {
	case a.MaxDrawdown >= s.cfg.ShutdownDrawdown:
		a.Status = domain.RiskShutdown
		a.Actions = []string{"close all positions", "halt trading"}
	case a.MaxDrawdown >= s.cfg.CriticalDrawdown:
		a.Status = domain.RiskCritical
		a.Actions = []string{"reduce position sizes", "no new trades"}
	case a.MaxDrawdown >= s.cfg.AlertDrawdown,
		a.DailyDrawdown >= s.cfg.AlertDailyDrawdown,
		a.PortfolioHeat >= s.cfg.MaxPortfolioHeatPct:
		a.Status = domain.RiskAlert
		a.Actions = []string{"tighten stops", "reduce new risk"}
	}

	return a
}
