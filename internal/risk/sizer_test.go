package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asxPaperBot/internal/analytics"
	"asxPaperBot/internal/domain"
	"asxPaperBot/internal/ports"
)

func testConfig() SizerConfig {
	return SizerConfig{
		AccountSize:         10000,
		KellyFraction:       0.25,
		MaxPositionPct:      0.10,
		MaxRiskPerTradePct:  0.02,
		MaxPortfolioHeatPct: 0.06,
	}
}

func newTestSizer(t *testing.T, cfg SizerConfig) *PositionSizer {
	t.Helper()
	s, err := NewPositionSizer(cfg)
	require.NoError(t, err)
	return s
}

func TestNewPositionSizer_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SizerConfig)
	}{
		{"zero account size", func(c *SizerConfig) { c.AccountSize = 0 }},
		{"negative kelly fraction", func(c *SizerConfig) { c.KellyFraction = -0.1 }},
		{"kelly fraction above one", func(c *SizerConfig) { c.KellyFraction = 1.5 }},
		{"zero position cap", func(c *SizerConfig) { c.MaxPositionPct = 0 }},
		{"heat cap above one", func(c *SizerConfig) { c.MaxPortfolioHeatPct = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			_, err := NewPositionSizer(cfg)
			assert.ErrorIs(t, err, ports.ErrConfigurationError)
		})
	}
}

// The worked example: $2.00 per-share risk, risk budget capped at 2% of
// 10000 = $200 giving 100 shares, then the 10% position-value cap
// ($1000 at $45) clamps to 22 shares and is reported as the bound.
func TestCalculateSize_PositionValueCapBinds(t *testing.T) {
	s := newTestSizer(t, testConfig())

	res, err := s.CalculateSize("BHP", 45.00, 43.00, 0.75)
	require.NoError(t, err)

	assert.Equal(t, 2.00, res.PerShareRisk)
	assert.Equal(t, 0.5, res.Edge)
	assert.Equal(t, 0.125, res.KellyFraction)
	assert.Equal(t, 1250.0, res.RawRiskBudget)
	assert.Equal(t, 200.0, res.RiskBudget)
	assert.Equal(t, 22, res.Shares)
	assert.Equal(t, BoundPositionValue, res.Bound)
	assert.Equal(t, 44.0, res.RiskAmount)
	assert.LessOrEqual(t, res.PositionValue, 10000*0.10)
}

func TestCalculateSize_InputValidation(t *testing.T) {
	s := newTestSizer(t, testConfig())

	_, err := s.CalculateSize("BHP", 43.00, 45.00, 0.75)
	assert.ErrorIs(t, err, ports.ErrInvalidStop, "stop above entry")

	_, err = s.CalculateSize("BHP", 45.00, 45.00, 0.75)
	assert.ErrorIs(t, err, ports.ErrInvalidStop, "zero per-share risk")

	_, err = s.CalculateSize("BHP", 45.00, 43.00, 1.2)
	assert.ErrorIs(t, err, ports.ErrInvalidConfidence)

	_, err = s.CalculateSize("BHP", 45.00, 43.00, -0.1)
	assert.ErrorIs(t, err, ports.ErrInvalidConfidence)
}

func TestCalculateSize_MonotoneInConfidence(t *testing.T) {
	s := newTestSizer(t, testConfig())

	prev := -1
	for _, conf := range []float64{0, 0.25, 0.5, 0.55, 0.6, 0.65, 0.7, 0.8, 0.9, 1.0} {
		res, err := s.CalculateSize("BHP", 45.00, 43.00, conf)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Shares, 0)
		assert.GreaterOrEqual(t, res.Shares, prev, "shares must not decrease as confidence rises (conf=%v)", conf)
		prev = res.Shares
	}

	// At or below coin-flip confidence there is no edge and no trade.
	res, err := s.CalculateSize("BHP", 45.00, 43.00, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Shares)
	assert.Equal(t, BoundNone, res.Bound)
}

func TestCalculateSize_PortfolioHeatBinds(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPortfolioHeatPct = 0.015
	s := newTestSizer(t, cfg)

	// First trade: budget 200 -> 200 shares, value cap 1000 -> 100 shares,
	// risk 100 within the 150 heat budget.
	first, err := s.CalculateSize("BHP", 10.00, 9.00, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 100, first.Shares)
	_, err = s.OpenPosition("BHP", 10.00, first.Shares, 9.00, 12.00, first.RiskAmount, 1.0)
	require.NoError(t, err)

	// Second trade: only 50 of heat headroom remains.
	second, err := s.CalculateSize("RIO", 10.00, 9.00, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 50, second.Shares)
	assert.Equal(t, BoundPortfolioHeat, second.Bound)
	_, err = s.OpenPosition("RIO", 10.00, second.Shares, 9.00, 12.00, second.RiskAmount, 1.0)
	require.NoError(t, err)

	// Heat budget exhausted: third trade sizes to zero.
	third, err := s.CalculateSize("CSL", 10.00, 9.00, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 0, third.Shares)
	assert.Equal(t, BoundPortfolioHeat, third.Bound)

	// The invariant: open risk never exceeds the heat cap.
	total := 0.0
	for _, pos := range s.OpenPositions() {
		total += pos.RiskAmount
	}
	assert.LessOrEqual(t, total, cfg.AccountSize*cfg.MaxPortfolioHeatPct)
}

func TestOpenClose_Lifecycle(t *testing.T) {
	s := newTestSizer(t, testConfig())

	pos, err := s.OpenPosition("BHP", 45.00, 22, 43.00, 49.00, 44.0, 0.75)
	require.NoError(t, err)
	assert.NotEmpty(t, pos.ID)
	assert.Equal(t, 10000.0, s.Balance(), "opening must not touch the balance")

	// Duplicate open is refused and leaves the ledger unchanged.
	_, err = s.OpenPosition("BHP", 46.00, 10, 44.00, 50.00, 20.0, 0.8)
	assert.ErrorIs(t, err, ports.ErrDuplicatePosition)
	assert.Len(t, s.OpenPositions(), 1)

	trade, err := s.ClosePosition("BHP", 47.00, domain.CloseReasonTakeProfit)
	require.NoError(t, err)
	assert.Equal(t, 44.0, trade.PnL)
	assert.Equal(t, 10044.0, s.Balance())
	assert.Equal(t, 10044.0, s.PeakBalance())
	assert.Equal(t, 44.0, s.DailyPnL())
	assert.Empty(t, s.OpenPositions())
	assert.Len(t, s.History(), 1)

	// Closing again fails and the balance stays put.
	_, err = s.ClosePosition("BHP", 48.00, domain.CloseReasonManual)
	assert.ErrorIs(t, err, ports.ErrPositionNotFound)
	assert.Equal(t, 10044.0, s.Balance())
}

func TestPeakBalance_Monotone(t *testing.T) {
	s := newTestSizer(t, testConfig())

	peaks := []float64{s.PeakBalance()}
	closes := []struct {
		entry, exit float64
	}{
		{10, 11}, // +100
		{10, 9},  // -100
		{10, 12}, // +200
		{10, 8},  // -200
	}
	for _, c := range closes {
		_, err := s.OpenPosition("BHP", c.entry, 100, c.entry-1, c.entry+2, 100, 0.7)
		require.NoError(t, err)
		_, err = s.ClosePosition("BHP", c.exit, domain.CloseReasonSignal)
		require.NoError(t, err)
		peaks = append(peaks, s.PeakBalance())
	}

	for i := 1; i < len(peaks); i++ {
		assert.GreaterOrEqual(t, peaks[i], peaks[i-1])
	}
	assert.GreaterOrEqual(t, s.PeakBalance(), s.Balance())
}

func TestResetDailyTracking(t *testing.T) {
	s := newTestSizer(t, testConfig())

	_, err := s.OpenPosition("BHP", 10, 100, 9, 12, 100, 0.7)
	require.NoError(t, err)
	_, err = s.ClosePosition("BHP", 9, domain.CloseReasonStopLoss)
	require.NoError(t, err)
	assert.Equal(t, -100.0, s.DailyPnL())

	s.ResetDailyTracking()
	assert.Equal(t, 0.0, s.DailyPnL())

	// After the reset, today's drawdown is measured from the new baseline.
	a := s.CheckRiskLimits()
	assert.Equal(t, 0.0, a.DailyDrawdown)
}

func TestStatistics_ReplayMatchesIncremental(t *testing.T) {
	s := newTestSizer(t, testConfig())

	closes := []struct {
		symbol      string
		entry, exit float64
		conf        float64
	}{
		{"BHP", 10, 11, 0.9},
		{"RIO", 10, 9.5, 0.55},
		{"CSL", 20, 21, 0.8},
	}
	for _, c := range closes {
		_, err := s.OpenPosition(c.symbol, c.entry, 50, c.entry-1, c.entry+2, 50, c.conf)
		require.NoError(t, err)
		_, err = s.ClosePosition(c.symbol, c.exit, domain.CloseReasonSignal)
		require.NoError(t, err)
	}

	incremental := s.Statistics()
	replayed := analytics.Compute(s.History(), testConfig().AccountSize)
	assert.Equal(t, incremental, replayed, "statistics must be reproducible from the archived history alone")
	assert.Equal(t, 3, incremental.TotalTrades)
}
