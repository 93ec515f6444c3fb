package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asxPaperBot/config"
	"asxPaperBot/internal/domain"
	"asxPaperBot/internal/ports"
	"asxPaperBot/internal/risk"
	"asxPaperBot/internal/volatility"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// memJournal is an in-memory ports.TradeJournal and ports.RiskEventRecorder.
type memJournal struct {
	mu     sync.Mutex
	trades []*domain.ClosedTrade
	events []*ports.RiskEvent
}

func (m *memJournal) RecordTrade(ctx context.Context, trade *domain.ClosedTrade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades = append(m.trades, trade)
	return nil
}

func (m *memJournal) Trades(ctx context.Context, limit int) ([]*domain.ClosedTrade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]*domain.ClosedTrade(nil), m.trades...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memJournal) TradesBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.ClosedTrade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.ClosedTrade, 0)
	for _, t := range m.trades {
		if t.Symbol == symbol {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memJournal) TotalPnL(ctx context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total float64
	for _, t := range m.trades {
		total += t.PnL
	}
	return total, nil
}

func (m *memJournal) RecordRiskEvent(ctx context.Context, event *ports.RiskEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *memJournal) RiskEvents(ctx context.Context, limit int) ([]*ports.RiskEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*ports.RiskEvent(nil), m.events...), nil
}

func testServiceConfig() *config.Config {
	return &config.Config{
		AccountSize:         10000,
		KellyFraction:       0.25,
		MaxPositionPct:      0.10,
		MaxRiskPerTradePct:  0.02,
		MaxPortfolioHeatPct: 0.06,
		ATRPeriod:           3,
		ATRStopMultiplier:   2.0,
		RiskRewardRatio:     2.0,
	}
}

func setupService(t *testing.T) (*PaperTradingService, *memJournal) {
	t.Helper()
	cfg := testServiceConfig()
	sizer, err := risk.NewPositionSizer(risk.SizerConfig{
		AccountSize:         cfg.AccountSize,
		KellyFraction:       cfg.KellyFraction,
		MaxPositionPct:      cfg.MaxPositionPct,
		MaxRiskPerTradePct:  cfg.MaxRiskPerTradePct,
		MaxPortfolioHeatPct: cfg.MaxPortfolioHeatPct,
	})
	require.NoError(t, err)

	journal := &memJournal{}
	svc, err := NewPaperTradingService(cfg, &mockLogger{},
		sizer, volatility.NewCalculator(volatility.MethodSMA), journal, journal, nil)
	require.NoError(t, err)
	return svc, journal
}

func TestNewPaperTradingService_MissingDependencies(t *testing.T) {
	_, err := NewPaperTradingService(nil, nil, nil, nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestHandleSignal_OpensPosition(t *testing.T) {
	svc, journal := setupService(t)
	ctx := context.Background()

	out, err := svc.HandleSignal(ctx, Signal{
		Time:       time.Now().UTC(),
		Symbol:     "BHP",
		Entry:      45.00,
		Stop:       43.00,
		Confidence: 0.75,
	})
	require.NoError(t, err)
	assert.False(t, out.Rejected)
	require.NotNil(t, out.Opened)
	assert.Equal(t, 22, out.Opened.Shares)
	assert.Equal(t, 43.00, out.Opened.StopLoss)
	// Target is risk-reward multiple of the stop distance above entry.
	assert.InDelta(t, 49.00, out.Opened.TakeProfit, 1e-9)
	assert.Equal(t, domain.RiskNormal, out.Assessment.Status)

	// Every handled signal records a risk evaluation for audit.
	assert.Len(t, journal.events, 1)
}

func TestHandleSignal_ATRStopFromBars(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	// Three bars with a constant true range of 1.0 give ATR 1.0 and a
	// stop 2 ATR below entry.
	bars := []domain.PriceBar{
		{High: 50.0, Low: 49.0, Close: 49.5},
		{High: 50.0, Low: 49.0, Close: 49.5},
		{High: 50.0, Low: 49.0, Close: 49.5},
	}
	out, err := svc.HandleSignal(ctx, Signal{
		Time:       time.Now().UTC(),
		Symbol:     "CSL",
		Entry:      50.0,
		Stop:       40.0, // Should be ignored in favor of the ATR stop
		Confidence: 0.8,
		Bars:       bars,
	})
	require.NoError(t, err)
	require.NotNil(t, out.Opened)
	assert.InDelta(t, 48.0, out.Opened.StopLoss, 1e-9)
	assert.InDelta(t, 54.0, out.Opened.TakeProfit, 1e-9)
}

func TestHandleSignal_DuplicateSymbol(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	sig := Signal{Time: time.Now().UTC(), Symbol: "BHP", Entry: 45.00, Stop: 43.00, Confidence: 0.75}
	out, err := svc.HandleSignal(ctx, sig)
	require.NoError(t, err)
	require.NotNil(t, out.Opened)

	_, err = svc.HandleSignal(ctx, sig)
	assert.ErrorIs(t, err, ports.ErrDuplicatePosition)
}

func TestHandleSignal_ZeroSizeIsSoftReject(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	// Confidence 0.5 is zero edge: no trade, but not an error.
	out, err := svc.HandleSignal(ctx, Signal{
		Time: time.Now().UTC(), Symbol: "BHP", Entry: 45.00, Stop: 43.00, Confidence: 0.5,
	})
	require.NoError(t, err)
	assert.True(t, out.Rejected)
	assert.Equal(t, string(risk.BoundNone), out.RejectCause)
	assert.Nil(t, out.Opened)
}

func TestHandleSignal_InvalidInputs(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.HandleSignal(ctx, Signal{Symbol: "BHP", Entry: 45.00, Stop: 43.00, Confidence: 1.5})
	assert.ErrorIs(t, err, ports.ErrInvalidConfidence)

	_, err = svc.HandleSignal(ctx, Signal{Symbol: "BHP", Entry: 45.00, Stop: 46.00, Confidence: 0.75})
	assert.ErrorIs(t, err, ports.ErrInvalidStop)
}

func TestHandleExit_JournalsTrade(t *testing.T) {
	svc, journal := setupService(t)
	ctx := context.Background()

	out, err := svc.HandleSignal(ctx, Signal{
		Time: time.Now().UTC(), Symbol: "BHP", Entry: 45.00, Stop: 43.00, Confidence: 0.75,
	})
	require.NoError(t, err)
	require.NotNil(t, out.Opened)

	trade, err := svc.HandleExit(ctx, "BHP", 47.00, domain.CloseReasonTakeProfit)
	require.NoError(t, err)
	assert.InDelta(t, 44.0, trade.PnL, 1e-9) // 22 shares * $2
	assert.Equal(t, domain.CloseReasonTakeProfit, trade.Reason)

	require.Len(t, journal.trades, 1)
	assert.Equal(t, trade.ID, journal.trades[0].ID)

	stats := svc.Statistics()
	assert.Equal(t, 1, stats.TotalTrades)
	assert.InDelta(t, 44.0, stats.TotalPnL, 1e-9)
}

func TestHandleExit_UnknownSymbol(t *testing.T) {
	svc, _ := setupService(t)
	_, err := svc.HandleExit(context.Background(), "XYZ", 10.0, domain.CloseReasonSignal)
	assert.ErrorIs(t, err, ports.ErrPositionNotFound)
}

func TestHandleSignal_RejectedWhenCritical(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	// Drive the account into CRITICAL drawdown (>= 15% off peak) with a
	// sequence of losing trades, resetting daily tracking so the daily
	// tier does not fire first.
	for total := 0.0; total < 1600; total += 400 {
		svc.ResetDailyTracking()
		out, err := svc.HandleSignal(ctx, Signal{
			Time: time.Now().UTC(), Symbol: "LOSS", Entry: 10.0, Stop: 9.0, Confidence: 1.0,
		})
		require.NoError(t, err)
		require.NotNil(t, out.Opened)
		shares := float64(out.Opened.Shares)
		_, err = svc.HandleExit(ctx, "LOSS", 10.0-400.0/shares, domain.CloseReasonStopLoss)
		require.NoError(t, err)
	}
	svc.ResetDailyTracking()

	out, err := svc.HandleSignal(ctx, Signal{
		Time: time.Now().UTC(), Symbol: "BHP", Entry: 45.00, Stop: 43.00, Confidence: 0.75,
	})
	require.NoError(t, err)
	assert.True(t, out.Rejected)
	assert.Equal(t, "risk_status_CRITICAL", out.RejectCause)
	assert.Nil(t, out.Opened)
}

func TestFlattenAll(t *testing.T) {
	svc, journal := setupService(t)
	ctx := context.Background()

	for _, sym := range []string{"BHP", "RIO"} {
		out, err := svc.HandleSignal(ctx, Signal{
			Time: time.Now().UTC(), Symbol: sym, Entry: 45.00, Stop: 43.00, Confidence: 0.75,
		})
		require.NoError(t, err)
		require.NotNil(t, out.Opened)
	}

	err := svc.FlattenAll(ctx, map[string]float64{"BHP": 46.0, "RIO": 45.0}, domain.CloseReasonShutdown)
	require.NoError(t, err)
	assert.Len(t, journal.trades, 2)
	for _, tr := range journal.trades {
		assert.Equal(t, domain.CloseReasonShutdown, tr.Reason)
	}
}

func TestFlattenAll_MissingQuote(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	out, err := svc.HandleSignal(ctx, Signal{
		Time: time.Now().UTC(), Symbol: "BHP", Entry: 45.00, Stop: 43.00, Confidence: 0.75,
	})
	require.NoError(t, err)
	require.NotNil(t, out.Opened)

	err = svc.FlattenAll(ctx, map[string]float64{}, domain.CloseReasonShutdown)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "BHP")
}
