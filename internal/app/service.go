package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"asxPaperBot/config"
	"asxPaperBot/internal/analytics"
	"asxPaperBot/internal/domain"
	"asxPaperBot/internal/monitoring"
	"asxPaperBot/internal/ports"
	"asxPaperBot/internal/replay"
	"asxPaperBot/internal/risk"
	"asxPaperBot/internal/volatility"
)

// Signal is one trade opportunity supplied by the (out-of-process)
// decision logic: an entry price, a confidence score and either an
// explicit stop or an OHLC window to derive one from.
type Signal struct {
	Time       time.Time
	Symbol     string
	Entry      float64
	Stop       float64 // Explicit stop; ignored when Bars can produce an ATR stop
	Confidence float64
	Bars       []domain.PriceBar // Optional price history for ATR stop placement
}

// Outcome reports what the service did with a signal. A rejection is an
// expected business outcome, not an error.
type Outcome struct {
	Opened      *domain.Position
	Sizing      risk.SizeResult
	Rejected    bool
	RejectCause string
	Assessment  risk.Assessment
}

// PaperTradingService wires signals through the risk gate, volatility
// stops and position sizing into the ledger, journaling every closed
// trade and risk evaluation for audit.
type PaperTradingService struct {
	cfg     *config.Config
	logger  ports.Logger
	sizer   *risk.PositionSizer
	vol     *volatility.Calculator
	journal ports.TradeJournal
	events  ports.RiskEventRecorder
	health  *monitoring.HealthChecker
}

// NewPaperTradingService creates the service. The journal and event
// recorder are required; health is optional.
func NewPaperTradingService(
	cfg *config.Config,
	logger ports.Logger,
	sizer *risk.PositionSizer,
	vol *volatility.Calculator,
	journal ports.TradeJournal,
	events ports.RiskEventRecorder,
	health *monitoring.HealthChecker,
) (*PaperTradingService, error) {
	if cfg == nil || logger == nil || sizer == nil || vol == nil || journal == nil || events == nil {
		return nil, fmt.Errorf("missing required dependencies for PaperTradingService")
	}
	return &PaperTradingService{
		cfg:     cfg,
		logger:  logger,
		sizer:   sizer,
		vol:     vol,
		journal: journal,
		events:  events,
		health:  health,
	}, nil
}

// HandleSignal sizes and opens a position for a signal, unless the risk
// tier forbids new trades or sizing comes back zero.
func (s *PaperTradingService) HandleSignal(ctx context.Context, sig Signal) (Outcome, error) {
	s.touch()

	assessment := s.sizer.CheckRiskLimits()
	s.recordAssessment(ctx, sig.Time, assessment)

	out := Outcome{Assessment: assessment}

	// CRITICAL and SHUTDOWN both forbid new trades; SHUTDOWN additionally
	// requires the caller to flatten via FlattenAll with live quotes.
	if assessment.Status.Severity() >= domain.RiskCritical.Severity() {
		out.Rejected = true
		out.RejectCause = "risk_status_" + string(assessment.Status)
		monitoring.RecordReject(out.RejectCause)
		s.logger.Warn(ctx, "Signal rejected by risk tier", map[string]interface{}{
			"symbol": sig.Symbol,
			"status": assessment.Status,
		})
		return out, nil
	}

	stop, target, err := s.stopLevels(sig)
	if err != nil {
		return out, err
	}

	sizing, err := s.sizer.CalculateSize(sig.Symbol, sig.Entry, stop, sig.Confidence)
	if err != nil {
		return out, err
	}
	out.Sizing = sizing

	if sizing.Shares == 0 {
		out.Rejected = true
		out.RejectCause = string(sizing.Bound)
		monitoring.RecordReject(out.RejectCause)
		s.logger.Info(ctx, "Signal sized to zero", map[string]interface{}{
			"symbol":     sig.Symbol,
			"confidence": sig.Confidence,
			"bound":      sizing.Bound,
		})
		return out, nil
	}

	pos, err := s.sizer.OpenPosition(sig.Symbol, sig.Entry, sizing.Shares, stop, target, sizing.RiskAmount, sig.Confidence)
	if err != nil {
		return out, err
	}
	out.Opened = pos
	monitoring.RecordOpen(sig.Symbol)
	s.logger.Info(ctx, "Position opened", map[string]interface{}{
		"symbol":     sig.Symbol,
		"shares":     pos.Shares,
		"entry":      pos.EntryPrice,
		"stop":       pos.StopLoss,
		"target":     pos.TakeProfit,
		"riskAmount": pos.RiskAmount,
		"bound":      sizing.Bound,
	})
	return out, nil
}

// HandleExit closes an open position, journals the completed trade and
// records a fresh risk evaluation.
func (s *PaperTradingService) HandleExit(ctx context.Context, symbol string, price float64, reason domain.CloseReason) (*domain.ClosedTrade, error) {
	s.touch()

	trade, err := s.sizer.ClosePosition(symbol, price, reason)
	if err != nil {
		return nil, err
	}
	monitoring.RecordClose(symbol, reason)

	if err := s.journal.RecordTrade(ctx, trade); err != nil {
		// The ledger close already happened; surface the journal failure
		// without unwinding the trade.
		s.logger.Error(ctx, err, "Failed to journal closed trade", map[string]interface{}{"symbol": symbol})
		return trade, err
	}

	assessment := s.sizer.CheckRiskLimits()
	s.recordAssessment(ctx, trade.ExitTime, assessment)

	s.logger.Info(ctx, "Position closed", map[string]interface{}{
		"symbol": symbol,
		"exit":   price,
		"pnl":    trade.PnL,
		"reason": reason,
		"status": assessment.Status,
	})
	return trade, nil
}

// FlattenAll closes every open position at the supplied quotes. Symbols
// without a quote are left open and reported in the error.
func (s *PaperTradingService) FlattenAll(ctx context.Context, quotes map[string]float64, reason domain.CloseReason) error {
	var missing []string
	for _, pos := range s.sizer.OpenPositions() {
		price, ok := quotes[pos.Symbol]
		if !ok {
			missing = append(missing, pos.Symbol)
			continue
		}
		if _, err := s.HandleExit(ctx, pos.Symbol, price, reason); err != nil {
			return err
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("no quote to flatten: %v", missing)
	}
	return nil
}

// ResetDailyTracking starts a new trading session.
func (s *PaperTradingService) ResetDailyTracking() {
	s.sizer.ResetDailyTracking()
}

// Statistics returns aggregate metrics over the ledger's trade history.
func (s *PaperTradingService) Statistics() analytics.Stats {
	return s.sizer.Statistics()
}

// ReplayFile runs a recorded session through the service and returns
// the final statistics.
func (s *PaperTradingService) ReplayFile(ctx context.Context, path string) (analytics.Stats, error) {
	events, err := replay.ReadFile(path)
	if err != nil {
		return analytics.Stats{}, err
	}

	for _, ev := range events {
		select {
		case <-ctx.Done():
			return s.Statistics(), ctx.Err()
		default:
		}

		switch ev.Kind {
		case replay.KindReset:
			s.ResetDailyTracking()
		case replay.KindEntry:
			if _, err := s.HandleSignal(ctx, Signal{
				Time:       ev.Time,
				Symbol:     ev.Symbol,
				Entry:      ev.Price,
				Stop:       ev.Stop,
				Confidence: ev.Confidence,
			}); err != nil {
				s.logger.Error(ctx, err, "Replay entry failed", map[string]interface{}{"symbol": ev.Symbol})
			}
		case replay.KindExit:
			if _, err := s.HandleExit(ctx, ev.Symbol, ev.Price, ev.Reason); err != nil {
				if errors.Is(err, ports.ErrPositionNotFound) {
					// Exits for signals that were rejected at entry are expected.
					s.logger.Debug(ctx, "Replay exit for symbol with no open position", map[string]interface{}{"symbol": ev.Symbol})
					continue
				}
				s.logger.Error(ctx, err, "Replay exit failed", map[string]interface{}{"symbol": ev.Symbol})
			}
		}
	}
	return s.Statistics(), nil
}

// stopLevels picks the stop/target pair for a signal: ATR-derived when
// the signal carries enough bars, otherwise from the explicit stop.
func (s *PaperTradingService) stopLevels(sig Signal) (stop, target float64, err error) {
	if len(sig.Bars) >= s.cfg.ATRPeriod {
		highs, lows, closes := domain.SplitBars(sig.Bars)
		atr, err := s.vol.ATR(highs, lows, closes, s.cfg.ATRPeriod)
		if err != nil {
			return 0, 0, err
		}
		if atr > 0 {
			levels, err := s.vol.Stops(sig.Entry, atr, domain.Long, s.cfg.ATRStopMultiplier, s.cfg.RiskRewardRatio)
			if err != nil {
				return 0, 0, err
			}
			return levels.StopLoss, levels.TakeProfit, nil
		}
		// A flat window has zero ATR; fall through to the explicit stop.
	}
	stop = sig.Stop
	target = sig.Entry + (sig.Entry-stop)*s.cfg.RiskRewardRatio
	return stop, target, nil
}

func (s *PaperTradingService) recordAssessment(ctx context.Context, at time.Time, a risk.Assessment) {
	monitoring.UpdateAssessment(a)
	if at.IsZero() {
		at = time.Now().UTC()
	}
	event := &ports.RiskEvent{
		Time:          at,
		Status:        a.Status,
		MaxDrawdown:   a.MaxDrawdown,
		DailyDrawdown: a.DailyDrawdown,
		PortfolioHeat: a.PortfolioHeat,
		Balance:       a.Balance,
	}
	if err := s.events.RecordRiskEvent(ctx, event); err != nil {
		s.logger.Error(ctx, err, "Failed to record risk event")
	}
}

func (s *PaperTradingService) touch() {
	if s.health != nil {
		s.health.Touch()
	}
}
