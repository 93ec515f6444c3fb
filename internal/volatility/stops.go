package volatility

import (
	"fmt"
	"math"

	"asxPaperBot/internal/domain"
	"asxPaperBot/internal/ports"
)

// StopLevels carries the ATR-derived exit prices for a trade.
type StopLevels struct {
	StopLoss   float64
	TakeProfit float64
}

// Stops derives stop-loss and take-profit levels from an ATR value.
// For a long trade the stop sits below the entry and the target above;
// a short trade is the mirror image.
func (c *Calculator) Stops(entry, atr float64, direction domain.Direction, stopMultiplier, riskReward float64) (StopLevels, error) {
	if atr <= 0 {
		return StopLevels{}, fmt.Errorf("%w: got %v", ports.ErrInvalidATR, atr)
	}

	distance := atr * stopMultiplier
	switch direction {
	case domain.Long:
		stop := entry - distance
		return StopLevels{
			StopLoss:   stop,
			TakeProfit: entry + (entry-stop)*riskReward,
		}, nil
	case domain.Short:
		stop := entry + distance
		return StopLevels{
			StopLoss:   stop,
			TakeProfit: entry - (stop-entry)*riskReward,
		}, nil
	default:
		return StopLevels{}, fmt.Errorf("%w: got %q", ports.ErrInvalidDirection, direction)
	}
}

// ATRSize is the result of sizing a long position off an ATR stop.
type ATRSize struct {
	Shares     int
	StopLoss   float64
	RiskAmount float64
}

// SizeWithATR sizes a long position so that being stopped out at
// entry - atr*multiplier loses at most accountSize*riskPct.
func (c *Calculator) SizeWithATR(accountSize, entry, atr, riskPct, multiplier float64) (ATRSize, error) {
	if atr <= 0 {
		return ATRSize{}, fmt.Errorf("%w: got %v", ports.ErrInvalidATR, atr)
	}

	stop := entry - atr*multiplier
	perShareRisk := entry - stop
	riskAmount := accountSize * riskPct
	shares := int(math.Floor(riskAmount / perShareRisk))

	return ATRSize{
		Shares:     shares,
		StopLoss:   stop,
		RiskAmount: riskAmount,
	}, nil
}
