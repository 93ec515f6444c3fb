package analytics

import (
	"math"

	"asxPaperBot/internal/domain"
)

// AnnualizationFactor scales the per-trade Sharpe ratio to an annual
// figure, assuming roughly one trade per trading day.
const AnnualizationFactor = 252

// Stats holds aggregate statistics computed from the closed-trade
// history. All values are neutral zeros when there is insufficient
// history; insufficient data is never an error.
type Stats struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64

	AverageWin  float64
	AverageLoss float64 // Negative or zero
	LargestWin  float64
	LargestLoss float64 // Negative or zero

	// ProfitFactor is sum(wins)/|sum(losses)|. It is +Inf when there is
	// at least one win and no losses, and 0 when there are no wins.
	ProfitFactor float64

	TotalPnL      float64
	AccountReturn float64

	// SharpeRatio is mean/stdev of per-trade fractional returns scaled
	// by sqrt(AnnualizationFactor). Zero with fewer than 2 trades.
	SharpeRatio float64

	// InformationCoefficient is the Pearson correlation between signal
	// confidence and realized fractional return across the history.
	// Zero with fewer than 2 trades or zero variance in either series.
	InformationCoefficient float64

	MaxDrawdown float64 // Deepest peak-to-trough decline of the equity path
}

// Compute derives Stats from a trade sequence and the balance the
// account started with. It is deterministic: replaying the same trades
// always yields the same statistics.
func Compute(trades []*domain.ClosedTrade, initialBalance float64) Stats {
	var s Stats
	if len(trades) == 0 {
		return s
	}

	var (
		sumWins, sumLosses float64
		returns            = make([]float64, len(trades))
		confidences        = make([]float64, len(trades))
		balance            = initialBalance
		peak               = initialBalance
	)

	for i, trade := range trades {
		s.TotalTrades++
		s.TotalPnL += trade.PnL

		if trade.PnL > 0 {
			s.WinningTrades++
			sumWins += trade.PnL
			s.AverageWin = (s.AverageWin*float64(s.WinningTrades-1) + trade.PnL) / float64(s.WinningTrades)
			if trade.PnL > s.LargestWin {
				s.LargestWin = trade.PnL
			}
		} else {
			s.LosingTrades++
			sumLosses += trade.PnL
			s.AverageLoss = (s.AverageLoss*float64(s.LosingTrades-1) + trade.PnL) / float64(s.LosingTrades)
			if trade.PnL < s.LargestLoss {
				s.LargestLoss = trade.PnL
			}
		}

		balance += trade.PnL
		if balance > peak {
			peak = balance
		} else if peak > 0 {
			drawdown := (peak - balance) / peak
			if drawdown > s.MaxDrawdown {
				s.MaxDrawdown = drawdown
			}
		}

		returns[i] = trade.Return()
		confidences[i] = trade.Confidence
	}

	s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades)

	switch {
	case sumLosses != 0:
		s.ProfitFactor = sumWins / math.Abs(sumLosses)
	case sumWins > 0:
		s.ProfitFactor = math.Inf(1)
	}

	if initialBalance > 0 {
		s.AccountReturn = s.TotalPnL / initialBalance
	}

	if len(trades) >= 2 {
		mean, stdev := meanStdev(returns)
		if stdev > 0 {
			s.SharpeRatio = mean / stdev * math.Sqrt(AnnualizationFactor)
		}
		s.InformationCoefficient = pearson(confidences, returns)
	}

	return s
}

// meanStdev returns the mean and sample standard deviation of values.
func meanStdev(values []float64) (mean, stdev float64) {
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	stdev = math.Sqrt(sumSq / float64(len(values)-1))
	return mean, stdev
}

// pearson computes the Pearson correlation of two equal-length series.
// Returns 0 when either series has zero variance.
func pearson(xs, ys []float64) float64 {
	n := float64(len(xs))
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}
