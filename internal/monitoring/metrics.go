package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"asxPaperBot/internal/domain"
	"asxPaperBot/internal/risk"
)

var (
	// Account metrics
	accountBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "papertrader_account_balance",
			Help: "Current account balance",
		},
	)

	peakBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "papertrader_peak_balance",
			Help: "Account high-water mark",
		},
	)

	// Risk metrics
	maxDrawdown = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "papertrader_max_drawdown",
			Help: "Drawdown from the peak balance",
		},
	)

	dailyDrawdown = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "papertrader_daily_drawdown",
			Help: "Drawdown from the session-start balance",
		},
	)

	portfolioHeat = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "papertrader_portfolio_heat",
			Help: "Summed open risk as a fraction of balance",
		},
	)

	riskStatus = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "papertrader_risk_status",
			Help: "Risk tier severity: 0=NORMAL 1=ALERT 2=CRITICAL 3=SHUTDOWN",
		},
	)

	// Trading metrics
	tradesOpened = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "papertrader_positions_opened_total",
			Help: "Total number of positions opened",
		},
		[]string{"symbol"},
	)

	tradesClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "papertrader_positions_closed_total",
			Help: "Total number of positions closed",
		},
		[]string{"symbol", "reason"},
	)

	sizingRejects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "papertrader_sizing_rejects_total",
			Help: "Sizing decisions that produced zero shares or were blocked by the risk tier",
		},
		[]string{"cause"},
	)
)

func init() {
	prometheus.MustRegister(accountBalance)
	prometheus.MustRegister(peakBalance)
	prometheus.MustRegister(maxDrawdown)
	prometheus.MustRegister(dailyDrawdown)
	prometheus.MustRegister(portfolioHeat)
	prometheus.MustRegister(riskStatus)
	prometheus.MustRegister(tradesOpened)
	prometheus.MustRegister(tradesClosed)
	prometheus.MustRegister(sizingRejects)
}

// Handler returns the Prometheus metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// UpdateAssessment pushes one risk-limit evaluation into the gauges.
func UpdateAssessment(a risk.Assessment) {
	accountBalance.Set(a.Balance)
	peakBalance.Set(a.PeakBalance)
	maxDrawdown.Set(a.MaxDrawdown)
	dailyDrawdown.Set(a.DailyDrawdown)
	portfolioHeat.Set(a.PortfolioHeat)
	riskStatus.Set(float64(a.Status.Severity()))
}

// RecordOpen records a position being opened.
func RecordOpen(symbol string) {
	tradesOpened.WithLabelValues(symbol).Inc()
}

// RecordClose records a position being closed.
func RecordClose(symbol string, reason domain.CloseReason) {
	tradesClosed.WithLabelValues(symbol, string(reason)).Inc()
}

// RecordReject records a refused or zero-sized trade and its cause.
func RecordReject(cause string) {
	sizingRejects.WithLabelValues(cause).Inc()
}
