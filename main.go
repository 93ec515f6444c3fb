package main

import (
	"context"
	"fmt"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"net/http"
	"os/signal"
	"syscall"

	"asxPaperBot/config"
	"asxPaperBot/internal/adapters/logger"
	"asxPaperBot/internal/adapters/sqlite"
	"asxPaperBot/internal/app"
	"asxPaperBot/internal/monitoring"
	"asxPaperBot/internal/risk"
	"asxPaperBot/internal/volatility"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Trade Journal (Database Adapter)
	journal, err := sqlite.NewJournal(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize trade journal")
		log.Fatalf("FATAL: Failed to initialize trade journal: %v", err)
	}
	defer func() {
		if err := journal.Close(); err != nil {
			appLogger.Error(ctx, err, "Error closing trade journal")
		}
	}()

	// 4. Initialize Position Sizer
	sizer, err := risk.NewPositionSizer(risk.SizerConfig{
		AccountSize:         cfg.AccountSize,
		KellyFraction:       cfg.KellyFraction,
		MaxPositionPct:      cfg.MaxPositionPct,
		MaxRiskPerTradePct:  cfg.MaxRiskPerTradePct,
		MaxPortfolioHeatPct: cfg.MaxPortfolioHeatPct,
		AlertDrawdown:       cfg.AlertDrawdown,
		CriticalDrawdown:    cfg.CriticalDrawdown,
		ShutdownDrawdown:    cfg.ShutdownDrawdown,
		AlertDailyDrawdown:  cfg.AlertDailyDrawdown,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize position sizer")
		log.Fatalf("FATAL: Failed to initialize position sizer: %v", err)
	}

	// 5. Initialize Volatility Calculator
	method := volatility.MethodSMA
	if cfg.ATRUseWilder {
		method = volatility.MethodWilder
	}
	vol := volatility.NewCalculator(method)

	// 6. Initialize Service
	health := monitoring.NewHealthChecker()
	service, err := app.NewPaperTradingService(cfg, appLogger, sizer, vol, journal, journal, health)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize trading service")
		log.Fatalf("FATAL: Failed to initialize trading service: %v", err)
	}

	// 7. Optional metrics listener
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", monitoring.Handler())
		mux.Handle("/health", health)
		go func() {
			appLogger.Info(ctx, "Metrics listener starting", map[string]interface{}{"addr": cfg.MetricsAddr})
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				appLogger.Error(ctx, err, "Metrics listener stopped")
			}
		}()
	}

	// 8. Replay the recorded session
	if cfg.SignalFile == "" {
		appLogger.Warn(ctx, "No SIGNAL_FILE configured; nothing to replay")
		return
	}

	stats, err := service.ReplayFile(ctx, cfg.SignalFile)
	if err != nil {
		appLogger.Error(ctx, err, "Replay failed", map[string]interface{}{"file": cfg.SignalFile})
		log.Fatalf("FATAL: Replay failed: %v", err)
	}

	assessment := sizer.CheckRiskLimits()
	fmt.Printf("\nReplay complete: %d trades, win rate %.1f%%, total P&L %.2f, return %.2f%%\n",
		stats.TotalTrades, stats.WinRate*100, stats.TotalPnL, stats.AccountReturn*100)
	fmt.Printf("Sharpe %.2f, profit factor %.2f, IC %.3f, max drawdown %.2f%%\n",
		stats.SharpeRatio, stats.ProfitFactor, stats.InformationCoefficient, stats.MaxDrawdown*100)
	fmt.Printf("Final balance %.2f (peak %.2f), risk status %s\n",
		assessment.Balance, assessment.PeakBalance, assessment.Status)
}
