package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"asxPaperBot/internal/adapters/logger" // Import the logger package for LogLevel
)

// Config holds all application configuration.
type Config struct {
	// Account / Sizing Parameters
	AccountSize   float64 // Initial paper-trading balance
	KellyFraction float64 // Fraction of full Kelly, e.g. 0.25 for quarter-Kelly

	MaxPositionPct      float64 // Cap on a single position as a fraction of balance
	MaxRiskPerTradePct  float64 // Cap on capital at risk per trade
	MaxPortfolioHeatPct float64 // Cap on summed open risk

	// Drawdown Tiers
	AlertDrawdown      float64
	CriticalDrawdown   float64
	ShutdownDrawdown   float64
	AlertDailyDrawdown float64

	// Volatility Stop Parameters
	ATRPeriod         int     // Lookback bars for ATR, e.g. 14
	ATRStopMultiplier float64 // Stop distance in ATR units, e.g. 2.0
	RiskRewardRatio   float64 // Target distance as a multiple of stop distance
	ATRUseWilder      bool    // Use Wilder smoothing instead of the default SMA

	// Replay Input
	SignalFile string // CSV of recorded signals/exits for an offline run

	// Database
	DBPath string

	// Monitoring
	MetricsAddr string // Listen address for /metrics and /health; empty disables

	// Logging
	LogLevel logger.LogLevel
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Account / Sizing
	cfg.AccountSize, err = getEnvAsFloatRequired("ACCOUNT_SIZE", 10000.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid ACCOUNT_SIZE: %v", err))
	} else if cfg.AccountSize <= 0 {
		errs = append(errs, "ACCOUNT_SIZE must be positive")
	}

	cfg.KellyFraction, err = getEnvAsFloatRequired("KELLY_FRACTION", 0.25)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid KELLY_FRACTION: %v", err))
	} else if cfg.KellyFraction <= 0 || cfg.KellyFraction > 1 {
		errs = append(errs, "KELLY_FRACTION must be between 0.0 (exclusive) and 1.0")
	}

	cfg.MaxPositionPct, err = getEnvAsFloatRequired("MAX_POSITION_PCT", 0.10)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_POSITION_PCT: %v", err))
	} else if cfg.MaxPositionPct <= 0 || cfg.MaxPositionPct > 1 {
		errs = append(errs, "MAX_POSITION_PCT must be between 0.0 (exclusive) and 1.0")
	}

	cfg.MaxRiskPerTradePct, err = getEnvAsFloatRequired("MAX_RISK_PER_TRADE_PCT", 0.02)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_RISK_PER_TRADE_PCT: %v", err))
	} else if cfg.MaxRiskPerTradePct <= 0 || cfg.MaxRiskPerTradePct > 1 {
		errs = append(errs, "MAX_RISK_PER_TRADE_PCT must be between 0.0 (exclusive) and 1.0")
	}

	cfg.MaxPortfolioHeatPct, err = getEnvAsFloatRequired("MAX_PORTFOLIO_HEAT_PCT", 0.06)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_PORTFOLIO_HEAT_PCT: %v", err))
	} else if cfg.MaxPortfolioHeatPct <= 0 || cfg.MaxPortfolioHeatPct > 1 {
		errs = append(errs, "MAX_PORTFOLIO_HEAT_PCT must be between 0.0 (exclusive) and 1.0")
	}

	// Drawdown tiers (defaults mirror the sizer's built-in tiers)
	cfg.AlertDrawdown = getEnvAsFloat("ALERT_DRAWDOWN", 0.10)
	cfg.CriticalDrawdown = getEnvAsFloat("CRITICAL_DRAWDOWN", 0.15)
	cfg.ShutdownDrawdown = getEnvAsFloat("SHUTDOWN_DRAWDOWN", 0.25)
	cfg.AlertDailyDrawdown = getEnvAsFloat("ALERT_DAILY_DRAWDOWN", 0.05)
	if !(cfg.AlertDrawdown < cfg.CriticalDrawdown && cfg.CriticalDrawdown < cfg.ShutdownDrawdown) {
		errs = append(errs, "drawdown tiers must be strictly increasing: ALERT < CRITICAL < SHUTDOWN")
	}

	// Volatility stops
	cfg.ATRPeriod = getEnvAsInt("ATR_PERIOD", 14)
	if cfg.ATRPeriod <= 0 {
		errs = append(errs, "ATR_PERIOD must be positive")
	}
	cfg.ATRStopMultiplier = getEnvAsFloat("ATR_STOP_MULTIPLIER", 2.0)
	if cfg.ATRStopMultiplier <= 0 {
		errs = append(errs, "ATR_STOP_MULTIPLIER must be positive")
	}
	cfg.RiskRewardRatio = getEnvAsFloat("RISK_REWARD_RATIO", 2.0)
	if cfg.RiskRewardRatio <= 0 {
		errs = append(errs, "RISK_REWARD_RATIO must be positive")
	}
	cfg.ATRUseWilder = getEnvAsBool("ATR_USE_WILDER", false)

	// Replay input
	cfg.SignalFile = getEnv("SIGNAL_FILE", "")

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/papertrader.db")

	// Monitoring
	cfg.MetricsAddr = getEnv("METRICS_ADDR", "")

	// Logging
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
