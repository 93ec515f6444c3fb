package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"asxPaperBot/internal/domain"
	"asxPaperBot/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Journal implements ports.TradeJournal and ports.RiskEventRecorder
// using SQLite. Stored trade rows carry symbol, prices, shares, pnl,
// confidence and both timestamps so that statistics can be rebuilt
// deterministically from storage alone.
type Journal struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite journal.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewJournal opens (or creates) the journal database.
func NewJournal(cfg Config) (*Journal, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite journal")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/papertrader.db" // Default path
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite journal initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000") // WAL mode for better concurrency
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite journal initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite journal initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally; the Go driver benefits from
	// limiting connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	j := &Journal{db: db, logger: cfg.Logger}
	if err := j.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize journal schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite journal initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Trade journal opened", map[string]interface{}{"path": dbPath})
	return j, nil
}

// initializeSchema creates tables if they don't exist.
func (j *Journal) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS closed_trades (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL NOT NULL,
		shares INTEGER NOT NULL,
		pnl REAL NOT NULL,
		confidence REAL NOT NULL,
		close_reason TEXT NOT NULL,
		entry_time TIMESTAMP NOT NULL,
		exit_time TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS risk_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_time TIMESTAMP NOT NULL,
		status TEXT NOT NULL,
		max_drawdown REAL NOT NULL,
		daily_drawdown REAL NOT NULL,
		portfolio_heat REAL NOT NULL,
		balance REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_closed_trades_symbol_exit_time ON closed_trades (symbol, exit_time);
	CREATE INDEX IF NOT EXISTS idx_risk_events_time ON risk_events (event_time);
	`
	if _, err := j.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db != nil {
		j.logger.Info(context.Background(), "Closing trade journal")
		return j.db.Close()
	}
	return nil
}

// --- TradeJournal Implementation ---

// RecordTrade saves a completed trade.
func (j *Journal) RecordTrade(ctx context.Context, trade *domain.ClosedTrade) error {
	const query = `
	INSERT INTO closed_trades (id, symbol, entry_price, exit_price, shares, pnl,
	                           confidence, close_reason, entry_time, exit_time)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := j.db.ExecContext(ctx, query,
		trade.ID, trade.Symbol, trade.EntryPrice, trade.ExitPrice, trade.Shares, trade.PnL,
		trade.Confidence, trade.Reason, trade.EntryTime, trade.ExitTime)
	if err != nil {
		return fmt.Errorf("failed to insert closed trade for symbol %s: %w", trade.Symbol, err)
	}
	j.logger.Debug(ctx, "Trade recorded", map[string]interface{}{"tradeID": trade.ID, "symbol": trade.Symbol, "pnl": trade.PnL})
	return nil
}

// Trades retrieves stored trades in exit-time order, up to a limit.
func (j *Journal) Trades(ctx context.Context, limit int) ([]*domain.ClosedTrade, error) {
	query := `
	SELECT id, symbol, entry_price, exit_price, shares, pnl, confidence, close_reason, entry_time, exit_time
	FROM closed_trades ORDER BY exit_time ASC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query closed trades: %w", err)
	}
	defer rows.Close()
	return collectTrades(rows)
}

// TradesBySymbol retrieves the most recent trades for a symbol.
func (j *Journal) TradesBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.ClosedTrade, error) {
	const query = `
	SELECT id, symbol, entry_price, exit_price, shares, pnl, confidence, close_reason, entry_time, exit_time
	FROM closed_trades WHERE symbol = ? ORDER BY exit_time DESC LIMIT ?`

	rows, err := j.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query closed trades for symbol %s: %w", symbol, err)
	}
	defer rows.Close()
	return collectTrades(rows)
}

// TotalPnL sums realized P&L across all stored trades.
func (j *Journal) TotalPnL(ctx context.Context) (float64, error) {
	const query = `SELECT COALESCE(SUM(pnl), 0) FROM closed_trades`
	var total float64
	if err := j.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum realized pnl: %w", err)
	}
	return total, nil
}

// --- RiskEventRecorder Implementation ---

// RecordRiskEvent saves one risk-limit evaluation.
func (j *Journal) RecordRiskEvent(ctx context.Context, event *ports.RiskEvent) error {
	const query = `
	INSERT INTO risk_events (event_time, status, max_drawdown, daily_drawdown, portfolio_heat, balance)
	VALUES (?, ?, ?, ?, ?, ?)`

	_, err := j.db.ExecContext(ctx, query,
		event.Time, event.Status, event.MaxDrawdown, event.DailyDrawdown, event.PortfolioHeat, event.Balance)
	if err != nil {
		return fmt.Errorf("failed to insert risk event: %w", err)
	}
	return nil
}

// RiskEvents retrieves stored events in time order, up to a limit.
func (j *Journal) RiskEvents(ctx context.Context, limit int) ([]*ports.RiskEvent, error) {
	query := `
	SELECT event_time, status, max_drawdown, daily_drawdown, portfolio_heat, balance
	FROM risk_events ORDER BY event_time ASC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query risk events: %w", err)
	}
	defer rows.Close()

	events := make([]*ports.RiskEvent, 0)
	for rows.Next() {
		e := &ports.RiskEvent{}
		var status string
		if err := rows.Scan(&e.Time, &status, &e.MaxDrawdown, &e.DailyDrawdown, &e.PortfolioHeat, &e.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan risk event: %w", err)
		}
		e.Status = domain.RiskStatus(status)
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating risk event rows: %w", err)
	}
	return events, nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanTrade scans a row into a domain.ClosedTrade struct.
func scanTrade(s scanner) (*domain.ClosedTrade, error) {
	t := &domain.ClosedTrade{}
	var reason string
	err := s.Scan(
		&t.ID, &t.Symbol, &t.EntryPrice, &t.ExitPrice, &t.Shares, &t.PnL,
		&t.Confidence, &reason, &t.EntryTime, &t.ExitTime)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	t.Reason = domain.CloseReason(reason)
	return t, nil
}

func collectTrades(rows *sql.Rows) ([]*domain.ClosedTrade, error) {
	trades := make([]*domain.ClosedTrade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan closed trade: %w", err)
		}
		trades = append(trades, trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating closed trade rows: %w", err)
	}
	return trades, nil
}
