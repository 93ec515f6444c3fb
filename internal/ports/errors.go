package ports

import "errors"

// Standard application-level errors.
// Adapters and core packages wrap underlying errors with these standard
// errors so callers can branch with errors.Is.
var (
	// Input validation errors: caller-correctable, raised synchronously,
	// never mutate state.
	ErrInvalidStop       = errors.New("stop price must be below entry price for a long position")
	ErrInvalidConfidence = errors.New("confidence must be between 0 and 1")
	ErrInvalidDirection  = errors.New("direction must be long or short")
	ErrInvalidATR        = errors.New("ATR must be positive")
	ErrInsufficientData  = errors.New("not enough price history for the requested period")

	// State-consistency errors: indicate caller misuse; the ledger is
	// unchanged when these are returned.
	ErrDuplicatePosition = errors.New("an open position already exists for this symbol")
	ErrPositionNotFound  = errors.New("no open position for this symbol")

	// Configuration
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Database Specific Errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
	ErrNotFound     = errors.New("record not found")
)
