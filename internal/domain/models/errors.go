package models

import "errors"

var (
	// ErrDataUnavailable means a provider returned a malformed or empty payload,
	// timed out, or a rule was asked to run without the fields it needs.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrNoSupportBelowPrice means every known level sits at or above the current price.
	ErrNoSupportBelowPrice = errors.New("no support level below current price")

	// ErrDivisionByZero means the aggregate counts sum to zero.
	ErrDivisionByZero = errors.New("aggregate indicator counts sum to zero")

	// ErrUnknownTicker means the ticker has no entry in the icon table.
	ErrUnknownTicker = errors.New("unknown ticker")
)
