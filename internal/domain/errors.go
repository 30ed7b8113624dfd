package domain

import "errors"

var (
	// ErrQuoteUnavailable is returned when no extraction strategy produced a price.
	ErrQuoteUnavailable = errors.New("quote unavailable")
	// ErrUnsupportedSymbol is returned for symbols outside a parser's allow-list.
	ErrUnsupportedSymbol = errors.New("unsupported symbol")
	// ErrFetchTimeout is returned when a quote fetch exceeds its deadline.
	ErrFetchTimeout = errors.New("quote fetch timed out")
	// ErrConnectionTransient marks database failures worth retrying.
	ErrConnectionTransient = errors.New("transient database connection failure")
	// ErrSnapshotPersistence is returned when a snapshot could not be stored and read back.
	ErrSnapshotPersistence = errors.New("snapshot persistence failed")

	ErrHoldingNotFound = errors.New("holding not found")
	ErrInvalidHolding  = errors.New("invalid holding")
)
