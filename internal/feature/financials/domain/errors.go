// Package domain defines domain-level errors for the financials feature.
package domain

import "errors"

// Domain errors for financial data operations.
// These errors represent business logic failures and should be handled appropriately by upper layers.
var (
	// ErrRecordNotFound indicates that no financial record exists for the given key.
	// An empty query result is a valid outcome; this error only marks single-record lookups.
	ErrRecordNotFound = errors.New("financial record not found")

	// ErrUnknownCompany indicates that the requested company is not present in the store.
	ErrUnknownCompany = errors.New("unknown company")

	// ErrUnknownMetric indicates that the requested metric is not one of the financial columns.
	ErrUnknownMetric = errors.New("unknown metric")

	// ErrInsufficientData indicates that a calculation needs records that are not all present.
	ErrInsufficientData = errors.New("insufficient data for calculation")

	// ErrZeroBase indicates a division-by-zero guard fired (zero base value or zero revenue).
	ErrZeroBase = errors.New("base value is zero")

	// ErrUnsafeQuery indicates a filtered query attempted a write or an out-of-scope read.
	// The query is rejected before it reaches the store.
	ErrUnsafeQuery = errors.New("query rejected by the read-only guard")

	// ErrStoreUnavailable indicates the persistent store could not be read.
	// Fatal for the current operation; surfaced to the user as a generic failure.
	ErrStoreUnavailable = errors.New("financial store unavailable")
)
