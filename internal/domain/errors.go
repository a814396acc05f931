package domain

import "errors"

// Error taxonomy shared by all components. Components wrap these with
// context via fmt.Errorf("...: %w", ...); the routing layer matches with
// errors.Is to pick a response status.
var (
	// ErrUpstreamUnavailable covers network failures, timeouts and non-2xx
	// responses from a provider. In the price resolver it triggers fallback
	// to the next strategy before surfacing.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrMalformedData covers unparsable dates, non-numeric values and
	// empty series. Dropped at the ingestion boundary.
	ErrMalformedData = errors.New("malformed upstream data")

	// ErrInsufficientHistory marks a series shorter than an indicator's
	// required window. Yields null fields, never a whole-response error.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrInvalidParameter marks user-supplied values outside their domain.
	ErrInvalidParameter = errors.New("invalid parameter")
)
