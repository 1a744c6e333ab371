package chain

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectionFailed indicates the HTTP request never completed.
	ErrConnectionFailed = errors.New("chain: connection failed")

	// ErrInvalidResponse indicates the response body could not be decoded.
	ErrInvalidResponse = errors.New("chain: invalid response")

	// ErrUnauthorized indicates authentication against the service failed.
	ErrUnauthorized = errors.New("chain: authentication failed")

	// ErrTxConflict indicates ARC already knows a conflicting transaction.
	ErrTxConflict = errors.New("chain: transaction conflict")

	// ErrNotExtendedFormat indicates ARC requires extended format input.
	ErrNotExtendedFormat = errors.New("chain: transaction not in extended format")

	// ErrMalformedTransaction indicates ARC rejected the transaction bytes.
	ErrMalformedTransaction = errors.New("chain: malformed transaction")

	// ErrFeeTooLow indicates the transaction fee is below ARC policy.
	ErrFeeTooLow = errors.New("chain: fee too low")

	// ErrCumulativeFeeTooLow indicates the fee of the transaction chain is
	// below ARC policy.
	ErrCumulativeFeeTooLow = errors.New("chain: cumulative fee validation failed")

	// ErrRequestFailed is the catch-all for other non-2xx responses.
	ErrRequestFailed = errors.New("chain: request failed")
)

// arcError is the ARC error response body (RFC 7807 style).
type arcError struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// mapARCStatus converts an ARC HTTP status code to a sentinel error.
func mapARCStatus(code int, detail string) error {
	var sentinel error
	switch code {
	case 401:
		sentinel = ErrUnauthorized
	case 409:
		sentinel = ErrTxConflict
	case 460:
		sentinel = ErrNotExtendedFormat
	case 461:
		sentinel = ErrMalformedTransaction
	case 465:
		sentinel = ErrFeeTooLow
	case 473:
		sentinel = ErrCumulativeFeeTooLow
	default:
		sentinel = ErrRequestFailed
	}
	return fmt.Errorf("%w: HTTP %d: %s", sentinel, code, detail)
}
