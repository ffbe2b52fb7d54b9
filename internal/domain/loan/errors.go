package loan

import (
	"errors"
	"fmt"
)

var (
	ErrParse = errors.New("invalid amount")

	ErrCollateralTooSmall     = errors.New("collateral amount too small")
	ErrLoanTooLarge           = errors.New("loan amount too large")
	ErrInsufficientCollateral = errors.New("insufficient collateral ratio")

	ErrLoanNotFound  = errors.New("loan not found")
	ErrLoanNotActive = errors.New("loan is not active")
	ErrLoanExpired   = errors.New("loan has expired")

	ErrStore = errors.New("loan store failure")
)

// StoreFailure tags err as a persistence fault. Both ErrStore and the
// original error stay reachable through errors.Is.
func StoreFailure(err error) error {
	if err == nil || errors.Is(err, ErrStore) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStore, err)
}

// IsRetryable reports whether retrying the same call may succeed.
// Validation failures are permanent for a given input.
func IsRetryable(err error) bool { return errors.Is(err, ErrStore) }

// IsRuleViolation reports whether err is a ledger rule outcome (bad input or
// a loan in the wrong state) rather than an infrastructure fault.
func IsRuleViolation(err error) bool {
	for _, target := range []error{
		ErrParse, ErrCollateralTooSmall, ErrLoanTooLarge, ErrInsufficientCollateral,
		ErrLoanNotFound, ErrLoanNotActive, ErrLoanExpired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
