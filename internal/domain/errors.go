package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ClockSkewError local and venue clocks diverge beyond the allowed drift.
// Fatal to the invocation: an engine must not decide on a skewed timestamp.
type ClockSkewError struct {
	Drift     time.Duration
	Tolerance time.Duration
}

func (e *ClockSkewError) Error() string {
	return fmt.Sprintf("clock drift %s exceeds tolerance %s", e.Drift, e.Tolerance)
}

// InsufficientFundsError quote balance below the configured spend amount.
type InsufficientFundsError struct {
	Currency  string
	Available decimal.Decimal
	Required  decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient %s balance: available %s, required %s",
		e.Currency, e.Available.String(), e.Required.String())
}

// OrderTooSmallError computed volume below the pair minimum. The configured
// spend is too small for the current price at this pair's precision.
type OrderTooSmallError struct {
	Pair     string
	Volume   decimal.Decimal
	OrderMin decimal.Decimal
}

func (e *OrderTooSmallError) Error() string {
	return fmt.Sprintf("%s order volume %s is below pair minimum %s",
		e.Pair, e.Volume.String(), e.OrderMin.String())
}

// SubmissionError the venue rejected or failed the order submission.
type SubmissionError struct {
	Pair string
	Err  error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("order submission failed for %s: %v", e.Pair, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
