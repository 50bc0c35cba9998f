package domain

import "github.com/shopspring/decimal"

// BalanceSnapshot aggregate account balance reported by the venue.
// Informational only: logged for the operator, takes no part in decisions.
type BalanceSnapshot struct {
	// Currency the equity is denominated in.
	Currency string
	// Equity total account value as the venue reports it.
	Equity decimal.Decimal
}

// String returns the string representation.
func (b BalanceSnapshot) String() string {
	return b.Equity.String() + " " + b.Currency
}
