// Package domain defines core data structures used throughout the buying engine.
package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Pair cryptocurrency trading pair with the venue's precision limits.
type Pair struct {
	// From base currency symbol, the asset being bought.
	From string
	// To quote currency symbol, the currency paying for the buy.
	To string
	// LotDecimals decimal places accepted for order volume.
	LotDecimals int32
	// QuoteDecimals decimal places accepted for order price.
	QuoteDecimals int32
	// OrderMin minimal order volume accepted by the venue.
	OrderMin decimal.Decimal
}

// String returns the string representation.
func (p *Pair) String() string {
	return fmt.Sprintf("%s_%s", p.From, p.To)
}

// Symbol returns the concatenated symbol representation.
func (p *Pair) Symbol() string {
	return fmt.Sprintf("%s%s", p.From, p.To)
}

// Identifiers returns every identifier a venue may report for this pair.
// Orders placed through different channels come back under either form.
func (p *Pair) Identifiers() []string {
	return []string{p.String(), p.Symbol()}
}

// Matches reports whether id refers to this pair under any known identifier.
func (p *Pair) Matches(id string) bool {
	for _, known := range p.Identifiers() {
		if id == known {
			return true
		}
	}
	return false
}

// Validate checks that the pair is fully specified for trading.
func (p *Pair) Validate() error {
	if p.From == "" || p.To == "" {
		return fmt.Errorf("pair currencies must be set, got %q", p.String())
	}
	if p.LotDecimals < 0 {
		return fmt.Errorf("lot decimals must be >= 0, got %d", p.LotDecimals)
	}
	if p.QuoteDecimals < 0 {
		return fmt.Errorf("quote decimals must be >= 0, got %d", p.QuoteDecimals)
	}
	if p.OrderMin.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("order min must be positive, got %s", p.OrderMin.String())
	}

	return nil
}

// PairFromString parses a BASE_QUOTE formatted pair, uppercasing the currencies.
// Precision limits are not part of the textual form and stay zero.
func PairFromString(s string) (Pair, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Pair{}, fmt.Errorf("invalid pair %q, expected BASE_QUOTE", s)
	}

	return Pair{
		From: strings.ToUpper(parts[0]),
		To:   strings.ToUpper(parts[1]),
	}, nil
}
