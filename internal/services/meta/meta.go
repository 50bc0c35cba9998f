// Package meta discovers venue trading rules for a pair: lot step, price
// tick and minimum order size.
package meta

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// decimalsOf returns the number of significant fraction digits in a venue
// step string such as "0.00001000".
func decimalsOf(step string) (int32, error) {
	if _, err := decimal.NewFromString(step); err != nil {
		return 0, errors.Wrapf(err, "failed to parse step %q", step)
	}

	i := strings.IndexByte(step, '.')
	if i < 0 {
		return 0, nil
	}

	return int32(len(strings.TrimRight(step[i+1:], "0"))), nil
}
