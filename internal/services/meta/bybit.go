package meta

import (
	"context"
	"fmt"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"stacker/internal/domain"
)

type BybitMeta struct {
	client *bybit.Client
}

func NewBybitMeta(client *bybit.Client) *BybitMeta {
	return &BybitMeta{client: client}
}

// Discover fills pair with the venue's lot and price rules.
func (m *BybitMeta) Discover(_ context.Context, pair domain.Pair) (domain.Pair, error) {
	symbol := bybit.SymbolV5(pair.Symbol())

	res, err := m.client.V5().Market().GetInstrumentsInfo(bybit.V5GetInstrumentsInfoParam{
		Category: "spot",
		Symbol:   &symbol,
	})
	if err != nil {
		return domain.Pair{}, errors.Wrapf(err, "failed to get bybit instrument info for %s", pair.String())
	}

	for _, s := range res.Result.Spot.List {
		if string(s.Symbol) != pair.Symbol() {
			continue
		}

		lotDecimals, err := decimalsOf(s.LotSizeFilter.BasePrecision)
		if err != nil {
			return domain.Pair{}, err
		}

		quoteDecimals, err := decimalsOf(s.PriceFilter.TickSize)
		if err != nil {
			return domain.Pair{}, err
		}

		orderMin, err := decimal.NewFromString(s.LotSizeFilter.MinOrderQty)
		if err != nil {
			return domain.Pair{}, errors.Wrapf(err, "failed to parse min order qty %q", s.LotSizeFilter.MinOrderQty)
		}

		pair.LotDecimals = lotDecimals
		pair.QuoteDecimals = quoteDecimals
		pair.OrderMin = orderMin

		return pair, pair.Validate()
	}

	return domain.Pair{}, fmt.Errorf("bybit does not list %s", pair.String())
}
