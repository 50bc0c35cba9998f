package meta

import (
	"context"
	"fmt"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"stacker/internal/domain"
)

type BinanceMeta struct {
	client *binance.Client
}

func NewBinanceMeta(client *binance.Client) *BinanceMeta {
	return &BinanceMeta{client: client}
}

// Discover fills pair with the venue's lot and price rules.
func (m *BinanceMeta) Discover(ctx context.Context, pair domain.Pair) (domain.Pair, error) {
	info, err := m.client.NewExchangeInfoService().Symbol(pair.Symbol()).Do(ctx)
	if err != nil {
		return domain.Pair{}, errors.Wrapf(err, "failed to get binance exchange info for %s", pair.String())
	}

	for _, s := range info.Symbols {
		if s.Symbol != pair.Symbol() {
			continue
		}

		lot := s.LotSizeFilter()
		price := s.PriceFilter()
		if lot == nil || price == nil {
			return domain.Pair{}, fmt.Errorf("binance exchange info for %s misses lot or price filter", pair.String())
		}

		lotDecimals, err := decimalsOf(lot.StepSize)
		if err != nil {
			return domain.Pair{}, err
		}

		quoteDecimals, err := decimalsOf(price.TickSize)
		if err != nil {
			return domain.Pair{}, err
		}

		orderMin, err := decimal.NewFromString(lot.MinQuantity)
		if err != nil {
			return domain.Pair{}, errors.Wrapf(err, "failed to parse min quantity %q", lot.MinQuantity)
		}

		pair.LotDecimals = lotDecimals
		pair.QuoteDecimals = quoteDecimals
		pair.OrderMin = orderMin

		return pair, pair.Validate()
	}

	return domain.Pair{}, fmt.Errorf("binance does not list %s", pair.String())
}
