package trader

import (
	"context"
	"fmt"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"stacker/internal/domain"
)

type BybitTrader struct {
	client *bybit.Client
}

func NewBybitTrader(client *bybit.Client) *BybitTrader {
	return &BybitTrader{client: client}
}

// SubmitLimitBuy places a spot limit buy and returns the venue order id
// together with a human-readable description of what was placed.
func (t *BybitTrader) SubmitLimitBuy(_ context.Context, pair domain.Pair, volume, limitPrice decimal.Decimal, clientOrderID string) (string, string, error) {
	price := limitPrice.String()

	res, err := t.client.V5().Order().CreateOrder(bybit.V5CreateOrderParam{
		Category:    "spot",
		Symbol:      bybit.SymbolV5(pair.Symbol()),
		Side:        bybit.SideBuy,
		OrderType:   bybit.OrderTypeLimit,
		Qty:         volume.String(),
		Price:       &price,
		OrderLinkID: &clientOrderID,
	})
	if err != nil {
		return "", "", errors.Wrap(err, "failed to create buy order")
	}

	descr := fmt.Sprintf("buy %s %s @ limit %s", volume.String(), pair.Symbol(), limitPrice.String())

	return res.Result.OrderID, descr, nil
}
