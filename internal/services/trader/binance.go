// Package trader submits orders to the venue.
package trader

import (
	"context"
	"fmt"
	"strconv"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"stacker/internal/domain"
)

type BinanceTrader struct {
	client *binance.Client
}

func NewBinanceTrader(client *binance.Client) *BinanceTrader {
	return &BinanceTrader{client: client}
}

// SubmitLimitBuy places a GTC limit buy and returns the venue order id
// together with a human-readable description of what was placed.
func (t *BinanceTrader) SubmitLimitBuy(ctx context.Context, pair domain.Pair, volume, limitPrice decimal.Decimal, clientOrderID string) (string, string, error) {
	res, err := t.client.NewCreateOrderService().Symbol(pair.Symbol()).
		Side(binance.SideTypeBuy).Type(binance.OrderTypeLimit).
		TimeInForce(binance.TimeInForceTypeGTC).
		Quantity(volume.String()).
		Price(limitPrice.String()).
		NewClientOrderID(clientOrderID).
		Do(ctx)
	if err != nil {
		return "", "", errors.Wrap(err, "failed to create buy order")
	}

	txid := strconv.FormatInt(res.OrderID, 10)
	descr := fmt.Sprintf("buy %s %s @ limit %s", volume.String(), pair.Symbol(), limitPrice.String())

	return txid, descr, nil
}
