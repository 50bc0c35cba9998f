package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// takerFeeRate is the fee rate applied when a limit order crosses the book
// immediately. Reported on the order for operator visibility; the venue
// remains authoritative for the fee actually charged.
var takerFeeRate = decimal.New(26, -4)

// OrderSide direction of an order.
type OrderSide string

const (
	// OrderSideBuy buy the base currency.
	OrderSideBuy OrderSide = "buy"
)

// OrderType execution type of an order.
type OrderType string

const (
	// OrderTypeLimit execute at the stated price or better.
	OrderTypeLimit OrderType = "limit"
)

// Order a single recurring buy, built fresh on every accepted invocation.
// TxID and Description are filled only after the venue accepts the order.
type Order struct {
	Timestamp     time.Time       `json:"ts"`
	Pair          string          `json:"pair"`
	Side          OrderSide       `json:"side"`
	Type          OrderType       `json:"type"`
	QuoteAmount   decimal.Decimal `json:"quote_amount"`
	AskPrice      decimal.Decimal `json:"ask_price"`
	Volume        decimal.Decimal `json:"volume"`
	LimitPrice    decimal.Decimal `json:"limit_price"`
	Fee           decimal.Decimal `json:"fee"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	ClientOrderID string          `json:"client_order_id"`
	TxID          string          `json:"txid,omitempty"`
	Description   string          `json:"descr,omitempty"`
}

// NewOrder builds a validated limit buy order for the pair.
//
// Volume is quoteAmount/askPrice truncated to the pair's lot decimals, never
// rounded up, so the configured spend is an upper bound. The limit price is
// the ask rounded to the pair's quote decimals. An order whose truncated
// volume falls below the pair minimum fails with OrderTooSmallError.
func NewOrder(pair Pair, quoteAmount, askPrice decimal.Decimal, ts time.Time) (Order, error) {
	if quoteAmount.LessThanOrEqual(decimal.Zero) {
		return Order{}, fmt.Errorf("quote amount must be positive, got %s", quoteAmount.String())
	}
	if askPrice.LessThanOrEqual(decimal.Zero) {
		return Order{}, fmt.Errorf("ask price must be positive, got %s", askPrice.String())
	}

	volume := quoteAmount.Div(askPrice).RoundFloor(pair.LotDecimals)
	if volume.LessThan(pair.OrderMin) {
		return Order{}, &OrderTooSmallError{Pair: pair.String(), Volume: volume, OrderMin: pair.OrderMin}
	}

	limitPrice := askPrice.Round(pair.QuoteDecimals)
	totalPrice := volume.Mul(limitPrice)

	return Order{
		Timestamp:   ts,
		Pair:        pair.String(),
		Side:        OrderSideBuy,
		Type:        OrderTypeLimit,
		QuoteAmount: quoteAmount,
		AskPrice:    askPrice,
		Volume:      volume,
		LimitPrice:  limitPrice,
		Fee:         totalPrice.Mul(takerFeeRate),
		TotalPrice:  totalPrice,
	}, nil
}

// String returns a human-readable string representation.
func (o *Order) String() string {
	return fmt.Sprintf("%s %s %s @ limit %s (total %s, fee %s)",
		o.Side, o.Volume.String(), o.Pair, o.LimitPrice.String(), o.TotalPrice.String(), o.Fee.String())
}
