// Package ledger reads the venue's own order ledger, the engine's source of
// truth for buys already placed.
package ledger

import (
	"context"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"

	"stacker/internal/domain"
)

type BinanceLedger struct {
	client *binance.Client
}

func NewBinanceLedger(client *binance.Client) *BinanceLedger {
	return &BinanceLedger{client: client}
}

// OpenOrders returns currently open orders for the pair.
func (l *BinanceLedger) OpenOrders(ctx context.Context, pair domain.Pair) ([]domain.LedgerOrder, error) {
	orders, err := l.client.NewListOpenOrdersService().Symbol(pair.Symbol()).Do(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list binance open orders")
	}

	result := make([]domain.LedgerOrder, 0, len(orders))
	for _, o := range orders {
		result = append(result, toLedgerOrder(o))
	}

	return result, nil
}

// ClosedOrdersSince returns orders no longer open that were opened at or
// after since. Still-open orders are excluded here; OpenOrders reports those.
func (l *BinanceLedger) ClosedOrdersSince(ctx context.Context, pair domain.Pair, since time.Time) ([]domain.LedgerOrder, error) {
	orders, err := l.client.NewListOrdersService().
		Symbol(pair.Symbol()).
		StartTime(since.UnixMilli()).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list binance order history")
	}

	result := make([]domain.LedgerOrder, 0, len(orders))
	for _, o := range orders {
		if o.Status == binance.OrderStatusTypeNew || o.Status == binance.OrderStatusTypePartiallyFilled {
			continue
		}
		result = append(result, toLedgerOrder(o))
	}

	return result, nil
}

func toLedgerOrder(o *binance.Order) domain.LedgerOrder {
	return domain.LedgerOrder{
		OrderID:   strconv.FormatInt(o.OrderID, 10),
		PairID:    o.Symbol,
		Side:      string(o.Side),
		Status:    string(o.Status),
		CreatedAt: time.UnixMilli(o.Time).UTC(),
	}
}
