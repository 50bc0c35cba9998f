package ledger

import (
	"context"
	"strconv"
	"time"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"

	"stacker/internal/domain"
)

type BybitLedger struct {
	client *bybit.Client
}

func NewBybitLedger(client *bybit.Client) *BybitLedger {
	return &BybitLedger{client: client}
}

// OpenOrders returns currently open spot orders for the pair.
func (l *BybitLedger) OpenOrders(_ context.Context, pair domain.Pair) ([]domain.LedgerOrder, error) {
	symbol := bybit.SymbolV5(pair.Symbol())

	res, err := l.client.V5().Order().GetOpenOrders(bybit.V5GetOpenOrdersParam{
		Category: "spot",
		Symbol:   &symbol,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list bybit open orders")
	}

	result := make([]domain.LedgerOrder, 0, len(res.Result.List))
	for _, o := range res.Result.List {
		createdAt, err := parseOrderTime(o.CreatedTime)
		if err != nil {
			return nil, err
		}

		result = append(result, domain.LedgerOrder{
			OrderID:   o.OrderID,
			PairID:    string(o.Symbol),
			Side:      string(o.Side),
			Status:    string(o.OrderStatus),
			CreatedAt: createdAt,
		})
	}

	return result, nil
}

// ClosedOrdersSince returns finished spot orders opened at or after since.
// The venue's history endpoint has no opened-after filter for spot, so the
// cutoff is applied here.
func (l *BybitLedger) ClosedOrdersSince(_ context.Context, pair domain.Pair, since time.Time) ([]domain.LedgerOrder, error) {
	symbol := bybit.SymbolV5(pair.Symbol())

	res, err := l.client.V5().Order().GetHistoryOrders(bybit.V5GetHistoryOrdersParam{
		Category: "spot",
		Symbol:   &symbol,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list bybit order history")
	}

	result := make([]domain.LedgerOrder, 0, len(res.Result.List))
	for _, o := range res.Result.List {
		createdAt, err := parseOrderTime(o.CreatedTime)
		if err != nil {
			return nil, err
		}
		if createdAt.Before(since) {
			continue
		}

		result = append(result, domain.LedgerOrder{
			OrderID:   o.OrderID,
			PairID:    string(o.Symbol),
			Side:      string(o.Side),
			Status:    string(o.OrderStatus),
			CreatedAt: createdAt,
		})
	}

	return result, nil
}

func parseOrderTime(ms string) (time.Time, error) {
	v, err := strconv.ParseInt(ms, 10, 64)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "failed to parse order timestamp %q", ms)
	}

	return time.UnixMilli(v).UTC(), nil
}
