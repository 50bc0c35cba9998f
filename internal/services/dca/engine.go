// Package dca implements the recurring buy engine. One invocation evaluates
// and places at most one limit order.
package dca

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stacker/internal/domain"
	"stacker/pkg/retrier"
)

// clockDriftTolerance bounds the allowed gap between the local clock and the
// venue clock. A drifted clock invalidates the recurrence window arithmetic.
const clockDriftTolerance = time.Second

type clock interface {
	ServerTime(ctx context.Context) (time.Time, error)
}

type wallet interface {
	// TradeBalance reports overall account equity in the given currency.
	TradeBalance(ctx context.Context, currency string) (domain.BalanceSnapshot, error)
	// Balances reports free per-currency balances.
	Balances(ctx context.Context) (map[string]decimal.Decimal, error)
}

type ledger interface {
	OpenOrders(ctx context.Context, pair domain.Pair) ([]domain.LedgerOrder, error)
	ClosedOrdersSince(ctx context.Context, pair domain.Pair, since time.Time) ([]domain.LedgerOrder, error)
}

type pricer interface {
	AskPrice(ctx context.Context, pair domain.Pair) (decimal.Decimal, error)
}

type trader interface {
	SubmitLimitBuy(ctx context.Context, pair domain.Pair, volume, limitPrice decimal.Decimal, clientOrderID string) (txid, descr string, err error)
}

type journal interface {
	SaveOrder(order domain.Order) error
	SaveSnapshot(observed time.Time, snapshot domain.BalanceSnapshot) error
}

// Engine places a recurring limit buy unless one already exists within the
// recurrence window. Safe to invoke any number of times per day.
type Engine struct {
	pair           domain.Pair
	amount         decimal.Decimal
	recurrenceDays int

	clock   clock
	wallet  wallet
	ledger  ledger
	pricer  pricer
	trader  trader
	journal journal

	l     *zap.Logger
	retry *retrier.Retrier

	// now is overridable in tests
	now func() time.Time
}

// NewEngine returns a configured engine.
func NewEngine(l *zap.Logger, pair domain.Pair, amount decimal.Decimal, recurrenceDays int,
	clock clock, wallet wallet, ledger ledger, pricer pricer, trader trader, journal journal) (*Engine, error) {

	if err := pair.Validate(); err != nil {
		return nil, err
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("amount must be positive, got %s", amount.String())
	}
	if recurrenceDays < 1 {
		return nil, fmt.Errorf("recurrence days must be at least 1, got %d", recurrenceDays)
	}

	return &Engine{
		pair:           pair,
		amount:         amount,
		recurrenceDays: recurrenceDays,
		clock:          clock,
		wallet:         wallet,
		ledger:         ledger,
		pricer:         pricer,
		trader:         trader,
		journal:        journal,
		l:              l,
		retry:          retrier.New(),
		now:            time.Now,
	}, nil
}

// Run evaluates one recurring buy. It returns the submitted order, or
// (nil, nil) when the window already holds a buy and nothing was placed.
func (e *Engine) Run(ctx context.Context) (*domain.Order, error) {
	if err := e.checkClock(ctx); err != nil {
		return nil, err
	}

	local := e.now()

	if err := e.checkFunds(ctx, local); err != nil {
		return nil, err
	}

	count, err := e.countWindowBuys(ctx, windowStart(local, e.recurrenceDays))
	if err != nil {
		return nil, err
	}
	if count > 0 {
		e.l.Info("buy already placed within recurrence window, skipping",
			zap.String("pair", e.pair.String()),
			zap.Int("orders", count),
			zap.Int("recurrence_days", e.recurrenceDays))
		return nil, nil
	}

	ask, err := retrier.DoWithData(e.retry, ctx, func(ctx context.Context) (decimal.Decimal, error) {
		return e.pricer.AskPrice(ctx, e.pair)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "pricer failed for pair %s", e.pair.String())
	}

	order, err := domain.NewOrder(e.pair, e.amount, ask, local)
	if err != nil {
		return nil, err
	}
	order.ClientOrderID = uuid.New().String()

	e.l.Info("placing recurring buy",
		zap.String("order", order.String()),
		zap.String("client_order_id", order.ClientOrderID))

	txid, descr, err := e.trader.SubmitLimitBuy(ctx, e.pair, order.Volume, order.LimitPrice, order.ClientOrderID)
	if err != nil {
		return nil, &domain.SubmissionError{Pair: e.pair.String(), Err: err}
	}
	order.TxID = txid
	order.Description = descr

	if err := e.journal.SaveOrder(order); err != nil {
		e.l.Error("order submitted but journal write failed",
			zap.Error(err),
			zap.String("txid", order.TxID))
		return &order, errors.Wrap(err, "failed to journal submitted order")
	}

	e.l.Info("order submitted",
		zap.String("txid", order.TxID),
		zap.String("descr", order.Description))

	return &order, nil
}

func (e *Engine) checkClock(ctx context.Context) error {
	server, err := retrier.DoWithData(e.retry, ctx, func(ctx context.Context) (time.Time, error) {
		return e.clock.ServerTime(ctx)
	})
	if err != nil {
		return errors.Wrap(err, "failed to get venue server time")
	}

	drift := e.now().Sub(server)
	if drift < 0 {
		drift = -drift
	}
	if drift > clockDriftTolerance {
		return &domain.ClockSkewError{Drift: drift, Tolerance: clockDriftTolerance}
	}

	e.l.Info("venue clock in sync", zap.Duration("drift", drift))

	return nil
}

func (e *Engine) checkFunds(ctx context.Context, observed time.Time) error {
	snapshot, err := retrier.DoWithData(e.retry, ctx, func(ctx context.Context) (domain.BalanceSnapshot, error) {
		return e.wallet.TradeBalance(ctx, e.pair.To)
	})
	if err != nil {
		return errors.Wrap(err, "failed to get trade balance")
	}

	e.l.Info("trade balance",
		zap.String("currency", snapshot.Currency),
		zap.String("equity", snapshot.Equity.String()))

	// balance history is best effort and never blocks the run
	if err := e.journal.SaveSnapshot(observed, snapshot); err != nil {
		e.l.Error("failed to journal balance snapshot", zap.Error(err))
	}

	balances, err := retrier.DoWithData(e.retry, ctx, func(ctx context.Context) (map[string]decimal.Decimal, error) {
		return e.wallet.Balances(ctx)
	})
	if err != nil {
		return errors.Wrap(err, "failed to get balances")
	}

	// a currency absent from the map reads as zero
	available := balances[e.pair.To]
	if available.LessThan(e.amount) {
		return &domain.InsufficientFundsError{Currency: e.pair.To, Available: available, Required: e.amount}
	}

	return nil
}

// countWindowBuys counts this pair's orders that block a new buy: anything
// still open, plus anything opened at or after since.
func (e *Engine) countWindowBuys(ctx context.Context, since time.Time) (int, error) {
	open, err := retrier.DoWithData(e.retry, ctx, func(ctx context.Context) ([]domain.LedgerOrder, error) {
		return e.ledger.OpenOrders(ctx, e.pair)
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to list open orders")
	}

	closed, err := retrier.DoWithData(e.retry, ctx, func(ctx context.Context) ([]domain.LedgerOrder, error) {
		return e.ledger.ClosedOrdersSince(ctx, e.pair, since)
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to list closed orders")
	}

	count := 0
	for _, o := range open {
		if e.pair.Matches(o.PairID) {
			count++
		}
	}
	for _, o := range closed {
		if e.pair.Matches(o.PairID) {
			count++
		}
	}

	return count, nil
}

// windowStart returns the UTC day boundary recurrenceDays-1 days back from
// the invocation day. A buy opened at or after it suppresses a new one.
func windowStart(local time.Time, recurrenceDays int) time.Time {
	day := local.UTC().Truncate(24 * time.Hour)
	return day.AddDate(0, 0, -(recurrenceDays - 1))
}
