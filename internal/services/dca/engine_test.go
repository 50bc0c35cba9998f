package dca

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stacker/internal/domain"
	"stacker/pkg/retrier"
)

// testNow is the fixed invocation time every engine test runs at.
var testNow = time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

type fakeClock struct {
	serverTime time.Time
	err        error
}

func (f *fakeClock) ServerTime(ctx context.Context) (time.Time, error) {
	return f.serverTime, f.err
}

type fakeWallet struct {
	equity   decimal.Decimal
	balances map[string]decimal.Decimal
	err      error
}

func (f *fakeWallet) TradeBalance(ctx context.Context, currency string) (domain.BalanceSnapshot, error) {
	if f.err != nil {
		return domain.BalanceSnapshot{}, f.err
	}
	return domain.BalanceSnapshot{Currency: currency, Equity: f.equity}, nil
}

func (f *fakeWallet) Balances(ctx context.Context) (map[string]decimal.Decimal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.balances, nil
}

type fakeLedger struct {
	open   []domain.LedgerOrder
	closed []domain.LedgerOrder
	err    error

	openCalls int
	gotSince  time.Time
}

func (f *fakeLedger) OpenOrders(ctx context.Context, pair domain.Pair) ([]domain.LedgerOrder, error) {
	f.openCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.open, nil
}

func (f *fakeLedger) ClosedOrdersSince(ctx context.Context, pair domain.Pair, since time.Time) ([]domain.LedgerOrder, error) {
	f.gotSince = since
	if f.err != nil {
		return nil, f.err
	}
	return f.closed, nil
}

type fakePricer struct {
	ask decimal.Decimal
	err error
}

func (f *fakePricer) AskPrice(ctx context.Context, pair domain.Pair) (decimal.Decimal, error) {
	return f.ask, f.err
}

type fakeTrader struct {
	txid string
	err  error

	calls         int
	gotVolume     decimal.Decimal
	gotLimitPrice decimal.Decimal
	gotClientID   string
}

func (f *fakeTrader) SubmitLimitBuy(ctx context.Context, pair domain.Pair, volume, limitPrice decimal.Decimal, clientOrderID string) (string, string, error) {
	f.calls++
	f.gotVolume = volume
	f.gotLimitPrice = limitPrice
	f.gotClientID = clientOrderID
	if f.err != nil {
		return "", "", f.err
	}
	descr := fmt.Sprintf("buy %s %s @ limit %s", volume.String(), pair.Symbol(), limitPrice.String())
	return f.txid, descr, nil
}

type fakeJournal struct {
	saved     []domain.Order
	snapshots []domain.BalanceSnapshot
	err       error
	snapErr   error
}

func (f *fakeJournal) SaveOrder(order domain.Order) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, order)
	return nil
}

func (f *fakeJournal) SaveSnapshot(observed time.Time, snapshot domain.BalanceSnapshot) error {
	if f.snapErr != nil {
		return f.snapErr
	}
	f.snapshots = append(f.snapshots, snapshot)
	return nil
}

type fakes struct {
	clock   *fakeClock
	wallet  *fakeWallet
	ledger  *fakeLedger
	pricer  *fakePricer
	trader  *fakeTrader
	journal *fakeJournal
}

// happyFakes returns collaborators for a run that should place an order:
// clocks agree, funds cover the spend, the window is empty.
func happyFakes() *fakes {
	return &fakes{
		clock: &fakeClock{serverTime: testNow},
		wallet: &fakeWallet{
			equity:   decimal.NewFromInt(1000),
			balances: map[string]decimal.Decimal{"USDT": decimal.NewFromInt(1000)},
		},
		ledger:  &fakeLedger{},
		pricer:  &fakePricer{ask: decimal.NewFromInt(20000)},
		trader:  &fakeTrader{txid: "tx-1"},
		journal: &fakeJournal{},
	}
}

func testPair() domain.Pair {
	return domain.Pair{
		From:          "BTC",
		To:            "USDT",
		LotDecimals:   8,
		QuoteDecimals: 1,
		OrderMin:      decimal.RequireFromString("0.0001"),
	}
}

func newTestEngine(t *testing.T, pair domain.Pair, amount decimal.Decimal, recurrenceDays int, f *fakes) *Engine {
	t.Helper()

	e, err := NewEngine(zap.NewNop(), pair, amount, recurrenceDays,
		f.clock, f.wallet, f.ledger, f.pricer, f.trader, f.journal)
	require.NoError(t, err)

	e.now = func() time.Time { return testNow }
	e.retry = retrier.New(retrier.WithMaxRetries(0))

	return e
}

func ledgerOrder(pairID string, createdAt time.Time) domain.LedgerOrder {
	return domain.LedgerOrder{
		OrderID:   "1",
		PairID:    pairID,
		Side:      "buy",
		Status:    "new",
		CreatedAt: createdAt,
	}
}

func TestEngine_Run_SubmitsAndJournalsOrder(t *testing.T) {
	f := happyFakes()
	e := newTestEngine(t, testPair(), decimal.NewFromInt(50), 1, f)

	order, err := e.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, order, "expected an order to be placed")

	// 50 / 20000 = 0.0025
	assert.True(t, order.Volume.Equal(decimal.RequireFromString("0.0025")), "expected volume 0.0025, got %s", order.Volume)
	assert.True(t, order.LimitPrice.Equal(decimal.NewFromInt(20000)), "expected limit 20000, got %s", order.LimitPrice)
	assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(50)), "expected total 50, got %s", order.TotalPrice)
	// 50 * 0.26% = 0.13
	assert.True(t, order.Fee.Equal(decimal.RequireFromString("0.13")), "expected fee 0.13, got %s", order.Fee)
	assert.Equal(t, "tx-1", order.TxID)
	assert.Equal(t, "buy 0.0025 BTCUSDT @ limit 20000", order.Description)
	assert.NotEmpty(t, order.ClientOrderID)

	require.Equal(t, 1, f.trader.calls)
	assert.True(t, f.trader.gotVolume.Equal(order.Volume))
	assert.True(t, f.trader.gotLimitPrice.Equal(order.LimitPrice))
	assert.Equal(t, order.ClientOrderID, f.trader.gotClientID)

	require.Len(t, f.journal.saved, 1, "submitted order must be journaled")
	assert.Equal(t, "tx-1", f.journal.saved[0].TxID)
	assert.True(t, f.journal.saved[0].Timestamp.Equal(testNow))
}

func TestEngine_Run_WindowDedup(t *testing.T) {
	inWindow := testNow.Add(-2 * time.Hour)

	tests := []struct {
		name      string
		open      []domain.LedgerOrder
		closed    []domain.LedgerOrder
		wantOrder bool
	}{
		{
			name:      "open order suppresses",
			open:      []domain.LedgerOrder{ledgerOrder("BTC_USDT", inWindow)},
			wantOrder: false,
		},
		{
			name:      "closed order in window suppresses",
			closed:    []domain.LedgerOrder{ledgerOrder("BTC_USDT", inWindow)},
			wantOrder: false,
		},
		{
			name:      "alternate pair form suppresses",
			closed:    []domain.LedgerOrder{ledgerOrder("BTCUSDT", inWindow)},
			wantOrder: false,
		},
		{
			name:      "open and closed together suppress",
			open:      []domain.LedgerOrder{ledgerOrder("BTC_USDT", inWindow)},
			closed:    []domain.LedgerOrder{ledgerOrder("BTCUSDT", inWindow)},
			wantOrder: false,
		},
		{
			name:      "orders for other pairs do not suppress",
			open:      []domain.LedgerOrder{ledgerOrder("ETH_USDT", inWindow)},
			closed:    []domain.LedgerOrder{ledgerOrder("ETHUSDT", inWindow)},
			wantOrder: true,
		},
		{
			name:      "empty window places an order",
			wantOrder: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := happyFakes()
			f.ledger.open = tt.open
			f.ledger.closed = tt.closed

			e := newTestEngine(t, testPair(), decimal.NewFromInt(50), 1, f)

			order, err := e.Run(context.Background())
			require.NoError(t, err, "a suppressed run is a no-op, not a failure")

			if tt.wantOrder {
				require.NotNil(t, order)
				assert.Equal(t, 1, f.trader.calls)
				assert.Len(t, f.journal.saved, 1)
			} else {
				require.Nil(t, order)
				assert.Zero(t, f.trader.calls, "no submission when the window holds a buy")
				assert.Empty(t, f.journal.saved, "nothing to journal when no order was placed")
			}
		})
	}
}

func TestEngine_Run_WindowStartPassedToLedger(t *testing.T) {
	tests := []struct {
		name           string
		recurrenceDays int
		want           time.Time
	}{
		{
			name:           "daily window starts on the invocation day",
			recurrenceDays: 1,
			want:           time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:           "weekly window reaches six days back",
			recurrenceDays: 7,
			want:           time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := happyFakes()
			e := newTestEngine(t, testPair(), decimal.NewFromInt(50), tt.recurrenceDays, f)

			_, err := e.Run(context.Background())
			require.NoError(t, err)

			assert.True(t, f.ledger.gotSince.Equal(tt.want), "expected window start %s, got %s", tt.want, f.ledger.gotSince)
		})
	}
}

func TestEngine_Run_ClockDrift(t *testing.T) {
	tests := []struct {
		name     string
		server   time.Time
		wantSkew bool
	}{
		{name: "clocks agree", server: testNow, wantSkew: false},
		{name: "server exactly one second behind", server: testNow.Add(-time.Second), wantSkew: false},
		{name: "server exactly one second ahead", server: testNow.Add(time.Second), wantSkew: false},
		{name: "server just over a second behind", server: testNow.Add(-time.Second - time.Millisecond), wantSkew: true},
		{name: "server two seconds ahead", server: testNow.Add(2 * time.Second), wantSkew: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := happyFakes()
			f.clock.serverTime = tt.server

			e := newTestEngine(t, testPair(), decimal.NewFromInt(50), 1, f)

			order, err := e.Run(context.Background())
			if !tt.wantSkew {
				require.NoError(t, err)
				require.NotNil(t, order)
				return
			}

			require.Error(t, err)
			var skew *domain.ClockSkewError
			require.True(t, errors.As(err, &skew), "expected ClockSkewError, got %T", err)
			assert.Equal(t, time.Second, skew.Tolerance)
			assert.Nil(t, order)
			assert.Zero(t, f.trader.calls, "no submission on a skewed clock")
		})
	}
}

func TestEngine_Run_InsufficientFunds(t *testing.T) {
	f := happyFakes()
	f.wallet.balances = map[string]decimal.Decimal{"USDT": decimal.NewFromInt(10)}

	e := newTestEngine(t, testPair(), decimal.NewFromInt(50), 1, f)

	order, err := e.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, order)

	var funds *domain.InsufficientFundsError
	require.True(t, errors.As(err, &funds), "expected InsufficientFundsError, got %T", err)
	assert.Equal(t, "USDT", funds.Currency)
	assert.True(t, funds.Available.Equal(decimal.NewFromInt(10)), "expected available 10, got %s", funds.Available)
	assert.True(t, funds.Required.Equal(decimal.NewFromInt(50)), "expected required 50, got %s", funds.Required)

	assert.Zero(t, f.ledger.openCalls, "funds are checked before the order ledger is consulted")
	assert.Zero(t, f.trader.calls)
	assert.Len(t, f.journal.snapshots, 1, "the observed balance is journaled even when the buy is refused")
}

func TestEngine_Run_MissingBalanceCurrencyReadsZero(t *testing.T) {
	f := happyFakes()
	f.wallet.balances = map[string]decimal.Decimal{"BTC": decimal.NewFromInt(2)}

	e := newTestEngine(t, testPair(), decimal.NewFromInt(50), 1, f)

	_, err := e.Run(context.Background())
	require.Error(t, err)

	var funds *domain.InsufficientFundsError
	require.True(t, errors.As(err, &funds), "expected InsufficientFundsError, got %T", err)
	assert.True(t, funds.Available.IsZero(), "a currency absent from the balances map reads as zero, got %s", funds.Available)
}

func TestEngine_Run_OrderTooSmall(t *testing.T) {
	pair := testPair()
	pair.LotDecimals = 2
	pair.OrderMin = decimal.RequireFromString("0.01")

	f := happyFakes()
	f.pricer.ask = decimal.NewFromInt(50000)

	// 1 / 50000 truncates to 0.00 at 2 lot decimals
	e := newTestEngine(t, pair, decimal.NewFromInt(1), 1, f)

	order, err := e.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, order)

	var tooSmall *domain.OrderTooSmallError
	require.True(t, errors.As(err, &tooSmall), "expected OrderTooSmallError, got %T", err)
	assert.Zero(t, f.trader.calls, "an undersized order must not reach the venue")
	assert.Empty(t, f.journal.saved)
}

func TestEngine_Run_SubmissionFailureIsNotJournaled(t *testing.T) {
	venueErr := errors.New("venue rejected the order")

	f := happyFakes()
	f.trader.err = venueErr

	e := newTestEngine(t, testPair(), decimal.NewFromInt(50), 1, f)

	order, err := e.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, order)

	var submission *domain.SubmissionError
	require.True(t, errors.As(err, &submission), "expected SubmissionError, got %T", err)
	assert.True(t, errors.Is(err, venueErr), "the venue cause must stay reachable through Unwrap")

	assert.Empty(t, f.journal.saved, "a failed submission must never be journaled")
}

func TestEngine_Run_JournalFailureStillReturnsOrder(t *testing.T) {
	f := happyFakes()
	f.journal.err = errors.New("disk full")

	e := newTestEngine(t, testPair(), decimal.NewFromInt(50), 1, f)

	order, err := e.Run(context.Background())
	require.Error(t, err, "a journal failure after submission is reported")
	require.NotNil(t, order, "the order was submitted and must be handed back")
	assert.Equal(t, "tx-1", order.TxID)
}

func TestEngine_Run_JournalsBalanceSnapshot(t *testing.T) {
	f := happyFakes()
	e := newTestEngine(t, testPair(), decimal.NewFromInt(50), 1, f)

	_, err := e.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, f.journal.snapshots, 1)
	assert.Equal(t, "USDT", f.journal.snapshots[0].Currency)
	assert.True(t, f.journal.snapshots[0].Equity.Equal(decimal.NewFromInt(1000)), "expected equity 1000, got %s", f.journal.snapshots[0].Equity.String())
}

func TestEngine_Run_SnapshotFailureDoesNotBlockBuy(t *testing.T) {
	f := happyFakes()
	f.journal.snapErr = errors.New("disk full")

	e := newTestEngine(t, testPair(), decimal.NewFromInt(50), 1, f)

	order, err := e.Run(context.Background())
	require.NoError(t, err, "balance history is best effort")
	require.NotNil(t, order)
	assert.Len(t, f.journal.saved, 1, "the order itself must still be journaled")
}

func TestEngine_Run_PricerFailure(t *testing.T) {
	f := happyFakes()
	f.pricer.err = errors.New("ticker unavailable")

	e := newTestEngine(t, testPair(), decimal.NewFromInt(50), 1, f)

	order, err := e.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, order)
	assert.Zero(t, f.trader.calls)
}

func TestNewEngine_Validation(t *testing.T) {
	f := happyFakes()
	logger := zap.NewNop()

	_, err := NewEngine(logger, domain.Pair{}, decimal.NewFromInt(50), 1,
		f.clock, f.wallet, f.ledger, f.pricer, f.trader, f.journal)
	require.Error(t, err, "an unvalidated pair must be rejected")

	_, err = NewEngine(logger, testPair(), decimal.Zero, 1,
		f.clock, f.wallet, f.ledger, f.pricer, f.trader, f.journal)
	require.Error(t, err, "a zero amount must be rejected")

	_, err = NewEngine(logger, testPair(), decimal.NewFromInt(50), 0,
		f.clock, f.wallet, f.ledger, f.pricer, f.trader, f.journal)
	require.Error(t, err, "recurrence below one day must be rejected")
}

func TestWindowStart(t *testing.T) {
	tests := []struct {
		name  string
		local time.Time
		days  int
		want  time.Time
	}{
		{
			name:  "daily recurrence keeps the invocation day",
			local: time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC),
			days:  1,
			want:  time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "two day recurrence includes yesterday",
			local: time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC),
			days:  2,
			want:  time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "midnight stays on its own day",
			local: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			days:  1,
			want:  time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "zoned local time converts to UTC before truncation",
			local: time.Date(2024, 3, 10, 1, 30, 0, 0, time.FixedZone("UTC+2", 2*60*60)),
			days:  1,
			want:  time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := windowStart(tt.local, tt.days)
			assert.True(t, got.Equal(tt.want), "expected window start %s, got %s", tt.want, got)
		})
	}
}
