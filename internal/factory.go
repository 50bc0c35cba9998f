package internal

import (
	"context"
	"fmt"
	"time"

	binance "github.com/adshao/go-binance/v2"
	bybit "github.com/hirokisan/bybit/v2"
	"github.com/shopspring/decimal"

	"stacker/internal/domain"
	"stacker/internal/services/clock"
	"stacker/internal/services/ledger"
	"stacker/internal/services/meta"
	"stacker/internal/services/pricer"
	"stacker/internal/services/trader"
	"stacker/internal/services/wallet"
)

type Clock interface {
	ServerTime(ctx context.Context) (time.Time, error)
}

type Wallet interface {
	TradeBalance(ctx context.Context, currency string) (domain.BalanceSnapshot, error)
	Balances(ctx context.Context) (map[string]decimal.Decimal, error)
}

type Ledger interface {
	OpenOrders(ctx context.Context, pair domain.Pair) ([]domain.LedgerOrder, error)
	ClosedOrdersSince(ctx context.Context, pair domain.Pair, since time.Time) ([]domain.LedgerOrder, error)
}

type Pricer interface {
	AskPrice(ctx context.Context, pair domain.Pair) (decimal.Decimal, error)
}

type Trader interface {
	SubmitLimitBuy(ctx context.Context, pair domain.Pair, volume, limitPrice decimal.Decimal, clientOrderID string) (string, string, error)
}

type Meta interface {
	Discover(ctx context.Context, pair domain.Pair) (domain.Pair, error)
}

// ServiceProvider builds platform-specific venue services.
type ServiceProvider interface {
	Clock() Clock
	Wallet() Wallet
	Ledger() Ledger
	Pricer() Pricer
	Trader() Trader
	Meta() Meta
}

// NewServiceProvider creates a new service provider based on the client type.
// This is the single point of truth for dispatching to platform-specific implementations.
func NewServiceProvider(client any) (ServiceProvider, error) {
	switch c := client.(type) {
	case *binance.Client:
		return &binanceProvider{client: c}, nil
	case *bybit.Client:
		return &bybitProvider{client: c}, nil
	default:
		return nil, fmt.Errorf("unsupported client type: %T", client)
	}
}

type binanceProvider struct {
	client *binance.Client
}

func (p *binanceProvider) Clock() Clock   { return clock.NewBinanceClock(p.client) }
func (p *binanceProvider) Wallet() Wallet { return wallet.NewBinanceWallet(p.client) }
func (p *binanceProvider) Ledger() Ledger { return ledger.NewBinanceLedger(p.client) }
func (p *binanceProvider) Pricer() Pricer { return pricer.NewBinancePricer(p.client) }
func (p *binanceProvider) Trader() Trader { return trader.NewBinanceTrader(p.client) }
func (p *binanceProvider) Meta() Meta     { return meta.NewBinanceMeta(p.client) }

type bybitProvider struct {
	client *bybit.Client
}

func (p *bybitProvider) Clock() Clock   { return clock.NewBybitClock(p.client) }
func (p *bybitProvider) Wallet() Wallet { return wallet.NewBybitWallet(p.client) }
func (p *bybitProvider) Ledger() Ledger { return ledger.NewBybitLedger(p.client) }
func (p *bybitProvider) Pricer() Pricer { return pricer.NewBybitPricer(p.client) }
func (p *bybitProvider) Trader() Trader { return trader.NewBybitTrader(p.client) }
func (p *bybitProvider) Meta() Meta     { return meta.NewBybitMeta(p.client) }
