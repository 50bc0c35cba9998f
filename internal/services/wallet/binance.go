// Package wallet reads account balances from the venue.
package wallet

import (
	"context"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"stacker/internal/domain"
)

type BinanceWallet struct {
	client *binance.Client
}

func NewBinanceWallet(client *binance.Client) *BinanceWallet {
	return &BinanceWallet{client: client}
}

// Balances returns the free balance per currency. Currencies the account
// never held are simply absent from the map.
func (w *BinanceWallet) Balances(ctx context.Context) (map[string]decimal.Decimal, error) {
	account, err := w.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get binance account")
	}

	balances := make(map[string]decimal.Decimal, len(account.Balances))
	for _, b := range account.Balances {
		free, err := decimal.NewFromString(b.Free)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s balance", b.Asset)
		}
		balances[b.Asset] = free
	}

	return balances, nil
}

// TradeBalance reports account equity denominated in currency. The spot
// account has no aggregate equity endpoint, so this is the given currency's
// free plus locked funds.
func (w *BinanceWallet) TradeBalance(ctx context.Context, currency string) (domain.BalanceSnapshot, error) {
	account, err := w.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return domain.BalanceSnapshot{}, errors.Wrap(err, "failed to get binance account")
	}

	for _, b := range account.Balances {
		if b.Asset != currency {
			continue
		}

		free, err := decimal.NewFromString(b.Free)
		if err != nil {
			return domain.BalanceSnapshot{}, errors.Wrapf(err, "failed to parse free %s balance", currency)
		}
		locked, err := decimal.NewFromString(b.Locked)
		if err != nil {
			return domain.BalanceSnapshot{}, errors.Wrapf(err, "failed to parse locked %s balance", currency)
		}

		return domain.BalanceSnapshot{Currency: currency, Equity: free.Add(locked)}, nil
	}

	return domain.BalanceSnapshot{Currency: currency, Equity: decimal.Zero}, nil
}
