package wallet

import (
	"context"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"stacker/internal/domain"
)

type BybitWallet struct {
	client *bybit.Client
}

func NewBybitWallet(client *bybit.Client) *BybitWallet {
	return &BybitWallet{client: client}
}

// Balances returns the wallet balance per coin of the unified account.
func (w *BybitWallet) Balances(_ context.Context) (map[string]decimal.Decimal, error) {
	res, err := w.client.V5().Account().GetWalletBalance(bybit.AccountTypeV5("UNIFIED"), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get bybit wallet balance")
	}

	balances := make(map[string]decimal.Decimal)
	if len(res.Result.List) == 0 {
		return balances, nil
	}

	for _, coin := range res.Result.List[0].Coin {
		bal, err := decimal.NewFromString(coin.WalletBalance)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s balance", string(coin.Coin))
		}
		balances[string(coin.Coin)] = bal
	}

	return balances, nil
}

// TradeBalance reports the unified account's total equity. The venue
// denominates it in USD regardless of the requested currency.
func (w *BybitWallet) TradeBalance(_ context.Context, _ string) (domain.BalanceSnapshot, error) {
	res, err := w.client.V5().Account().GetWalletBalance(bybit.AccountTypeV5("UNIFIED"), nil)
	if err != nil {
		return domain.BalanceSnapshot{}, errors.Wrap(err, "failed to get bybit wallet balance")
	}

	if len(res.Result.List) == 0 {
		return domain.BalanceSnapshot{Currency: "USD", Equity: decimal.Zero}, nil
	}

	equity, err := decimal.NewFromString(res.Result.List[0].TotalEquity)
	if err != nil {
		return domain.BalanceSnapshot{}, errors.Wrap(err, "failed to parse bybit total equity")
	}

	return domain.BalanceSnapshot{Currency: "USD", Equity: equity}, nil
}
