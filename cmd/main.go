// Command stacker places recurring cryptocurrency buys. Each invocation
// evaluates every configured job once and exits, so it is meant to be driven
// by cron or a systemd timer. Running it more often than the configured
// recurrence is safe: a job whose window already holds a buy is a no-op.
//
// Usage:
//
//	stacker -config config.yaml
//	stacker -setup
//	stacker -config config.yaml -export orders.csv
//
// Required environment variables:
//
//	For Binance: BINANCE_API_KEY, BINANCE_API_SECRET
//	For Bybit: BYBIT_API_KEY, BYBIT_API_SECRET
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"stacker/config"
	"stacker/internal"
	"stacker/internal/clients"
	"stacker/internal/domain"
	"stacker/internal/setup"
	"stacker/internal/storage/orders"
)

func main() {
	flags := config.ParseFlags()

	if flags.Setup {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		flags.ConfigPath = setup.GeneratedConfigFile
	}

	configs, err := config.Get(flags.ConfigPath)
	if err != nil {
		log.Fatal(err)
	}

	if flags.ExportCSV != "" {
		if err := exportOrders(configs, flags.ExportCSV); err != nil {
			log.Fatal(err)
		}
		return
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	failed := 0
	for _, cfg := range configs {
		if err := runJob(context.Background(), logger, cfg); err != nil {
			logger.Error("job failed",
				zap.String("platform", cfg.Platform),
				zap.String("pair", cfg.Pair.String()),
				zap.Error(err))
			failed++
		}
	}

	if failed > 0 {
		logger.Sync()
		os.Exit(1)
	}
}

// runJob evaluates a single recurring buy job. Errors are returned rather
// than fatal so one failing job does not stop the rest.
func runJob(ctx context.Context, logger *zap.Logger, cfg config.Config) error {
	client, err := venueClient(cfg.Platform)
	if err != nil {
		return err
	}

	job, err := internal.NewJob(ctx, logger, cfg, client)
	if err != nil {
		return err
	}
	defer job.Close()

	l := logger.With(zap.String("platform", cfg.Platform), zap.String("pair", cfg.Pair.String()))

	order, err := job.Run(ctx)
	if err != nil {
		return err
	}
	if order == nil {
		l.Info("nothing to do")
		return nil
	}

	l.Info("recurring buy placed",
		zap.String("txid", order.TxID),
		zap.String("descr", order.Description))

	return nil
}

func venueClient(platform string) (any, error) {
	switch platform {
	case "binance":
		apiKey := os.Getenv("BINANCE_API_KEY")
		apiSecret := os.Getenv("BINANCE_API_SECRET")
		if apiKey == "" || apiSecret == "" {
			return nil, errors.New("BINANCE_API_KEY and BINANCE_API_SECRET environment variables must be set")
		}
		return clients.NewBinanceClient(apiKey, apiSecret), nil
	case "bybit":
		apiKey := os.Getenv("BYBIT_API_KEY")
		apiSecret := os.Getenv("BYBIT_API_SECRET")
		if apiKey == "" || apiSecret == "" {
			return nil, errors.New("BYBIT_API_KEY and BYBIT_API_SECRET environment variables must be set")
		}
		return clients.NewBybitClient(apiKey, apiSecret), nil
	default:
		return nil, fmt.Errorf("unsupported platform %q", platform)
	}
}

// exportOrders replays every distinct order journal the jobs use and writes
// the union to a single CSV file.
func exportOrders(configs []config.Config, path string) error {
	var all []domain.Order

	seen := make(map[string]bool)
	for _, cfg := range configs {
		if seen[cfg.OrdersDir] {
			continue
		}
		seen[cfg.OrdersDir] = true

		store, err := orders.NewStore(cfg.OrdersDir)
		if err != nil {
			return err
		}

		replayed, err := store.Orders()
		if err != nil {
			store.Close()
			return err
		}
		store.Close()

		all = append(all, replayed...)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return orders.WriteCSV(f, all)
}
