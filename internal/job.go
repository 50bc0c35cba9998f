package internal

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"stacker/config"
	"stacker/internal/domain"
	"stacker/internal/services/dca"
	"stacker/internal/storage/orders"
)

// Job is a single recurring buy wired to its venue services and journal.
type Job struct {
	Config config.Config

	engine *dca.Engine
	store  *orders.Store
}

// NewJob wires a recurring buy job: venue services for the configured
// platform, pair metadata discovery, the order journal and the engine.
func NewJob(ctx context.Context, logger *zap.Logger, conf config.Config, client any) (*Job, error) {
	provider, err := NewServiceProvider(client)
	if err != nil {
		return nil, err
	}

	pair, err := provider.Meta().Discover(ctx, conf.Pair)
	if err != nil {
		return nil, errors.Wrap(err, "failed to discover pair metadata")
	}

	store, err := orders.NewStore(conf.OrdersDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open order journal")
	}

	l := logger.With(zap.String("platform", conf.Platform), zap.String("pair", pair.String()))

	engine, err := dca.NewEngine(l, pair, conf.Amount, conf.RecurrenceDays,
		provider.Clock(), provider.Wallet(), provider.Ledger(), provider.Pricer(), provider.Trader(), store)
	if err != nil {
		store.Close()
		return nil, errors.Wrap(err, "failed to create engine")
	}

	return &Job{Config: conf, engine: engine, store: store}, nil
}

// Run evaluates the job once. It returns the submitted order, or nil when
// the recurrence window already holds a buy.
func (j *Job) Run(ctx context.Context) (*domain.Order, error) {
	return j.engine.Run(ctx)
}

// Close closes the job's journal.
func (j *Job) Close() error {
	return j.store.Close()
}
