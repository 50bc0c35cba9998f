package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"stacker/internal/domain"
)

const (
	defaultOrdersDir      = "./orders"
	defaultRecurrenceDays = 1
)

// Config one recurring buy job after validation.
type Config struct {
	Platform       string
	Pair           domain.Pair
	Amount         decimal.Decimal
	RecurrenceDays int
	OrdersDir      string
}

// ConfigTmp mirrors the yaml schema before validation.
type ConfigTmp struct {
	Platform       string `yaml:"platform"`
	Pair           string `yaml:"pair"`
	Amount         string `yaml:"amount"`
	RecurrenceDays int    `yaml:"recurrence_days,omitempty"`
	OrdersDir      string `yaml:"orders_dir,omitempty"`
}

// Get reads the job list from a yaml config file and validates every entry.
func Get(path string) ([]Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var configsTmp []ConfigTmp
	if err := yaml.Unmarshal(f, &configsTmp); err != nil {
		return nil, fmt.Errorf("failed to parse yaml config %s: %w", path, err)
	}
	if len(configsTmp) == 0 {
		return nil, fmt.Errorf("config %s contains no jobs", path)
	}

	configs := make([]Config, 0, len(configsTmp))
	for i, c := range configsTmp {
		cfg, err := c.validate()
		if err != nil {
			return nil, fmt.Errorf("config job %d: %w", i, err)
		}
		configs = append(configs, cfg)
	}

	return configs, nil
}

func (c ConfigTmp) validate() (Config, error) {
	switch c.Platform {
	case "binance", "bybit":
	default:
		return Config{}, fmt.Errorf("unsupported platform %q", c.Platform)
	}

	pair, err := domain.PairFromString(c.Pair)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'pair' param: %w", err)
	}

	amount, err := decimal.NewFromString(c.Amount)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'amount' param %q (quote currency amount, e.g. \"50\"): %w", c.Amount, err)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return Config{}, fmt.Errorf("'amount' must be positive, got %s", amount.String())
	}

	recurrenceDays := c.RecurrenceDays
	if recurrenceDays == 0 {
		recurrenceDays = defaultRecurrenceDays
	}
	if recurrenceDays < 1 {
		return Config{}, fmt.Errorf("'recurrence_days' must be >= 1, got %d", c.RecurrenceDays)
	}

	ordersDir := c.OrdersDir
	if ordersDir == "" {
		ordersDir = defaultOrdersDir
	}

	return Config{
		Platform:       c.Platform,
		Pair:           pair,
		Amount:         amount,
		RecurrenceDays: recurrenceDays,
		OrdersDir:      ordersDir,
	}, nil
}
