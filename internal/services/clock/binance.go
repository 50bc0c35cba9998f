// Package clock reports venue server time for drift validation.
package clock

import (
	"context"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
)

type BinanceClock struct {
	client *binance.Client
}

func NewBinanceClock(client *binance.Client) *BinanceClock {
	return &BinanceClock{client: client}
}

// ServerTime returns the venue's current time in UTC.
func (c *BinanceClock) ServerTime(ctx context.Context) (time.Time, error) {
	ms, err := c.client.NewServerTimeService().Do(ctx)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "failed to get binance server time")
	}

	return time.UnixMilli(ms).UTC(), nil
}
