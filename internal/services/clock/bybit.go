package clock

import (
	"context"
	"strconv"
	"time"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
)

type BybitClock struct {
	client *bybit.Client
}

func NewBybitClock(client *bybit.Client) *BybitClock {
	return &BybitClock{client: client}
}

// ServerTime returns the venue's current time in UTC.
func (c *BybitClock) ServerTime(_ context.Context) (time.Time, error) {
	res, err := c.client.NewTimeService().GetServerTime()
	if err != nil {
		return time.Time{}, errors.Wrap(err, "failed to get bybit server time")
	}

	sec, err := strconv.ParseInt(res.Result.TimeSecond, 10, 64)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "failed to parse bybit server time %q", res.Result.TimeSecond)
	}

	return time.Unix(sec, 0).UTC(), nil
}
