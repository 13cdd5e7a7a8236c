// Package housekeeping cleans up records which are no longer needed.
package housekeeping

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	kdb "github.com/opst/contactbook/pkg/db"
	"github.com/opst/contactbook/pkg/loop"
)

type config struct {
	clock func() time.Time
}

type Option func(*config) *config

// WithClock replaces the clock deciding which sessions are expired.
func WithClock(clock func() time.Time) Option {
	return func(c *config) *config {
		c.clock = clock
		return c
	}
}

// PurgeSessions purges expired sessions every interval, until ctx is done.
//
// Failures are logged and retried in the next round.
//
// # Returns
//
// - int: how many sessions are purged in total.
//
// - error: ctx.Err() when ctx is done by a reason other than cancel.
func PurgeSessions(
	ctx context.Context,
	logger echo.Logger,
	sessions kdb.SessionInterface,
	interval time.Duration,
	opts ...Option,
) (int, error) {
	conf := &config{clock: time.Now}
	for _, o := range opts {
		conf = o(conf)
	}

	total, err := loop.Start(
		ctx, 0,
		func(ctx context.Context, total int) (int, loop.Next) {
			n, err := sessions.Purge(ctx, conf.clock())
			if err != nil {
				logger.Warnf("housekeeping: failed to purge sessions: %s", err)
				return total, loop.Continue(interval)
			}
			if 0 < n {
				logger.Infof("housekeeping: %d expired sessions are purged", n)
			}
			return total + n, loop.Continue(interval)
		},
		loop.WithTimeout(interval),
	)
	if errors.Is(err, context.Canceled) {
		return total, nil
	}
	return total, err
}
