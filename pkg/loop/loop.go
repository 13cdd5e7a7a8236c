// Package loop runs a task repeatedly until it breaks or its context is done.
package loop

import (
	"context"
	"fmt"
	"time"
)

// Next tells Start what to do after a task.
//
// Zero value equals Continue(0).
type Next struct {
	err      error
	quit     bool
	interval time.Duration
}

func (n Next) String() string {
	if n.err != nil {
		return fmt.Sprintf("[break] with error: %v", n.err)
	}
	if n.quit {
		return "[break] without error"
	}

	return fmt.Sprintf("[continue] interval: %s", n.interval)
}

// Continue runs the task again after interval.
func Continue(interval time.Duration) Next {
	return Next{interval: interval}
}

// Break stops the loop. err is returned from Start as it is.
func Break(err error) Next {
	return Next{quit: true, err: err}
}

// Task receives the value returned last time (or the initial value),
// and returns the next value and what to do next.
type Task[T any] func(context.Context, T) (T, Next)

// Start runs task in loop.
//
// For example, purging expired sessions every minute looks like:
//
//	loop.Start(ctx, 0, func(ctx context.Context, total int) (int, loop.Next) {
//		n, err := sessions.Purge(ctx, time.Now())
//		if err != nil {
//			return total, loop.Break(err)
//		}
//		return total + n, loop.Continue(time.Minute)
//	})
//
// # Args
//
// - ctx: when it is done, the loop breaks with ctx.Err().
//
// - init: task is called with init at the first time.
//
// - task
//
// - options
//
// # Returns
//
// - T: the last value task returned. It is returned even with an error.
//
// - error: the error passed to Break, or ctx.Err().
func Start[T any](ctx context.Context, init T, task Task[T], options ...LoopOption) (T, error) {
	select {
	case <-ctx.Done():
		return init, ctx.Err()
	default:
	}

	value := init
	for {
		lc := &loopConfig{ctx: ctx}
		for _, opt := range options {
			lc = opt(lc)
		}

		v, n := func() (T, Next) {
			if lc.deferred != nil {
				defer lc.deferred()
			}
			return task(lc.ctx, value)
		}()

		value = v
		if n.err != nil {
			return value, n.err
		} else if n.quit {
			return value, nil
		}

		timer := time.NewTimer(n.interval)
		select {
		case <-ctx.Done():
			// shutting down comes first.
			timer.Stop()
			return value, ctx.Err()
		case <-timer.C:
		}
	}
}

type loopConfig struct {
	ctx      context.Context
	deferred func()
}

type LoopOption func(*loopConfig) *loopConfig

// WithTimeout sets timeout on the context passed to each task run.
func WithTimeout(d time.Duration) LoopOption {
	return func(lc *loopConfig) *loopConfig {
		ctx, cancel := context.WithTimeout(lc.ctx, d)
		return &loopConfig{
			ctx: ctx,
			deferred: func() {
				if lc.deferred != nil {
					defer lc.deferred()
				}
				cancel()
			},
		}
	}
}
