// Package tasks runs named background goroutines detached from request
// contexts and drains them at shutdown.
package tasks

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Runner launches named tasks on the runner's base context, which
// outlives the request that spawned them and is cancelled only at
// shutdown.
type Runner struct {
	base   context.Context
	logger zerolog.Logger
	wg     sync.WaitGroup
}

func NewRunner(base context.Context, logger zerolog.Logger) *Runner {
	return &Runner{base: base, logger: logger}
}

// Go runs fn on a new goroutine. A panic is contained and logged so a
// background task cannot take the process down.
func (r *Runner) Go(name string, fn func(ctx context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error().
					Str("task", name).
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("background task panicked")
			}
		}()
		r.logger.Debug().Str("task", name).Msg("background task started")
		fn(r.base)
		r.logger.Debug().Str("task", name).Msg("background task finished")
	}()
}

// Drain waits for in-flight tasks to finish, up to timeout. It reports
// false when the timeout elapsed with tasks still running.
func (r *Runner) Drain(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
