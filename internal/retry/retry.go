// Package retry drives bounded retry loops with backoff over classified
// failures. It is a plain blocking loop: the workload is I/O-bound but
// low-concurrency, so suspending the calling goroutine is enough.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quanyeomans/content-tamer-ai-sub003/internal/common"
	"github.com/quanyeomans/content-tamer-ai-sub003/internal/display"
)

// Outcome summarizes one retryable operation. Scoped to that operation
// and discarded after it completes.
type Outcome struct {
	Attempts  int
	Succeeded bool
	LastErr   error
}

type Executor struct {
	cfg     common.RetryConfig
	display display.Safe
	logger  *slog.Logger
	sleep   func(time.Duration) // stubbed in tests
}

func NewExecutor(cfg common.RetryConfig, disp display.Context, logger *slog.Logger) *Executor {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 500 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		cfg:     cfg,
		display: display.NewSafe(disp),
		logger:  logger,
		sleep:   time.Sleep,
	}
}

// Do runs fn until it succeeds, fails permanently, or the attempt budget
// runs out. Exhausting the budget reports as a failed Outcome, never a
// panic; a permanent classification fails immediately without spending
// the remaining budget.
func (e *Executor) Do(ctx context.Context, op string, fn func(context.Context) error) Outcome {
	var out Outcome
	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		out.Attempts = attempt
		if err := ctx.Err(); err != nil {
			out.LastErr = err
			return out
		}

		err := fn(ctx)
		if err == nil {
			out.Succeeded = true
			return out
		}
		out.LastErr = err

		if Classify(err) == Permanent {
			e.logger.Error("retry.permanent_failure", "op", op, "attempt", attempt, "error", err)
			e.display.ShowError(fmt.Sprintf("%s failed: %v", op, err))
			return out
		}

		if attempt == e.cfg.MaxAttempts {
			e.logger.Error("retry.exhausted", "op", op, "attempts", attempt, "error", err)
			e.display.ShowError(fmt.Sprintf("%s failed after %d attempts: %v", op, attempt, err))
			return out
		}

		delay := e.backoff(attempt)
		e.logger.Warn("retry.transient_failure",
			"op", op, "attempt", attempt, "max_attempts", e.cfg.MaxAttempts,
			"delay_ms", delay.Milliseconds(), "error", err)
		e.display.ShowWarning(fmt.Sprintf("%s failed (attempt %d/%d), retrying: %v",
			op, attempt, e.cfg.MaxAttempts, err))
		e.sleep(delay)
	}
	return out
}

func (e *Executor) backoff(attempt int) time.Duration {
	delay := e.cfg.BaseDelay << (attempt - 1)
	if delay > e.cfg.MaxDelay || delay <= 0 {
		delay = e.cfg.MaxDelay
	}
	return delay
}
