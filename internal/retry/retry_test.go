package retry

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/quanyeomans/content-tamer-ai-sub003/internal/common"
)

func newTestExecutor(maxAttempts int) *Executor {
	e := NewExecutor(common.RetryConfig{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    4 * time.Millisecond,
	}, nil, nil)
	e.sleep = func(time.Duration) {} // no real waiting in tests
	return e
}

func eaccess() error {
	return &os.PathError{Op: "open", Path: "/locked/file", Err: syscall.EACCES}
}

func TestDoTransientThenSuccess(t *testing.T) {
	// EACCES twice, success on the third attempt.
	e := newTestExecutor(3)
	calls := 0
	out := e.Do(context.Background(), "test op", func(context.Context) error {
		calls++
		if calls < 3 {
			return eaccess()
		}
		return nil
	})

	want := Outcome{Attempts: 3, Succeeded: true}
	if diff := cmp.Diff(want, out, cmpopts.IgnoreFields(Outcome{}, "LastErr")); diff != "" {
		t.Errorf("Outcome mismatch (-want +got):\n%s", diff)
	}
}

func TestDoPermanentFailsImmediately(t *testing.T) {
	e := newTestExecutor(3)
	calls := 0
	out := e.Do(context.Background(), "test op", func(context.Context) error {
		calls++
		return common.NewAppError(common.KindPermanentProvider, "bad key", nil)
	})

	if calls != 1 {
		t.Errorf("calls = %d, want 1 (permanent must not consume retry budget)", calls)
	}
	if out.Succeeded || out.Attempts != 1 {
		t.Errorf("Outcome = %+v, want failed after 1 attempt", out)
	}
	if !errors.Is(out.LastErr, common.ErrPermanentProvider) {
		t.Errorf("LastErr = %v, want permanent provider", out.LastErr)
	}
}

func TestDoExhaustsBudget(t *testing.T) {
	e := newTestExecutor(3)
	out := e.Do(context.Background(), "test op", func(context.Context) error {
		return eaccess()
	})

	if out.Succeeded {
		t.Error("Outcome succeeded, want failure")
	}
	if out.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", out.Attempts)
	}
	if !errors.Is(out.LastErr, syscall.EACCES) {
		t.Errorf("LastErr = %v, want EACCES", out.LastErr)
	}
}

func TestDoCancelledContext(t *testing.T) {
	e := newTestExecutor(3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	out := e.Do(ctx, "test op", func(context.Context) error {
		calls++
		return nil
	})
	if calls != 0 {
		t.Errorf("calls = %d, want 0 on cancelled context", calls)
	}
	if out.Succeeded {
		t.Error("Outcome succeeded on cancelled context")
	}
}

func TestDoPanickingDisplayDoesNotBreakRetry(t *testing.T) {
	e := NewExecutor(common.RetryConfig{
		MaxAttempts: 2,
		BaseDelay:   time.Millisecond,
		MaxDelay:    time.Millisecond,
	}, panicDisplay{}, nil)
	e.sleep = func(time.Duration) {}

	calls := 0
	out := e.Do(context.Background(), "test op", func(context.Context) error {
		calls++
		if calls == 1 {
			return eaccess()
		}
		return nil
	})
	if !out.Succeeded || out.Attempts != 2 {
		t.Errorf("Outcome = %+v, want success after 2 attempts", out)
	}
}

type panicDisplay struct{}

func (panicDisplay) SetStatus(string)   { panic("display broken") }
func (panicDisplay) ShowWarning(string) { panic("display broken") }
func (panicDisplay) ShowError(string)   { panic("display broken") }

func TestBackoffCapped(t *testing.T) {
	e := NewExecutor(common.RetryConfig{
		MaxAttempts: 10,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    time.Second,
	}, nil, nil)
	if d := e.backoff(1); d != 100*time.Millisecond {
		t.Errorf("backoff(1) = %v", d)
	}
	if d := e.backoff(2); d != 200*time.Millisecond {
		t.Errorf("backoff(2) = %v", d)
	}
	if d := e.backoff(9); d != time.Second {
		t.Errorf("backoff(9) = %v, want cap", d)
	}
}
