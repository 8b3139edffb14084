package main

// Notes:
// - Real signal delivery is exercised only on Unix, with syscall.Kill on the
//   test process while SIGUSR1 is routed to the context; other platforms
//   cover stop() and parent propagation.

import (
	"context"
	"errors"
	"testing"
)

// ---------------------------------------------------------------------------
// TestNotifyContext - Cancellation and cause
// ---------------------------------------------------------------------------

func TestNotifyContext(t *testing.T) {
	t.Parallel()

	t.Run("starts live", func(t *testing.T) {
		t.Parallel()

		ctx, stop := notifyContext(context.Background())
		defer stop()

		if ctx.Err() != nil {
			t.Fatalf("ctx.Err() = %v, want nil", ctx.Err())
		}
	})

	t.Run("stop cancels without interrupt cause", func(t *testing.T) {
		t.Parallel()

		ctx, stop := notifyContext(context.Background())
		stop()

		<-ctx.Done()
		if errors.Is(context.Cause(ctx), ErrInterrupted) {
			t.Error("stop() must not report an interrupt")
		}
	})

	t.Run("inherits parent cancellation", func(t *testing.T) {
		t.Parallel()

		parent, cancel := context.WithCancel(context.Background())
		ctx, stop := notifyContext(parent)
		defer stop()

		cancel()
		<-ctx.Done()
		if !errors.Is(ctx.Err(), context.Canceled) {
			t.Errorf("ctx.Err() = %v, want context.Canceled", ctx.Err())
		}
	})
}
