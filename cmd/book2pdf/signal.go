package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
)

// ErrInterrupted is the cancellation cause once a termination signal arrives.
var ErrInterrupted = errors.New("interrupted")

// notifySignals returns a context canceled with cause ErrInterrupted when
// one of sigs is received. Call stop() to release resources.
func notifySignals(parent context.Context, sigs ...os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	go func() {
		select {
		case <-ch:
			cancel(ErrInterrupted)
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(ch)
		cancel(context.Canceled)
	}
}
