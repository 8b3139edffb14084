//go:build !windows

package main

import (
	"context"
	"os"
	"syscall"
)

// notifyContext cancels on SIGINT or SIGTERM.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return notifySignals(parent, os.Interrupt, syscall.SIGTERM)
}
