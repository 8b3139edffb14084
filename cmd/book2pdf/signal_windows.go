//go:build windows

package main

import (
	"context"
	"os"
)

// notifyContext cancels on Ctrl+C. SIGTERM does not exist on Windows.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return notifySignals(parent, os.Interrupt)
}
