package process

// Notes:
// - Only PIDs that cannot name a live process are used. Real tree kills are
//   covered by the renderer integration tests, which close a launched browser.

import "testing"

// ---------------------------------------------------------------------------
// TestKillProcessGroup - Harmless PIDs
// ---------------------------------------------------------------------------

func TestKillProcessGroup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		pid  int
	}{
		{name: "zero is ignored", pid: 0},
		{name: "negative is ignored", pid: -1},
		{name: "nonexistent", pid: 999999999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			KillProcessGroup(tt.pid)
		})
	}
}
