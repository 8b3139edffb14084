//go:build !windows

// Package process terminates browser process trees left by the renderers.
package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group led by pid, taking
// down Chrome's renderer and GPU children with it. Non-positive PIDs are
// ignored: -0 would target the caller's own group.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Errors are ignored; launcher.Kill() runs afterwards.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
