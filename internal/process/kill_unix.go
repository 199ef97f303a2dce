//go:build !windows

package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group led by pid, taking
// the browser's helper processes down with it.
func KillProcessGroup(pid int) {
	// Best effort; the launcher kill runs afterwards.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
