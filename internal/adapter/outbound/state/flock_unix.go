//go:build !windows

package state

import "syscall"

// flockLock takes the exclusive lock guarding the session file so two
// crewgate invocations cannot interleave writes (Unix flock).
func flockLock(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_EX)
}

// flockUnlock releases the session file lock.
func flockUnlock(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_UN)
}
