//go:build windows

package state

import "golang.org/x/sys/windows"

// flockLock takes the exclusive lock guarding the session file so two
// crewgate invocations cannot interleave writes. LockFileEx blocks until
// the lock is available, matching the Unix flock behavior.
func flockLock(fd uintptr) error {
	var ol windows.Overlapped
	return windows.LockFileEx(windows.Handle(fd), windows.LOCKFILE_EXCLUSIVE_LOCK, 0, 1, 0, &ol)
}

// flockUnlock releases the session file lock.
func flockUnlock(fd uintptr) error {
	var ol windows.Overlapped
	return windows.UnlockFileEx(windows.Handle(fd), 0, 1, 0, &ol)
}
