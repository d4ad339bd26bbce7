//go:build windows

package state

import "golang.org/x/sys/windows"

// flockLock acquires an exclusive lock with LockFileEx. Blocks until the
// lock is available.
func flockLock(fd uintptr) error {
	var ol windows.Overlapped
	return windows.LockFileEx(windows.Handle(fd), windows.LOCKFILE_EXCLUSIVE_LOCK, 0, 1, 0, &ol)
}

// flockShared acquires a shared lock: LockFileEx without the exclusive flag.
func flockShared(fd uintptr) error {
	var ol windows.Overlapped
	return windows.LockFileEx(windows.Handle(fd), 0, 0, 1, 0, &ol)
}

// flockUnlock releases the lock with UnlockFileEx.
func flockUnlock(fd uintptr) error {
	var ol windows.Overlapped
	return windows.UnlockFileEx(windows.Handle(fd), 0, 1, 0, &ol)
}
