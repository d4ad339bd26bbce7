//go:build !windows

package state

import "syscall"

// flockLock acquires an exclusive lock, used by writers.
func flockLock(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_EX)
}

// flockShared acquires a shared lock, used by readers.
func flockShared(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_SH)
}

// flockUnlock releases either kind of lock.
func flockUnlock(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_UN)
}
