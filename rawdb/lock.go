// ABOUTME: OS-level advisory file lock guarding single-writer access to a database directory.
// ABOUTME: Non-blocking flock(2) — a second process opening the same database fails immediately.
package rawdb

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

type fileLock struct {
	f *os.File
}

func tryLockExclusive(f *os.File) (*fileLock, error) {
	err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrLocked
		}
		return nil, err
	}
	return &fileLock{f: f}, nil
}

func (l *fileLock) unlock() error {
	if l == nil || l.f == nil {
		return nil
	}
	return unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
}
