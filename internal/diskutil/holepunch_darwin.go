//go:build darwin

package diskutil

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// fPunchhole mirrors xnu's fpunchhole_t (sys/fcntl.h), used with F_PUNCHHOLE.
type fPunchhole struct {
	flags    uint32
	reserved uint32
	offset   int64
	length   int64
}

const fPunchholeCmd = 99 // F_PUNCHHOLE

func punchHole(fd int, start, length int64) error {
	arg := fPunchhole{offset: start, length: length}
	_, _, errno := unix.Syscall(unix.SYS_FCNTL, uintptr(fd), uintptr(fPunchholeCmd), uintptr(unsafe.Pointer(&arg)))
	if errno != 0 {
		return errno
	}
	return nil
}
