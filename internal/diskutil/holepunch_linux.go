//go:build linux

package diskutil

import "golang.org/x/sys/unix"

func punchHole(fd int, start, length int64) error {
	err := unix.Fallocate(fd, unix.FALLOC_FL_PUNCH_HOLE|unix.FALLOC_FL_KEEP_SIZE, start, length)
	if err != nil {
		return err
	}
	return nil
}
