//go:build unix

package diskutil

import (
	"os"

	"golang.org/x/sys/unix"
)

func usageFromFile(f *os.File) (Usage, error) {
	var stat unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &stat); err != nil {
		return 0, err
	}
	// Blocks are always counted in 512-byte units regardless of the
	// filesystem's native block size.
	return Usage(uint64(stat.Blocks) * 512), nil
}
