//go:build unix

package rawdb

import (
	"os"

	"golang.org/x/sys/unix"
)

// mmapRegion is a single contiguous memory mapping of the data file. The
// database remaps (grows) it whenever the file is extended beyond the
// mapping's current size.
type mmapRegion []byte

func mapFile(f *os.File, size int) (mmapRegion, error) {
	if size == 0 {
		// mmap requires a non-empty length; a fresh database maps nothing
		// until the first region forces the file to grow.
		return mmapRegion{}, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	return mmapRegion(data), nil
}

func (m mmapRegion) unmap() error {
	if len(m) == 0 {
		return nil
	}
	return unix.Munmap([]byte(m))
}

func (m mmapRegion) sync() error {
	if len(m) == 0 {
		return nil
	}
	return unix.Msync([]byte(m), unix.MS_SYNC)
}

// writeAt copies data into the mapping at offset without bounds checking;
// callers must have validated offset+len(data) <= len(m). Safety is
// enforced by locking rather than by the type system: callers hold the
// database mmap lock for read (so no remap happens underneath) and the
// target region's own write lock (so no Reader or other writer touches
// those bytes).
func (m mmapRegion) writeAt(offset int, data []byte) {
	copy(m[offset:offset+len(data)], data)
}
