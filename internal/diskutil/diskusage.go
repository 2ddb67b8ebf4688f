// Package diskutil provides platform-specific primitives for sparse file
// accounting and hole punching that the region store needs to reclaim disk
// space from truncated regions.
package diskutil

import (
	"fmt"
	"os"
)

// Usage reports the number of bytes a file actually occupies on disk, as
// opposed to its logical length — the two diverge once regions are
// truncated and their tails are punched out.
type Usage uint64

// FromFile derives disk usage from st_blocks (512-byte units) on platforms
// that expose it, falling back to the logical file size elsewhere.
func FromFile(f *os.File) (Usage, error) {
	return usageFromFile(f)
}

// Bytes returns the usage in bytes.
func (u Usage) Bytes() uint64 {
	return uint64(u)
}

func (u Usage) String() string {
	const (
		kib = 1024
		mib = kib * 1024
		gib = mib * 1024
	)
	switch {
	case uint64(u) >= gib:
		return fmt.Sprintf("%.1f GiB", float64(u)/gib)
	case uint64(u) >= mib:
		return fmt.Sprintf("%.1f MiB", float64(u)/mib)
	case uint64(u) >= kib:
		return fmt.Sprintf("%.1f KiB", float64(u)/kib)
	default:
		return fmt.Sprintf("%d B", uint64(u))
	}
}
