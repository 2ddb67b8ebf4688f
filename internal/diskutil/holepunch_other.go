//go:build !linux && !darwin

package diskutil

func punchHole(fd int, start, length int64) error {
	return ErrHolePunchUnsupported
}
