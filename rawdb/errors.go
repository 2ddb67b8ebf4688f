// ABOUTME: Typed error taxonomy for the region store.
// ABOUTME: Sentinel errors for expected conditions, wrapped errors for parameterized ones.
package rawdb

import (
	"errors"
	"fmt"
)

var (
	// ErrLocked is returned when another process already holds the
	// database's advisory exclusive lock.
	ErrLocked = errors.New("rawdb: database is locked by another process")

	// ErrRegionNotFound is returned when a region lookup by name or id fails.
	ErrRegionNotFound = errors.New("rawdb: region not found")

	// ErrRegionAlreadyExists signals a region name collision. No operation
	// in this package returns it: CreateRegionIfNeeded hands back the
	// existing region for a name that is already taken.
	ErrRegionAlreadyExists = errors.New("rawdb: region already exists")

	// ErrRegionStillReferenced is returned by RemoveRegion when the region's
	// reference count is greater than one.
	ErrRegionStillReferenced = errors.New("rawdb: region still referenced")

	// ErrCorruptedMetadata is returned when the on-disk region directory
	// fails to parse.
	ErrCorruptedMetadata = errors.New("rawdb: corrupted region metadata")

	// ErrOverlappingCopyRanges is returned when growing a region (Append,
	// EnsureCapacity) would relocate it to a range that overlaps its old one.
	ErrOverlappingCopyRanges = errors.New("rawdb: overlapping copy ranges")

	// ErrWriteRetryLimitExceeded reports a write that ran out of retry
	// attempts. No operation in this package returns it: region writes grow
	// the region at most once and are never retried.
	ErrWriteRetryLimitExceeded = errors.New("rawdb: write retry limit exceeded")

	// ErrNameTooLong is returned when a region name exceeds the configured
	// maximum.
	ErrNameTooLong = errors.New("rawdb: region name too long")
)

// WriteOutOfBoundsError reports a write whose range exceeds the region's
// current length.
type WriteOutOfBoundsError struct {
	Position  int
	RegionLen int
}

func (e *WriteOutOfBoundsError) Error() string {
	return fmt.Sprintf("rawdb: write position %d is beyond region length %d", e.Position, e.RegionLen)
}

// TruncateInvalidError reports an attempt to truncate a region to a length
// longer than its current length.
type TruncateInvalidError struct {
	From       int
	CurrentLen int
}

func (e *TruncateInvalidError) Error() string {
	return fmt.Sprintf("rawdb: cannot truncate to %d bytes (current length %d)", e.From, e.CurrentLen)
}

// InvariantViolationError reports an internal consistency check failure.
// It is never fatal: the caller can still flush and shut down cleanly.
type InvariantViolationError struct {
	Detail string
}

func (e *InvariantViolationError) Error() string {
	return "rawdb: internal invariant violated: " + e.Detail
}

// HolePunchFailedError describes a failed hole punch at a given range. No
// operation in this package returns it: a failed punch is logged as the
// raw syscall error and never poisons the region — reclaiming disk space
// is best-effort.
type HolePunchFailedError struct {
	Start, Len int64
	Err        error
}

func (e *HolePunchFailedError) Error() string {
	return fmt.Sprintf("rawdb: failed to punch hole at offset %d (length %d): %v", e.Start, e.Len, e.Err)
}

func (e *HolePunchFailedError) Unwrap() error { return e.Err }
