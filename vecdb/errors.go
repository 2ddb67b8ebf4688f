// ABOUTME: Typed error taxonomy for the typed-vector layer.
package vecdb

import (
	"errors"
	"fmt"
)

var (
	// ErrWrongEndian is returned when opening a native-format vector whose
	// header endianness flag disagrees with the host's.
	ErrWrongEndian = errors.New("vecdb: native vector endianness does not match this host")

	// ErrFormatMismatch is returned when the stored format tag differs from
	// the one requested on import, and forced import was not requested.
	ErrFormatMismatch = errors.New("vecdb: stored format does not match requested format")

	// ErrSizeOverflow is returned when a header is decoded from a buffer
	// shorter than HeaderSize.
	ErrSizeOverflow = errors.New("vecdb: size computation overflowed")

	// ErrRolledBackTooFar is returned when rollback_to is given a stamp for
	// which no snapshot is retained.
	ErrRolledBackTooFar = errors.New("vecdb: rollback target stamp is not retained")

	// ErrIndexOutOfRange is returned when reading an index at or past a
	// compressed vector's logical length.
	ErrIndexOutOfRange = errors.New("vecdb: index out of range")

	// ErrTruncateNotOnPageBoundary is returned when truncating a
	// compressed vector to a length that falls inside a compressed page
	// rather than at a page boundary or within the uncompressed tail.
	ErrTruncateNotOnPageBoundary = errors.New("vecdb: compressed vector truncation must land on a page boundary")
)

// TruncateInvalidError reports an attempt to truncate a vector to a length
// longer than its current logical length.
type TruncateInvalidError struct {
	From, CurrentLen uint64
}

func (e *TruncateInvalidError) Error() string {
	return fmt.Sprintf("vecdb: cannot truncate to %d elements (current length %d)", e.From, e.CurrentLen)
}

// DifferentVersionError is returned when a vector's stored schema version
// differs from the version requested on import.
type DifferentVersionError struct {
	Stored, Requested uint64
}

func (e *DifferentVersionError) Error() string {
	return fmt.Sprintf("vecdb: stored version %d does not match requested version %d", e.Stored, e.Requested)
}

// DecompressionMismatchError is returned when decompressing a page fails to
// yield exactly its recorded Values field worth of elements.
type DecompressionMismatchError struct {
	PageIndex int
	Expected  int
}

func (e *DecompressionMismatchError) Error() string {
	return fmt.Sprintf("vecdb: page %d failed to decompress to its recorded %d values", e.PageIndex, e.Expected)
}

// StampMismatchError describes a vector's stamp disagreeing with a sibling
// vector's stamp. No operation in this package compares stamps or returns
// it.
type StampMismatchError struct {
	Own, Other uint64
}

func (e *StampMismatchError) Error() string {
	return fmt.Sprintf("vecdb: stamp %d does not match sibling stamp %d", e.Own, e.Other)
}
