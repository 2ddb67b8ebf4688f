// Package codec implements the page-compression strategies used by
// compressed vectors: Pco (a delta + zigzag-varint numeric codec), LZ4, and
// Zstd. All three share one contract so a compressed vector can pick its
// strategy by format tag and treat it uniformly.
package codec

import "errors"

// ErrLengthMismatch is returned by Decompress/DecompressInto when the
// decoded element count does not match the caller's expectation — the
// compressed-vector layer turns this into a DecompressionMismatchError
// that names the offending page.
var ErrLengthMismatch = errors.New("codec: decompressed length does not match expected value count")

// Strategy compresses and decompresses fixed-width numeric lanes, each
// given as its raw 64-bit-extended bit pattern (see vecdb's bitsOf/fromBits)
// so one codec implementation serves every Numeric element type.
type Strategy interface {
	// Compress encodes values into a new byte slice.
	Compress(values []uint64) []byte

	// Decompress decodes bytes into exactly expectedLen values, returning
	// ErrLengthMismatch if the encoded stream disagrees.
	Decompress(data []byte, expectedLen int) ([]uint64, error)

	// DecompressInto decodes into buf, growing and returning it if it is
	// too small, to let callers reuse one scratch allocation across many
	// page decodes.
	DecompressInto(data []byte, expectedLen int, buf []uint64) ([]uint64, error)
}
