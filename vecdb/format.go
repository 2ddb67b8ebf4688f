package vecdb

// Format identifies the on-disk representation of a vector's values.
type Format uint8

const (
	// FormatBytes stores each value via an explicit little-endian
	// serializer, portable across host endianness.
	FormatBytes Format = 0

	// FormatNative memcpy's each value's native in-memory representation.
	// Refuses to open on a host whose endianness disagrees with the
	// header, since the bytes are meaningless without it.
	FormatNative Format = 1

	// FormatPco compresses numeric pages with a delta + zigzag-varint codec.
	FormatPco Format = 64

	// FormatLZ4 compresses pages with LZ4, favoring speed over ratio.
	FormatLZ4 Format = 65

	// FormatZstd compresses pages with Zstandard, favoring ratio over speed.
	FormatZstd Format = 66
)

func (f Format) String() string {
	switch f {
	case FormatBytes:
		return "bytes"
	case FormatNative:
		return "native"
	case FormatPco:
		return "pco"
	case FormatLZ4:
		return "lz4"
	case FormatZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// IsCompressed reports whether a format stores compressed pages rather than
// a flat array of records.
func (f Format) IsCompressed() bool {
	switch f {
	case FormatPco, FormatLZ4, FormatZstd:
		return true
	default:
		return false
	}
}
