package vecdb

import "encoding/binary"

// HeaderSize is the fixed prefix of every region backing a vector: version
// (u64 LE), format tag (u8), stamp (u64 LE).
const HeaderSize = 8 + 1 + 8

// nativeEndianBigBit is folded into the stored format tag for FormatNative
// vectors: the header's format byte doubles as the host-endianness flag the
// engine needs to refuse opening a native vector on a disagreeing host,
// without widening the on-disk layout beyond the three documented fields.
const nativeEndianBigBit = 0x80

// header is the decoded prologue of a vector's region.
type header struct {
	Version uint64
	Format  Format
	Stamp   uint64
}

// hostIsBigEndian reports whether this process's native byte order is big
// endian, used to stamp and verify FormatNative vectors.
func hostIsBigEndian() bool {
	var buf [2]byte
	binary.NativeEndian.PutUint16(buf[:], 1)
	return buf[0] == 0
}

func encodeHeader(dst []byte, h header) []byte {
	tag := uint8(h.Format)
	if h.Format == FormatNative && hostIsBigEndian() {
		tag |= nativeEndianBigBit
	}
	dst = binary.LittleEndian.AppendUint64(dst, h.Version)
	dst = append(dst, tag)
	dst = binary.LittleEndian.AppendUint64(dst, h.Stamp)
	return dst
}

func decodeHeader(src []byte) (header, error) {
	if len(src) < HeaderSize {
		return header{}, ErrSizeOverflow
	}
	version := binary.LittleEndian.Uint64(src[0:8])
	tag := src[8]
	stamp := binary.LittleEndian.Uint64(src[9:17])

	format := Format(tag &^ nativeEndianBigBit)
	h := header{Version: version, Format: format, Stamp: stamp}

	if format == FormatNative {
		storedBig := tag&nativeEndianBigBit != 0
		if storedBig != hostIsBigEndian() {
			return header{}, ErrWrongEndian
		}
	}
	return h, nil
}

// isUninitialized reports whether a header has never been stamped by a
// successful write — version zero means "virgin" per the engine's contract.
func (h header) isUninitialized() bool {
	return h.Version == 0
}
