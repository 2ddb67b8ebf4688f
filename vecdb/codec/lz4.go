package codec

import (
	"encoding/binary"

	"github.com/pierrec/lz4/v4"
)

// LZ4 compresses pages for speed over ratio: a fast block codec with no
// persistent encoder/decoder state to share across calls, unlike Zstd.
type LZ4 struct{}

func (LZ4) Compress(values []uint64) []byte {
	raw := encodeLanes(values)
	bound := lz4.CompressBlockBound(len(raw))
	dst := make([]byte, bound)

	var c lz4.Compressor
	n, err := c.CompressBlock(raw, dst)
	if err != nil || n == 0 {
		// Incompressible or too short for a block; store raw with a
		// sentinel length prefix of 0 so Decompress knows to skip LZ4.
		return append(binary.LittleEndian.AppendUint64(nil, 0), raw...)
	}
	return append(binary.LittleEndian.AppendUint64(nil, uint64(len(raw))), dst[:n]...)
}

func (l LZ4) Decompress(data []byte, expectedLen int) ([]uint64, error) {
	return l.DecompressInto(data, expectedLen, nil)
}

func (LZ4) DecompressInto(data []byte, expectedLen int, buf []uint64) ([]uint64, error) {
	if len(data) < 8 {
		return nil, ErrLengthMismatch
	}
	rawLen := binary.LittleEndian.Uint64(data[:8])
	payload := data[8:]

	var raw []byte
	if rawLen == 0 {
		raw = payload
	} else {
		raw = make([]byte, rawLen)
		n, err := lz4.UncompressBlock(payload, raw)
		if err != nil {
			return nil, ErrLengthMismatch
		}
		raw = raw[:n]
	}
	return decodeLanesInto(raw, expectedLen, buf)
}

func encodeLanes(values []uint64) []byte {
	buf := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], v)
	}
	return buf
}

func decodeLanesInto(raw []byte, expectedLen int, buf []uint64) ([]uint64, error) {
	if len(raw) != expectedLen*8 {
		return nil, ErrLengthMismatch
	}
	if cap(buf) < expectedLen {
		buf = make([]uint64, 0, expectedLen)
	}
	buf = buf[:0]
	for i := range expectedLen {
		buf = append(buf, binary.LittleEndian.Uint64(raw[i*8:]))
	}
	return buf, nil
}
