package codec

import "encoding/binary"

// Pco is a standard-library numeric codec: delta-of-previous followed by
// zigzag + LEB128 varint encoding. Built on encoding/binary alone since no
// available library exposes an equivalent adaptive numeric range coder
// (see DESIGN.md). It favors ratio on slowly-varying numeric sequences.
type Pco struct{}

func (Pco) Compress(values []uint64) []byte {
	buf := make([]byte, 0, len(values)*2+binary.MaxVarintLen64)
	var prev int64
	for _, v := range values {
		cur := int64(v)
		delta := cur - prev
		buf = appendZigzagVarint(buf, delta)
		prev = cur
	}
	return buf
}

func (p Pco) Decompress(data []byte, expectedLen int) ([]uint64, error) {
	return p.DecompressInto(data, expectedLen, nil)
}

func (Pco) DecompressInto(data []byte, expectedLen int, buf []uint64) ([]uint64, error) {
	if cap(buf) < expectedLen {
		buf = make([]uint64, 0, expectedLen)
	}
	buf = buf[:0]

	var prev int64
	rest := data
	for range expectedLen {
		delta, n, ok := readZigzagVarint(rest)
		if !ok {
			return nil, ErrLengthMismatch
		}
		rest = rest[n:]
		prev += delta
		buf = append(buf, uint64(prev))
	}
	if len(rest) != 0 {
		return nil, ErrLengthMismatch
	}
	return buf, nil
}

func appendZigzagVarint(dst []byte, v int64) []byte {
	zz := uint64((v << 1) ^ (v >> 63))
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], zz)
	return append(dst, tmp[:n]...)
}

func readZigzagVarint(src []byte) (value int64, n int, ok bool) {
	zz, n := binary.Uvarint(src)
	if n <= 0 {
		return 0, 0, false
	}
	value = int64(zz>>1) ^ -int64(zz&1)
	return value, n, true
}
