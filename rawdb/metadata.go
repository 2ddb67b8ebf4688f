package rawdb

import (
	"encoding/binary"
	"fmt"
)

// regionMeta is the packed on-disk descriptor for one region: its stable id,
// byte range inside the data file, and name. len <= capacity always; the
// surplus between them is reserved space a region can grow into without
// relocating.
type regionMeta struct {
	id       uint64
	start    uint64
	capacity uint64
	length   uint64
	name     string

	state *State
}

// metaFixedSize is the size of the fixed-width portion of a packed record:
// id, start, capacity, len (4 x u64) + name_len (u16).
const metaFixedSize = 8*4 + 2

func (m *regionMeta) encodedSize() int {
	return metaFixedSize + len(m.name)
}

func (m *regionMeta) encode(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint64(dst, m.id)
	dst = binary.LittleEndian.AppendUint64(dst, m.start)
	dst = binary.LittleEndian.AppendUint64(dst, m.capacity)
	dst = binary.LittleEndian.AppendUint64(dst, m.length)
	dst = binary.LittleEndian.AppendUint16(dst, uint16(len(m.name)))
	dst = append(dst, m.name...)
	return dst
}

func decodeRegionMeta(src []byte) (*regionMeta, int, error) {
	if len(src) < metaFixedSize {
		return nil, 0, fmt.Errorf("%w: short record header", ErrCorruptedMetadata)
	}
	m := &regionMeta{
		id:       binary.LittleEndian.Uint64(src[0:8]),
		start:    binary.LittleEndian.Uint64(src[8:16]),
		capacity: binary.LittleEndian.Uint64(src[16:24]),
		length:   binary.LittleEndian.Uint64(src[24:32]),
	}
	nameLen := int(binary.LittleEndian.Uint16(src[32:34]))
	end := metaFixedSize + nameLen
	if len(src) < end {
		return nil, 0, fmt.Errorf("%w: truncated name", ErrCorruptedMetadata)
	}
	m.name = string(src[metaFixedSize:end])
	m.state = NewCleanState()
	return m, end, nil
}

// encodeDirectory serializes the full region directory: a u64 LE count
// followed by each record in turn.
func encodeDirectory(metas []*regionMeta) []byte {
	size := 8
	for _, m := range metas {
		size += m.encodedSize()
	}
	buf := make([]byte, 0, size)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(metas)))
	for _, m := range metas {
		buf = m.encode(buf)
	}
	return buf
}

// decodeDirectory parses the region directory produced by encodeDirectory.
// An empty input is a valid, empty directory (fresh database).
func decodeDirectory(data []byte) ([]*regionMeta, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) < 8 {
		return nil, fmt.Errorf("%w: short directory header", ErrCorruptedMetadata)
	}
	count := binary.LittleEndian.Uint64(data[0:8])
	rest := data[8:]
	metas := make([]*regionMeta, 0, count)
	for range count {
		m, n, err := decodeRegionMeta(rest)
		if err != nil {
			return nil, err
		}
		metas = append(metas, m)
		rest = rest[n:]
	}
	return metas, nil
}
