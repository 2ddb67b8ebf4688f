package vecdb

import (
	"encoding/binary"

	"github.com/nainya/vecdb/rawdb"
)

// page describes one compressed chunk of a compressed vector's data
// region: its byte offset within that region, its compressed size, and
// how many logical elements it decodes to.
type page struct {
	start  uint64
	bytes  uint32
	values uint32
}

const pageRecordSize = 8 + 4 + 4

func encodePage(dst []byte, p page) []byte {
	dst = binary.LittleEndian.AppendUint64(dst, p.start)
	dst = binary.LittleEndian.AppendUint32(dst, p.bytes)
	dst = binary.LittleEndian.AppendUint32(dst, p.values)
	return dst
}

func decodePage(src []byte) page {
	return page{
		start:  binary.LittleEndian.Uint64(src[0:8]),
		bytes:  binary.LittleEndian.Uint32(src[8:12]),
		values: binary.LittleEndian.Uint32(src[12:16]),
	}
}

// pageIndexSuffix names the auxiliary region holding a compressed vector's
// page descriptors, relative to its own region name.
const pageIndexSuffix = ".pages"

// pageIndex is the in-memory mirror of a compressed vector's ".pages"
// region: an ordered list of page descriptors, flushed incrementally
// (only the entries appended since the last flush are written).
type pageIndex struct {
	region       *rawdb.Region
	pages        []page
	flushedCount int
}

func openPageIndex(db *rawdb.Database, vecName string) (*pageIndex, error) {
	region, err := db.CreateRegionIfNeeded(vecName + pageIndexSuffix)
	if err != nil {
		return nil, err
	}
	pi := &pageIndex{region: region}
	if region.Len() == 0 {
		return pi, nil
	}
	reader := region.CreateReader()
	raw := reader.ReadAll()
	count := len(raw) / pageRecordSize
	pi.pages = make([]page, count)
	for i := range count {
		pi.pages[i] = decodePage(raw[i*pageRecordSize : (i+1)*pageRecordSize])
	}
	reader.Close()
	pi.flushedCount = count
	return pi, nil
}

// totalValues returns the sum of values across every recorded page.
func (pi *pageIndex) totalValues() uint64 {
	var total uint64
	for _, p := range pi.pages {
		total += uint64(p.values)
	}
	return total
}

// append records a newly compressed page, to be persisted on the next
// flush.
func (pi *pageIndex) append(p page) {
	pi.pages = append(pi.pages, p)
}

// truncate drops pages at or past index keep.
func (pi *pageIndex) truncate(keep int) {
	pi.pages = pi.pages[:keep]
	if pi.flushedCount > keep {
		pi.flushedCount = keep
	}
}

// flush appends the page records added since the last flush to the index
// region; after a truncate, records on disk past flushedCount are stale, so
// the index region is first physically truncated to flushedCount records.
func (pi *pageIndex) flush() error {
	flushedLen := pi.flushedCount * pageRecordSize
	if pi.region.Len() > flushedLen {
		if err := pi.region.Truncate(flushedLen); err != nil {
			return err
		}
	}
	if len(pi.pages) <= pi.flushedCount {
		return nil
	}
	buf := make([]byte, 0, (len(pi.pages)-pi.flushedCount)*pageRecordSize)
	for _, p := range pi.pages[pi.flushedCount:] {
		buf = encodePage(buf, p)
	}
	if err := pi.region.Append(buf); err != nil {
		return err
	}
	pi.flushedCount = len(pi.pages)
	return nil
}
