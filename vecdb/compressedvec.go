// ABOUTME: CompressedVec is the page-compressed vector variant: a sequence
// ABOUTME: of compressed fixed-capacity pages plus an in-memory uncompressed tail.
package vecdb

import (
	"sync"

	"github.com/nainya/vecdb/vecdb/codec"
	"github.com/nainya/vecdb/rawdb"
)

// maxUncompressedPageSize bounds the uncompressed tail buffer and, divided
// by size_of(T), gives each page's element capacity.
const maxUncompressedPageSize = 512 * 1024

// CompressedVec stores a logical T sequence as compressed fixed-capacity
// pages in a data region, indexed by a sibling ".pages" region, plus an
// in-memory uncompressed tail of at most PerPage() values.
type CompressedVec[T Numeric] struct {
	region   *rawdb.Region
	db       *rawdb.Database
	index    *pageIndex
	strategy codec.Strategy
	format   Format
	version  uint64
	perPage  int

	mu        sync.Mutex
	tail      []T
	stamp     Stamp
	decodeBuf []uint64
}

// ImportCompressed opens or creates the named compressed vector. format
// must be FormatPco, FormatLZ4, or FormatZstd.
func ImportCompressed[T Numeric](db *rawdb.Database, name string, version uint64, format Format) (*CompressedVec[T], error) {
	return importCompressed[T](db, name, version, format, false)
}

// ForcedImportCompressed is like ImportCompressed but resets the vector's
// region and page index instead of failing on a version/format mismatch.
func ForcedImportCompressed[T Numeric](db *rawdb.Database, name string, version uint64, format Format) (*CompressedVec[T], error) {
	return importCompressed[T](db, name, version, format, true)
}

func importCompressed[T Numeric](db *rawdb.Database, name string, version uint64, format Format, forced bool) (*CompressedVec[T], error) {
	strategy, ok := codec.ForTag(uint8(format))
	if !ok {
		return nil, ErrFormatMismatch
	}

	region, err := db.CreateRegionIfNeeded(name)
	if err != nil {
		return nil, err
	}
	idx, err := openPageIndex(db, name)
	if err != nil {
		return nil, err
	}

	v := &CompressedVec[T]{
		region:   region,
		db:       db,
		index:    idx,
		strategy: strategy,
		format:   format,
		version:  version,
		perPage:  maxUncompressedPageSize / sizeOfT[T](),
	}

	if region.Len() < HeaderSize {
		return v, nil
	}

	reader := region.CreateReader()
	hdr, err := decodeHeader(reader.Read(0, HeaderSize))
	reader.Close()
	if err != nil {
		return nil, err
	}
	if hdr.isUninitialized() {
		return v, nil
	}

	mismatch := hdr.Version != version || hdr.Format != format
	if mismatch && !forced {
		if hdr.Version != version {
			return nil, &DifferentVersionError{Stored: hdr.Version, Requested: version}
		}
		return nil, ErrFormatMismatch
	}
	if mismatch && forced {
		if err := region.Truncate(0); err != nil {
			return nil, err
		}
		idx.truncate(0)
		return v, nil
	}

	v.stamp = Stamp(hdr.Stamp)
	return v, nil
}

// PerPage returns this vector's page capacity in elements.
func (v *CompressedVec[T]) PerPage() int { return v.perPage }

// Len returns the vector's logical length: elements recorded across all
// pages plus the uncompressed tail.
func (v *CompressedVec[T]) Len() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lenLocked()
}

func (v *CompressedVec[T]) lenLocked() uint64 {
	return v.index.totalValues() + uint64(len(v.tail))
}

// Push appends val to the uncompressed tail, compressing and recording a
// new page once the tail reaches page capacity.
func (v *CompressedVec[T]) Push(val T) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tail = append(v.tail, val)
	if len(v.tail) == v.perPage {
		return v.compressTailLocked()
	}
	return nil
}

func (v *CompressedVec[T]) compressTailLocked() error {
	if len(v.tail) == 0 {
		return nil
	}
	lanes := make([]uint64, len(v.tail))
	for i, val := range v.tail {
		lanes[i] = bitsOf(val)
	}
	compressed := v.strategy.Compress(lanes)

	if v.region.Len() == 0 {
		if err := v.region.Append(make([]byte, HeaderSize)); err != nil {
			return err
		}
	}
	startOffset := uint64(v.region.Len() - HeaderSize)
	if err := v.region.Append(compressed); err != nil {
		return err
	}
	v.index.append(page{start: startOffset, bytes: uint32(len(compressed)), values: uint32(len(v.tail))})
	v.tail = v.tail[:0]
	return nil
}

// Read returns the value at i, or ErrIndexOutOfRange past the logical
// length, or a *DecompressionMismatchError if the page holding i fails to
// decode to its recorded element count.
func (v *CompressedVec[T]) Read(i uint64) (T, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var zero T
	total := v.lenLocked()
	if i >= total {
		return zero, ErrIndexOutOfRange
	}
	pagesTotal := v.index.totalValues()
	if i < pagesTotal {
		return v.readFromPagesLocked(i)
	}
	return v.tail[i-pagesTotal], nil
}

func (v *CompressedVec[T]) readFromPagesLocked(i uint64) (T, error) {
	var zero T
	pageIdx := int(i / uint64(v.perPage))
	if pageIdx >= len(v.index.pages) {
		return zero, ErrIndexOutOfRange
	}
	local := int(i % uint64(v.perPage))

	p := v.index.pages[pageIdx]
	reader := v.region.CreateReader()
	data := reader.Read(HeaderSize+int(p.start), int(p.bytes))
	lanes, err := v.strategy.DecompressInto(data, int(p.values), v.decodeBuf)
	reader.Close()
	if err != nil {
		return zero, &DecompressionMismatchError{PageIndex: pageIdx, Expected: int(p.values)}
	}
	v.decodeBuf = lanes

	if local >= len(lanes) {
		return zero, ErrIndexOutOfRange
	}
	return fromBits[T](lanes[local]), nil
}

// readRangeInto implements rangeReader for Cursor, decoding whole pages
// that overlap [from, to) rather than one element at a time.
func (v *CompressedVec[T]) readRangeInto(from, to uint64, buf []T) []T {
	v.mu.Lock()
	defer v.mu.Unlock()

	total := v.lenLocked()
	if to > total {
		to = total
	}
	out := buf[:0]
	if from >= to {
		return out
	}

	pagesTotal := v.index.totalValues()
	i := from
	for i < to && i < pagesTotal {
		pageIdx := int(i / uint64(v.perPage))
		p := v.index.pages[pageIdx]
		pageStart := uint64(pageIdx) * uint64(v.perPage)

		reader := v.region.CreateReader()
		data := reader.Read(HeaderSize+int(p.start), int(p.bytes))
		lanes, err := v.strategy.DecompressInto(data, int(p.values), nil)
		reader.Close()
		if err != nil {
			return out
		}

		localStart := i - pageStart
		localEnd := uint64(len(lanes))
		if pageStart+uint64(len(lanes)) > to {
			localEnd = to - pageStart
		}
		for l := localStart; l < localEnd; l++ {
			out = append(out, fromBits[T](lanes[l]))
		}
		i = pageStart + localEnd
	}
	for i < to {
		out = append(out, v.tail[i-pagesTotal])
		i++
	}
	return out
}

// IterSmallRange returns the logical values in [from, to) as a slice.
func (v *CompressedVec[T]) IterSmallRange(from, to uint64) []T {
	return v.readRangeInto(from, to, nil)
}

// Cursor returns a stateful forward reader starting at index 0.
func (v *CompressedVec[T]) Cursor() *Cursor[T] {
	return NewCursor[T](v)
}

// Truncate shrinks the vector to newLen elements. If newLen falls within
// the uncompressed tail it is a cheap slice operation; if it falls on a
// page boundary, trailing pages are dropped and the data region's bytes
// beyond the new last page are hole-punched. Truncating to a length that
// falls inside a compressed page (not at a boundary) is not supported,
// since that would require decoding and repacking the page.
func (v *CompressedVec[T]) Truncate(newLen uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	total := v.lenLocked()
	if newLen > total {
		return &TruncateInvalidError{From: newLen, CurrentLen: total}
	}

	pagesTotal := v.index.totalValues()
	if newLen >= pagesTotal {
		v.tail = v.tail[:newLen-pagesTotal]
		return nil
	}
	if newLen%uint64(v.perPage) != 0 {
		return ErrTruncateNotOnPageBoundary
	}

	keepPages := int(newLen / uint64(v.perPage))
	dropFromByte := v.index.pages[keepPages].start
	v.index.truncate(keepPages)
	v.tail = v.tail[:0]
	return v.region.Truncate(HeaderSize + int(dropFromByte))
}

// Write persists the page index (incrementally, from the first page added
// since the last write onward) and stamps the header. It does not msync;
// call Flush for durability.
func (v *CompressedVec[T]) Write() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(v.tail) >= v.perPage {
		if err := v.compressTailLocked(); err != nil {
			return err
		}
	}
	if v.region.Len() == 0 {
		if err := v.region.Append(make([]byte, HeaderSize)); err != nil {
			return err
		}
	}
	if err := v.index.flush(); err != nil {
		return err
	}

	buf := make([]byte, 0, HeaderSize)
	buf = encodeHeader(buf, header{Version: v.version, Format: v.format, Stamp: uint64(v.stamp)})
	return v.region.WriteAt(0, buf)
}

// Flush persists the owning database's mmap and region metadata to disk.
func (v *CompressedVec[T]) Flush() error {
	return v.db.Flush()
}

// Stamp returns the vector's current stamp.
func (v *CompressedVec[T]) Stamp() Stamp {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stamp
}

// UpdateStamp sets the vector's current stamp, taking effect on the next
// write().
func (v *CompressedVec[T]) UpdateStamp(s Stamp) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stamp = s
}

// Remove drops this vector's data region and page-index region from the
// database entirely.
func (v *CompressedVec[T]) Remove() error {
	if err := v.db.RemoveRegion(v.region); err != nil {
		return err
	}
	return v.db.RemoveRegion(v.index.region)
}
