// ABOUTME: RawVec is the fixed-size-record vector variant: a contiguous
// ABOUTME: array of encoded values behind a push buffer, update overlay, and hole set.
package vecdb

import (
	"sync"

	"github.com/nainya/vecdb/rawdb"
)

// RawVec is a typed, append-oriented vector whose values are stored as a
// contiguous array of size_of(T) byte records, in either FormatNative or
// FormatBytes representation. It binds to one rawdb.Region.
type RawVec[T Numeric] struct {
	region  *rawdb.Region
	db      *rawdb.Database
	format  Format
	version uint64

	mu sync.Mutex

	storedLen        uint64
	pendingStoredLen *uint64

	pushBuffer []T
	updates    map[uint64]T
	holes      map[uint64]struct{}

	stamp  Stamp
	ledger *stampLedger
}

const defaultRetainedStamps = 8

// ImportRaw opens or creates the named raw vector, failing with
// DifferentVersionError or ErrFormatMismatch if a virgin-free region's
// stored header disagrees with version/format.
func ImportRaw[T Numeric](db *rawdb.Database, name string, version uint64, format Format) (*RawVec[T], error) {
	return importRaw[T](db, name, version, format, false)
}

// ForcedImportRaw is like ImportRaw but resets the region's bytes and state
// instead of failing on a version/format mismatch.
func ForcedImportRaw[T Numeric](db *rawdb.Database, name string, version uint64, format Format) (*RawVec[T], error) {
	return importRaw[T](db, name, version, format, true)
}

func importRaw[T Numeric](db *rawdb.Database, name string, version uint64, format Format, forced bool) (*RawVec[T], error) {
	region, err := db.CreateRegionIfNeeded(name)
	if err != nil {
		return nil, err
	}

	v := &RawVec[T]{
		region:  region,
		db:      db,
		format:  format,
		version: version,
		updates: make(map[uint64]T),
		holes:   make(map[uint64]struct{}),
		ledger:  newStampLedger(defaultRetainedStamps),
	}

	if region.Len() < HeaderSize {
		return v, nil
	}

	reader := region.CreateReader()
	hdr, err := decodeHeader(reader.Read(0, HeaderSize))
	bodyLen := reader.Len() - HeaderSize
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
		return v, nil
	}

	v.stamp = Stamp(hdr.Stamp)
	v.storedLen = uint64(bodyLen) / uint64(sizeOfT[T]())
	return v, nil
}

// Len returns the vector's logical length: stored elements plus pending
// pushes, minus any holes trimmed off the tail.
func (v *RawVec[T]) Len() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lenLocked()
}

func (v *RawVec[T]) lenLocked() uint64 {
	total := v.effectiveStoredLenLocked() + uint64(len(v.pushBuffer))
	for total > 0 {
		if _, isHole := v.holes[total-1]; isHole {
			total--
			continue
		}
		break
	}
	return total
}

func (v *RawVec[T]) effectiveStoredLenLocked() uint64 {
	if v.pendingStoredLen != nil {
		return *v.pendingStoredLen
	}
	return v.storedLen
}

// Push appends v to the tail-append buffer.
func (v *RawVec[T]) Push(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pushBuffer = append(v.pushBuffer, val)
}

// Update records index i as holding val. If i falls within the push
// buffer it is mutated directly; otherwise it is recorded in the update
// overlay for the next write().
func (v *RawVec[T]) Update(i uint64, val T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	storedLen := v.effectiveStoredLenLocked()
	if i >= storedLen {
		idx := i - storedLen
		if idx < uint64(len(v.pushBuffer)) {
			v.pushBuffer[idx] = val
			delete(v.holes, i)
			return
		}
	}
	v.updates[i] = val
	delete(v.holes, i)
}

// RemoveAt marks index i as a hole: subsequent reads of i return false
// until it is next updated.
func (v *RawVec[T]) RemoveAt(i uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.holes[i] = struct{}{}
	delete(v.updates, i)
}

// Read returns the value at i and whether it is present. A hole, or an
// index at or past the logical length, yields (zero, false).
func (v *RawVec[T]) Read(i uint64) (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.readLocked(i)
}

func (v *RawVec[T]) readLocked(i uint64) (T, bool) {
	var zero T
	if _, isHole := v.holes[i]; isHole {
		return zero, false
	}
	if val, ok := v.updates[i]; ok {
		return val, true
	}

	storedLen := v.effectiveStoredLenLocked()
	if i < storedLen {
		return v.readStoredLocked(i), true
	}
	idx := i - storedLen
	if idx < uint64(len(v.pushBuffer)) {
		return v.pushBuffer[idx], true
	}
	return zero, false
}

func (v *RawVec[T]) readStoredLocked(i uint64) T {
	elemSize := sizeOfT[T]()
	reader := v.region.CreateReader()
	defer reader.Close()
	b := reader.Read(HeaderSize+int(i)*elemSize, elemSize)
	if v.format == FormatNative {
		return decodeNative[T](b)
	}
	return decodeLE[T](b)
}

// TruncatePush truncates the vector to length i (a no-op if i already
// equals the current length) and then pushes val, so the vector's new
// length is i+1. Fails with TruncateInvalidError if i exceeds the current
// length.
func (v *RawVec[T]) TruncatePush(i uint64, val T) error {
	v.mu.Lock()
	curLen := v.lenLocked()
	if i > curLen {
		v.mu.Unlock()
		return &TruncateInvalidError{From: i, CurrentLen: curLen}
	}
	if i < curLen {
		if err := v.truncateLocked(i); err != nil {
			v.mu.Unlock()
			return err
		}
	}
	v.mu.Unlock()
	v.Push(val)
	return nil
}

// Truncate shrinks the vector's logical length to newLen, dropping the
// push-buffer tail and any overlay entries at or past newLen; if newLen
// falls inside the already-stored range, the physical shrink happens on
// the next write().
func (v *RawVec[T]) Truncate(newLen uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.truncateLocked(newLen)
}

func (v *RawVec[T]) truncateLocked(newLen uint64) error {
	curLen := v.lenLocked()
	if newLen > curLen {
		return &TruncateInvalidError{From: newLen, CurrentLen: curLen}
	}

	storedLen := v.effectiveStoredLenLocked()
	if newLen >= storedLen {
		v.pushBuffer = v.pushBuffer[:newLen-storedLen]
	} else {
		v.pushBuffer = v.pushBuffer[:0]
		nl := newLen
		v.pendingStoredLen = &nl
	}
	for idx := range v.updates {
		if idx >= newLen {
			delete(v.updates, idx)
		}
	}
	for idx := range v.holes {
		if idx >= newLen {
			delete(v.holes, idx)
		}
	}
	return nil
}

func (v *RawVec[T]) encodeInto(dst []byte, val T) {
	if v.format == FormatNative {
		encodeNative(dst, val)
	} else {
		encodeLE(dst, val)
	}
}

// Write serializes pending state through the region: shrinks stored
// length if truncated, applies the update overlay and hole zeroing into
// already-stored bytes, appends the push buffer, and stamps the header.
// It does not msync; call Flush (or the database's Flush) for durability.
func (v *RawVec[T]) Write() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	elemSize := sizeOfT[T]()

	if v.pendingStoredLen != nil {
		newByteLen := HeaderSize + int(*v.pendingStoredLen)*elemSize
		if v.region.Len() > newByteLen {
			if err := v.region.Truncate(newByteLen); err != nil {
				return err
			}
		}
		v.storedLen = *v.pendingStoredLen
		v.pendingStoredLen = nil
	}

	if v.region.Len() == 0 {
		if err := v.region.Append(make([]byte, HeaderSize)); err != nil {
			return err
		}
	}

	for idx, val := range v.updates {
		if idx >= v.storedLen {
			continue
		}
		buf := make([]byte, elemSize)
		v.encodeInto(buf, val)
		if err := v.region.WriteAt(HeaderSize+int(idx)*elemSize, buf); err != nil {
			return err
		}
	}
	v.updates = make(map[uint64]T)

	zero := make([]byte, elemSize)
	for idx := range v.holes {
		if idx >= v.storedLen {
			continue
		}
		if err := v.region.WriteAt(HeaderSize+int(idx)*elemSize, zero); err != nil {
			return err
		}
	}

	if len(v.pushBuffer) > 0 {
		out := make([]byte, len(v.pushBuffer)*elemSize)
		for i, val := range v.pushBuffer {
			idx := v.storedLen + uint64(i)
			if _, isHole := v.holes[idx]; isHole {
				continue
			}
			v.encodeInto(out[i*elemSize:(i+1)*elemSize], val)
		}
		if err := v.region.Append(out); err != nil {
			return err
		}
		v.storedLen += uint64(len(v.pushBuffer))
		v.pushBuffer = nil
	}

	if err := v.writeHeaderLocked(); err != nil {
		return err
	}

	body := make([]byte, v.storedLen*uint64(elemSize))
	reader := v.region.CreateReader()
	copy(body, reader.Read(HeaderSize, len(body)))
	reader.Close()

	holesCopy := make(map[uint64]struct{}, len(v.holes))
	for idx := range v.holes {
		if idx < v.storedLen {
			holesCopy[idx] = struct{}{}
		}
	}
	v.ledger.record(snapshot{stamp: v.stamp, storedLen: v.storedLen, body: body, holes: holesCopy})
	return nil
}

func (v *RawVec[T]) writeHeaderLocked() error {
	buf := make([]byte, 0, HeaderSize)
	buf = encodeHeader(buf, header{Version: v.version, Format: v.format, Stamp: uint64(v.stamp)})
	return v.region.WriteAt(0, buf)
}

// Flush persists the owning database's mmap and region metadata to disk.
func (v *RawVec[T]) Flush() error {
	return v.db.Flush()
}

// Stamp returns the vector's current stamp.
func (v *RawVec[T]) Stamp() Stamp {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stamp
}

// UpdateStamp sets the vector's current stamp, taking effect on the next
// write().
func (v *RawVec[T]) UpdateStamp(s Stamp) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stamp = s
}

// RollbackTo restores the vector to the state captured by the write() that
// published stamp target, discarding any pending pushes/updates/holes.
// Fails with ErrRolledBackTooFar if target is no longer retained.
func (v *RawVec[T]) RollbackTo(target Stamp) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap, ok := v.ledger.find(target)
	if !ok {
		return ErrRolledBackTooFar
	}

	newByteLen := HeaderSize + len(snap.body)
	if v.region.Len() > newByteLen {
		if err := v.region.Truncate(newByteLen); err != nil {
			return err
		}
	} else if v.region.Len() < newByteLen {
		if err := v.region.Append(make([]byte, newByteLen-v.region.Len())); err != nil {
			return err
		}
	}
	if len(snap.body) > 0 {
		if err := v.region.WriteAt(HeaderSize, snap.body); err != nil {
			return err
		}
	}

	v.storedLen = snap.storedLen
	v.pendingStoredLen = nil
	v.pushBuffer = nil
	v.updates = make(map[uint64]T)
	v.holes = make(map[uint64]struct{}, len(snap.holes))
	for idx := range snap.holes {
		v.holes[idx] = struct{}{}
	}
	v.stamp = target

	return v.writeHeaderLocked()
}

// Iter returns an iterator over the vector's logical sequence. It picks
// the clean fast path (a direct pointer walk over the mmap window) when no
// push buffer, update overlay, or hole exists; otherwise it falls back to
// a materialized dirty path that merges them.
func (v *RawVec[T]) Iter() *RawIterator[T] {
	v.mu.Lock()
	defer v.mu.Unlock()

	total := int(v.lenLocked())
	if len(v.pushBuffer) == 0 && len(v.updates) == 0 && len(v.holes) == 0 {
		return &RawIterator[T]{
			clean:    true,
			reader:   v.region.CreateReader(),
			elemSize: sizeOfT[T](),
			format:   v.format,
			total:    total,
		}
	}

	vals := make([]T, total)
	for i := range total {
		val, _ := v.readLocked(uint64(i))
		vals[i] = val
	}
	return &RawIterator[T]{dirty: vals}
}

// Cursor returns a stateful forward reader starting at index 0.
func (v *RawVec[T]) Cursor() *Cursor[T] {
	return NewCursor[T](v)
}

// IterSmallRange returns the logical values in [from, to) as a slice,
// optimized for short ranges by reading directly rather than constructing
// a full iterator.
func (v *RawVec[T]) IterSmallRange(from, to uint64) []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.readRangeIntoLocked(from, to, nil)
}

// readRangeInto implements rangeReader for Cursor: it fills (and may
// reuse the capacity of) buf with the logical values in [from, to).
func (v *RawVec[T]) readRangeInto(from, to uint64, buf []T) []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.readRangeIntoLocked(from, to, buf)
}

func (v *RawVec[T]) readRangeIntoLocked(from, to uint64, buf []T) []T {
	if to > v.lenLocked() {
		to = v.lenLocked()
	}
	if from >= to {
		return buf[:0]
	}
	out := buf[:0]
	for i := from; i < to; i++ {
		val, _ := v.readLocked(i)
		out = append(out, val)
	}
	return out
}

// Remove drops this vector's backing region from the database entirely.
// Fails with rawdb.ErrRegionStillReferenced if another handle still
// references the region.
func (v *RawVec[T]) Remove() error {
	return v.db.RemoveRegion(v.region)
}
