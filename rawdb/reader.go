package rawdb

import "sync"

// Reader is a zero-copy view over one region's bytes inside the database's
// shared mmap. It holds a read lock on the mmap and a read lock on the
// region's metadata for its entire lifetime, so both fields must be
// released (via Close) before the region can be relocated or removed.
//
// The guards must be released before the Database/Region they borrow from
// can be torn down. Go's garbage collector keeps db/region alive as long as
// this struct references them, so no explicit lifetime-extension trick is
// required; Close simply releases the two RWMutex read locks in order.
type Reader struct {
	db     *Database
	region *Region

	closed bool
	mu     sync.Once
}

func newReader(db *Database, region *Region) *Reader {
	db.mu.RLock()
	region.mu.RLock()
	return &Reader{db: db, region: region}
}

// Close releases the locks held by the reader. Safe to call more than once.
func (r *Reader) Close() {
	r.mu.Do(func() {
		r.region.mu.RUnlock()
		r.db.mu.RUnlock()
		r.closed = true
	})
}

func (r *Reader) window() mmapRegion {
	m := r.region.meta
	return r.db.mmap[m.start : m.start+m.length]
}

// Len returns the number of live bytes in the region.
func (r *Reader) Len() int { return int(r.region.meta.length) }

// IsEmpty reports whether the region currently holds no bytes.
func (r *Reader) IsEmpty() bool { return r.Len() == 0 }

// UncheckedRead returns a slice into the mmap window [offset, offset+length)
// without bounds checking; the caller must have already validated the
// range. Used by hot read paths (raw vec pointer walks) that have already
// clamped against stored length.
func (r *Reader) UncheckedRead(offset, length int) []byte {
	return r.window()[offset : offset+length]
}

// Read returns a slice into the mmap window [offset, offset+length),
// panicking if the range exceeds the region's length.
func (r *Reader) Read(offset, length int) []byte {
	if offset+length > r.Len() {
		panic("rawdb: Reader.Read out of range")
	}
	return r.UncheckedRead(offset, length)
}

// ReadAll is shorthand for Read(0, r.Len()).
func (r *Reader) ReadAll() []byte {
	return r.Read(0, r.Len())
}

// Prefixed returns a slice starting at offset that extends to the end of
// the entire mmap (not just this region), permitting sequential scans that
// cross a region's tail without re-entering the reader machinery. offset
// must still be within the region's length.
func (r *Reader) Prefixed(offset int) []byte {
	if offset > r.Len() {
		panic("rawdb: Reader.Prefixed offset exceeds region length")
	}
	start := int(r.region.meta.start) + offset
	return r.db.mmap[start:]
}
