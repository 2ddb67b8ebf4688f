package rawdb

import (
	"sync"
	"sync/atomic"
)

// Region is a named, contiguous byte window inside the database's data
// file. Region carries its own read/write lock over its metadata; reads of
// the underlying bytes additionally go through the database's shared mmap
// lock (see Reader).
type Region struct {
	db   *Database
	id   uint64
	meta *regionMeta

	mu    sync.RWMutex
	refs  atomic.Int32
	state *State
}

// ID returns the region's stable identifier.
func (r *Region) ID() uint64 { return r.id }

// Name returns the region's name.
func (r *Region) Name() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.meta.name
}

// Len returns the region's current logical length in bytes.
func (r *Region) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int(r.meta.length)
}

// Capacity returns the region's reserved capacity in bytes.
func (r *Region) Capacity() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int(r.meta.capacity)
}

// RefCount reports how many live handles (clones obtained via the
// database) reference this region.
func (r *Region) RefCount() int { return int(r.refs.Load()) }

// Retain increments the reference count and returns the same region.
func (r *Region) Retain() *Region {
	r.refs.Add(1)
	return r
}

// Release decrements the reference count. Pair with every Retain once the
// caller is done with the region; CreateReader does not change the count.
func (r *Region) Release() {
	r.refs.Add(-1)
}

// CreateReader returns a zero-copy Reader over this region's bytes. The
// Reader holds read locks on the database mmap and this region's metadata
// until Close is called.
func (r *Region) CreateReader() *Reader {
	return newReader(r.db, r)
}

// DB returns the owning database.
func (r *Region) DB() *Database { return r.db }
