package rawdb

// Append grows the region if needed (doubling its reserved capacity) and
// writes data past the current logical length, extending it.
func (r *Region) Append(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.meta
	needed := m.length + uint64(len(data))
	if needed > m.capacity {
		if err := r.db.growRegionLocked(r, growthTarget(m.capacity, needed)); err != nil {
			return err
		}
	}

	r.db.mu.RLock()
	r.db.mmap.writeAt(int(m.start+m.length), data)
	r.db.mu.RUnlock()

	m.length += uint64(len(data))
	m.state.SetNeedsFlush()
	return nil
}

// WriteAt overwrites length(data) bytes starting at offset, which must lie
// within the region's current logical length.
func (r *Region) WriteAt(offset int, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.meta
	end := uint64(offset) + uint64(len(data))
	if end > m.length {
		return &WriteOutOfBoundsError{Position: offset + len(data), RegionLen: int(m.length)}
	}

	r.db.mu.RLock()
	r.db.mmap.writeAt(int(m.start)+offset, data)
	r.db.mu.RUnlock()

	m.state.SetNeedsFlush()
	return nil
}

// EnsureCapacity grows the region's reserved capacity to at least capacity
// without changing its logical length, for callers (compressed vectors)
// that manage their own byte layout within a region.
func (r *Region) EnsureCapacity(capacity uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if capacity <= r.meta.capacity {
		return nil
	}
	return r.db.growRegionLocked(r, capacity)
}

// SetLength directly sets the region's logical length without writing
// bytes; only the bookkeeping changes. The new length is not checked
// against the region's capacity.
func (r *Region) SetLength(length uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meta.length = length
	r.meta.state.SetNeedsWrite()
}

// Truncate shrinks the region to newLength bytes. The released tail
// (including reserved-but-unused capacity) becomes a free hole and is
// hole-punched on the filesystem; fails with TruncateInvalidError if
// newLength exceeds the current length.
func (r *Region) Truncate(newLength int) error {
	r.mu.Lock()
	m := r.meta
	if uint64(newLength) > m.length {
		r.mu.Unlock()
		return &TruncateInvalidError{From: newLength, CurrentLen: int(m.length)}
	}

	freedStart := m.start + uint64(newLength)
	freedLen := m.capacity - uint64(newLength)
	m.length = uint64(newLength)
	if freedLen > 0 {
		m.capacity = uint64(newLength)
	}
	m.state.SetNeedsWrite()
	r.mu.Unlock()

	if freedLen == 0 {
		return nil
	}

	r.db.regionsMu.Lock()
	r.db.free.insert(freedStart, freedLen)
	r.db.regionsMu.Unlock()

	if err := punchRegionHole(r.db, freedStart, freedLen); err != nil {
		r.db.cfg.logWarn("hole_punch_failed", map[string]any{"region": m.name, "err": err.Error()})
	}
	return nil
}

func punchRegionHole(db *Database, start, length uint64) error {
	return punchHoleIfSupported(db, start, length)
}
