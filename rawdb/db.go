// ABOUTME: Database owns the data/meta/lock files, the shared mmap, the region
// ABOUTME: directory, and the free-hole list; it is the single writer coordination point.
package rawdb

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/nainya/vecdb/internal/diskutil"
)

const (
	dataFileName = "data"
	metaFileName = "meta"
	lockFileName = "lock"

	minRegionGrowth uint64 = 64
)

// Database is the root of a region store: a directory holding one data file,
// one metadata file, and a lock file. A Database is safe for concurrent use
// by many goroutines within one process; ErrLocked guards against a second
// process opening the same directory.
type Database struct {
	dir string
	cfg Config

	dataFile *os.File
	metaFile *os.File
	lockFile *os.File
	fLock    *fileLock

	// mu guards the mmap itself: many readers (Reader handles, clean
	// iterators, point writes into already-sized regions) may hold it for
	// read simultaneously; only a grow/remap takes it for write.
	mu      sync.RWMutex
	mmap    mmapRegion
	fileLen uint64

	// regionsMu guards the region directory and free-hole list, which are
	// consulted together on every create/remove/grow.
	regionsMu sync.Mutex
	byName    map[string]*Region
	byID      map[uint64]*Region
	free      freeList
	nextID    uint64
}

// Open opens or creates a database rooted at dir, acquiring the process-wide
// advisory exclusive lock. Returns ErrLocked if another process already
// holds it.
func Open(dir string, cfg Config) (*Database, error) {
	cfg.setDefaults()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("rawdb: create database directory: %w", err)
	}

	dataFile, err := openFileSynced(filepath.Join(dir, dataFileName))
	if err != nil {
		return nil, err
	}
	metaFile, err := os.OpenFile(filepath.Join(dir, metaFileName), os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		dataFile.Close()
		return nil, fmt.Errorf("rawdb: open meta file: %w", err)
	}
	lockFile, err := os.OpenFile(filepath.Join(dir, lockFileName), os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		dataFile.Close()
		metaFile.Close()
		return nil, fmt.Errorf("rawdb: open lock file: %w", err)
	}
	fLock, err := tryLockExclusive(lockFile)
	if err != nil {
		dataFile.Close()
		metaFile.Close()
		lockFile.Close()
		return nil, err
	}

	stat, err := dataFile.Stat()
	if err != nil {
		return nil, fmt.Errorf("rawdb: stat data file: %w", err)
	}
	fileLen := uint64(stat.Size())
	if fileLen == 0 && cfg.InitialFileSize > 0 {
		if err := dataFile.Truncate(cfg.InitialFileSize); err != nil {
			fLock.unlock()
			return nil, fmt.Errorf("rawdb: reserve initial data file size: %w", err)
		}
		fileLen = uint64(cfg.InitialFileSize)
	}

	mapped, err := mapFile(dataFile, int(fileLen))
	if err != nil {
		fLock.unlock()
		return nil, fmt.Errorf("rawdb: mmap data file: %w", err)
	}

	metaBytes, err := io.ReadAll(metaFile)
	if err != nil {
		mapped.unmap()
		fLock.unlock()
		return nil, fmt.Errorf("rawdb: read meta file: %w", err)
	}
	metas, err := decodeDirectory(metaBytes)
	if err != nil {
		mapped.unmap()
		fLock.unlock()
		return nil, err
	}

	db := &Database{
		dir:      dir,
		cfg:      cfg,
		dataFile: dataFile,
		metaFile: metaFile,
		lockFile: lockFile,
		fLock:    fLock,
		mmap:     mapped,
		fileLen:  fileLen,
		byName:   make(map[string]*Region, len(metas)),
		byID:     make(map[uint64]*Region, len(metas)),
	}

	for _, m := range metas {
		r := newRegion(db, m)
		db.byName[m.name] = r
		db.byID[m.id] = r
		if m.id >= db.nextID {
			db.nextID = m.id + 1
		}
	}
	db.rebuildFreeList(metas)

	cfg.logDebug("database_opened", map[string]any{"dir": dir, "regions": len(metas), "file_len": fileLen})
	return db, nil
}

func newRegion(db *Database, m *regionMeta) *Region {
	r := &Region{db: db, id: m.id, meta: m, state: m.state}
	r.refs.Store(1)
	return r
}

// rebuildFreeList reconstructs the free-hole list from the gaps between
// region byte ranges, since the free list itself is never persisted — only
// region start/capacity are, and holes are exactly what they don't cover.
func (db *Database) rebuildFreeList(metas []*regionMeta) {
	sorted := make([]*regionMeta, len(metas))
	copy(sorted, metas)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start < sorted[j].start })

	var cursor uint64
	for _, m := range sorted {
		if m.start > cursor {
			db.free.insert(cursor, m.start-cursor)
		}
		end := m.start + m.capacity
		if end > cursor {
			cursor = end
		}
	}
	if db.fileLen > cursor {
		db.free.insert(cursor, db.fileLen-cursor)
	}
}

// CreateRegionIfNeeded returns the existing region named name, or creates a
// new zero-length, zero-capacity region for it, placed in the first
// sufficiently large free hole (trivially any hole, since capacity is zero)
// or else appended at the file tail.
func (db *Database) CreateRegionIfNeeded(name string) (*Region, error) {
	if len(name) > db.cfg.MaxRegionNameLen {
		return nil, ErrNameTooLong
	}

	db.regionsMu.Lock()
	defer db.regionsMu.Unlock()

	if r, ok := db.byName[name]; ok {
		return r, nil
	}

	start, ok := db.free.firstFit(0)
	if !ok {
		start = db.fileLen
	}

	id := db.nextID
	db.nextID++

	m := &regionMeta{id: id, start: start, capacity: 0, length: 0, name: name, state: NewDirtyState()}
	r := newRegion(db, m)
	db.byName[name] = r
	db.byID[id] = r

	db.cfg.logDebug("region_created", map[string]any{"name": name, "id": id, "start": start})
	return r, nil
}

// GetRegion looks up a region by name.
func (db *Database) GetRegion(name string) (*Region, error) {
	db.regionsMu.Lock()
	defer db.regionsMu.Unlock()
	r, ok := db.byName[name]
	if !ok {
		return nil, ErrRegionNotFound
	}
	return r, nil
}

// GetRegionByID looks up a region by its stable id.
func (db *Database) GetRegionByID(id uint64) (*Region, error) {
	db.regionsMu.Lock()
	defer db.regionsMu.Unlock()
	r, ok := db.byID[id]
	if !ok {
		return nil, ErrRegionNotFound
	}
	return r, nil
}

// RemoveRegion deletes region from the directory, returning its bytes to the
// free list and hole-punching them. Fails with ErrRegionStillReferenced
// unless region's reference count is exactly one (only the directory's own
// reference remains).
func (db *Database) RemoveRegion(region *Region) error {
	db.regionsMu.Lock()
	defer db.regionsMu.Unlock()

	if region.RefCount() != 1 {
		return ErrRegionStillReferenced
	}

	region.mu.Lock()
	m := region.meta
	delete(db.byName, m.name)
	delete(db.byID, m.id)
	if m.capacity > 0 {
		db.free.insert(m.start, m.capacity)
	}
	region.mu.Unlock()

	if m.capacity > 0 {
		if err := punchHoleIfSupported(db, m.start, m.capacity); err != nil {
			db.cfg.logWarn("hole_punch_failed", map[string]any{"region": m.name, "err": err.Error()})
		}
	}

	db.cfg.logDebug("region_removed", map[string]any{"name": m.name, "id": m.id})
	return nil
}

// Flush persists the mmap to disk, then rewrites the region directory for
// any region whose metadata is not clean.
func (db *Database) Flush() error {
	start := time.Now()

	db.mu.RLock()
	err := db.mmap.sync()
	db.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("rawdb: sync mmap: %w", err)
	}

	db.regionsMu.Lock()
	defer db.regionsMu.Unlock()

	dirty := false
	metas := make([]*regionMeta, 0, len(db.byID))
	for _, r := range db.byID {
		r.mu.RLock()
		metas = append(metas, r.meta)
		if !r.meta.state.IsClean() {
			dirty = true
		}
		r.mu.RUnlock()
	}
	db.cfg.updateDbStats(int64(db.fileLen), len(db.byID), int64(db.free.totalFree()), len(db.free.holes))
	if !dirty {
		return nil
	}

	sort.Slice(metas, func(i, j int) bool { return metas[i].id < metas[j].id })
	buf := encodeDirectory(metas)
	if _, err := db.metaFile.WriteAt(buf, 0); err != nil {
		return fmt.Errorf("rawdb: write region directory: %w", err)
	}
	if err := db.metaFile.Truncate(int64(len(buf))); err != nil {
		return fmt.Errorf("rawdb: truncate region directory: %w", err)
	}
	if db.cfg.SyncWrites {
		if err := db.metaFile.Sync(); err != nil {
			return fmt.Errorf("rawdb: fsync region directory: %w", err)
		}
	}
	for _, m := range metas {
		m.state.SetClean()
	}
	db.cfg.recordFlush(time.Since(start))
	return nil
}

// Close releases the advisory lock and unmaps the data file. It does not
// flush; callers that need durability must call Flush first.
func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	var firstErr error
	if err := db.mmap.unmap(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := db.fLock.unlock(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := db.dataFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := db.metaFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := db.lockFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// DiskUsage reports the data file's actual on-disk block usage, which can be
// smaller than its logical length once truncated regions are hole-punched.
func (db *Database) DiskUsage() (diskutil.Usage, error) {
	return diskutil.FromFile(db.dataFile)
}

// growRegionLocked grows region to newCapacity. The caller must already
// hold region.mu for writing. Implements the growth algorithm: extend in
// place when the immediately-following bytes are free and sufficient,
// otherwise relocate to a first-fit hole or the file tail.
func (db *Database) growRegionLocked(region *Region, newCapacity uint64) error {
	m := region.meta
	if newCapacity <= m.capacity {
		return nil
	}
	extra := newCapacity - m.capacity
	followingStart := m.start + m.capacity

	db.mu.Lock()
	defer db.mu.Unlock()
	db.regionsMu.Lock()
	defer db.regionsMu.Unlock()

	if followingStart == db.fileLen {
		if err := db.growFileLocked(followingStart + extra); err != nil {
			return err
		}
		m.capacity = newCapacity
		m.state.SetNeedsWrite()
		db.cfg.recordGrowth("extend_tail", false)
		return nil
	}

	if db.free.holeLengthAt(followingStart) >= extra {
		db.free.consumeAt(followingStart, extra)
		m.capacity = newCapacity
		m.state.SetNeedsWrite()
		db.cfg.recordGrowth("extend_hole", false)
		return nil
	}

	newStart, ok := db.free.firstFit(newCapacity)
	if !ok {
		newStart = db.fileLen
		if err := db.growFileLocked(newStart + newCapacity); err != nil {
			return err
		}
	}
	if rangesOverlap(m.start, m.capacity, newStart, newCapacity) {
		return ErrOverlappingCopyRanges
	}
	if m.length > 0 {
		copy(db.mmap[newStart:newStart+m.length], db.mmap[m.start:m.start+m.length])
	}
	db.free.insert(m.start, m.capacity)
	m.start = newStart
	m.capacity = newCapacity
	m.state.SetNeedsWrite()

	db.cfg.logDebug("region_relocated", map[string]any{"name": m.name, "id": m.id, "new_start": newStart, "capacity": newCapacity})
	db.cfg.recordGrowth("relocate", true)
	return nil
}

// growFileLocked extends the data file and remaps it. Callers must already
// hold db.mu for writing.
func (db *Database) growFileLocked(newLen uint64) error {
	if newLen <= db.fileLen {
		return nil
	}
	if err := db.dataFile.Truncate(int64(newLen)); err != nil {
		return fmt.Errorf("rawdb: grow data file: %w", err)
	}
	if err := db.mmap.unmap(); err != nil {
		return fmt.Errorf("rawdb: unmap before remap: %w", err)
	}
	newMap, err := mapFile(db.dataFile, int(newLen))
	if err != nil {
		return fmt.Errorf("rawdb: remap data file: %w", err)
	}
	db.mmap = newMap
	db.fileLen = newLen
	return nil
}

// punchHoleIfSupported punches a hole in the data file, treating
// ErrHolePunchUnsupported as success (the caller forfeits disk-space
// reclamation, never correctness) and any other error as worth reporting.
func punchHoleIfSupported(db *Database, start, length uint64) error {
	err := diskutil.PunchHole(int(db.dataFile.Fd()), int64(start), int64(length))
	switch {
	case err == nil:
		db.cfg.recordHolePunch("ok")
		return nil
	case errors.Is(err, diskutil.ErrHolePunchUnsupported):
		db.cfg.recordHolePunch("unsupported")
		return nil
	default:
		db.cfg.recordHolePunch("failed")
		return err
	}
}

func rangesOverlap(aStart, aLen, bStart, bLen uint64) bool {
	aEnd := aStart + aLen
	bEnd := bStart + bLen
	return aStart < bEnd && bStart < aEnd
}

// growthTarget computes the next capacity to request when a region must
// grow, doubling from its current capacity (or a small floor) rather than
// growing by exactly the bytes needed, to amortize relocation cost.
func growthTarget(capacity, needed uint64) uint64 {
	target := capacity
	if target < minRegionGrowth {
		target = minRegionGrowth
	}
	for target < needed {
		target *= 2
	}
	return target
}

// openFileSynced opens (or creates) file for read/write and fsyncs its
// parent directory, so the directory entry for a newly created file is
// itself durable before any data is written through it.
func openFileSynced(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("rawdb: open %s: %w", filepath.Base(path), err)
	}
	dir, err := os.Open(filepath.Dir(path))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("rawdb: open parent directory: %w", err)
	}
	defer dir.Close()
	if err := dir.Sync(); err != nil {
		f.Close()
		return nil, fmt.Errorf("rawdb: fsync parent directory: %w", err)
	}
	return f, nil
}
