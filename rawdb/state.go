package rawdb

import "sync/atomic"

// State tracks the dirty/clean lifecycle of a region's persisted data and
// metadata. Transitions are write-once per phase: NeedsWrite -> NeedsFlush
// -> IsClean. Writers store with release semantics; readers load with
// acquire semantics so a published "clean" state is visible before any
// data it covers is read by another goroutine.
type State struct {
	v atomic.Uint32
}

const (
	stateIsClean uint32 = iota
	stateNeedsFlush
	stateNeedsWrite
)

// NewDirtyState returns a state for a newly created region (needs write).
func NewDirtyState() *State {
	s := &State{}
	s.v.Store(stateNeedsWrite)
	return s
}

// NewCleanState returns a state for a region loaded from disk.
func NewCleanState() *State {
	return &State{}
}

func (s *State) load() uint32 { return s.v.Load() }

// IsClean reports whether the region has no pending data or metadata writes.
func (s *State) IsClean() bool { return s.load() == stateIsClean }

// SetClean transitions the state to IsClean.
func (s *State) SetClean() { s.v.Store(stateIsClean) }

// NeedsFlush reports whether data has been written to the mmap but not yet
// synced to disk.
func (s *State) NeedsFlush() bool { return s.load() == stateNeedsFlush }

// SetNeedsFlush transitions the state to NeedsFlush.
func (s *State) SetNeedsFlush() { s.v.Store(stateNeedsFlush) }

// NeedsWrite reports whether metadata has not yet been serialized.
func (s *State) NeedsWrite() bool { return s.load() == stateNeedsWrite }

// SetNeedsWrite transitions the state to NeedsWrite.
func (s *State) SetNeedsWrite() { s.v.Store(stateNeedsWrite) }
