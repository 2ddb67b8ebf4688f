// ABOUTME: Free-hole list tracking reusable byte ranges inside the data file.
// ABOUTME: Ordered by offset; adjacent holes coalesce on insert.
package rawdb

import "sort"

// hole is a byte range inside the data file that is not covered by any live
// region and is available for reuse by CreateRegionIfNeeded or region growth.
type hole struct {
	start, length uint64
}

func (h hole) end() uint64 { return h.start + h.length }

// freeList is a sorted, non-overlapping collection of holes. Regions vary
// in size, so holes are tracked as byte ranges rather than fixed-size page
// pointers, and first-fit (not LIFO) is used to pick a candidate.
type freeList struct {
	holes []hole
}

// insert adds a hole to the list, merging with any holes it is adjacent to.
func (fl *freeList) insert(start, length uint64) {
	if length == 0 {
		return
	}
	i := sort.Search(len(fl.holes), func(i int) bool { return fl.holes[i].start >= start })
	fl.holes = append(fl.holes, hole{})
	copy(fl.holes[i+1:], fl.holes[i:])
	fl.holes[i] = hole{start: start, length: length}
	fl.coalesceAround(i)
}

// coalesceAround merges the hole at index i with its immediate neighbours
// if they are touching.
func (fl *freeList) coalesceAround(i int) {
	if i+1 < len(fl.holes) && fl.holes[i].end() == fl.holes[i+1].start {
		fl.holes[i].length += fl.holes[i+1].length
		fl.holes = append(fl.holes[:i+1], fl.holes[i+2:]...)
	}
	if i > 0 && fl.holes[i-1].end() == fl.holes[i].start {
		fl.holes[i-1].length += fl.holes[i].length
		fl.holes = append(fl.holes[:i], fl.holes[i+1:]...)
	}
}

// firstFit returns the first hole with length >= needed, consuming it
// (shrinking or removing it from the list) and returning its start offset.
func (fl *freeList) firstFit(needed uint64) (uint64, bool) {
	for i, h := range fl.holes {
		if h.length >= needed {
			start := h.start
			if h.length == needed {
				fl.holes = append(fl.holes[:i], fl.holes[i+1:]...)
			} else {
				fl.holes[i].start += needed
				fl.holes[i].length -= needed
			}
			return start, true
		}
	}
	return 0, false
}

// consumeAt consumes up to `want` bytes from the hole beginning exactly at
// offset `at`. Returns the bytes consumed (0 if no hole starts there).
func (fl *freeList) consumeAt(at, want uint64) uint64 {
	for i, h := range fl.holes {
		if h.start != at {
			continue
		}
		take := min(h.length, want)
		if take == h.length {
			fl.holes = append(fl.holes[:i], fl.holes[i+1:]...)
		} else {
			fl.holes[i].start += take
			fl.holes[i].length -= take
		}
		return take
	}
	return 0
}

// holeLengthAt returns the length of the hole starting exactly at offset
// start, or 0 if no such hole exists. Unlike firstFit, this does not
// consume the hole.
func (fl *freeList) holeLengthAt(start uint64) uint64 {
	for _, h := range fl.holes {
		if h.start == start {
			return h.length
		}
		if h.start > start {
			break
		}
	}
	return 0
}

// totalFree returns the sum of all free byte ranges.
func (fl *freeList) totalFree() uint64 {
	var total uint64
	for _, h := range fl.holes {
		total += h.length
	}
	return total
}
