package vecdb

import "github.com/nainya/vecdb/rawdb"

// RawIterator walks a RawVec's logical sequence. It is an explicit sum of
// two fast paths chosen once at construction: clean (tight pointer walk
// over the mmap, no overlay to consult) or dirty (a materialized merge of
// push buffer, updates, and holes). The path never changes after
// construction; Next tests a single bool to follow it.
type RawIterator[T Numeric] struct {
	clean    bool
	reader   *rawdb.Reader
	elemSize int
	format   Format
	total    int
	pos      int

	dirty []T
}

// Next returns the next value and true, or (zero, false) once exhausted.
func (it *RawIterator[T]) Next() (T, bool) {
	var zero T
	if it.clean {
		if it.pos >= it.total {
			return zero, false
		}
		off := HeaderSize + it.pos*it.elemSize
		b := it.reader.Read(off, it.elemSize)
		it.pos++
		if it.format == FormatNative {
			return decodeNative[T](b), true
		}
		return decodeLE[T](b), true
	}
	if it.pos >= len(it.dirty) {
		return zero, false
	}
	v := it.dirty[it.pos]
	it.pos++
	return v, true
}

// Close releases the mmap reader held by the clean fast path. Safe to call
// on a dirty iterator (a no-op) and safe to call more than once.
func (it *RawIterator[T]) Close() {
	if it.clean && it.reader != nil {
		it.reader.Close()
	}
}

// Collect drains the remainder of the iterator into a slice and closes it.
func (it *RawIterator[T]) Collect() []T {
	defer it.Close()
	out := make([]T, 0, it.total-it.pos)
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}
