package vecdb

import (
	"github.com/nainya/vecdb/vecdb/codec"
	"github.com/nainya/vecdb/rawdb"
)

// CompressedIterator walks a CompressedVec's values in order, decoding one
// page at a time and reusing its decode buffer across pages. It snapshots
// the vector's page list and tail at construction, so mutations made to the
// vector after Iter() returns are not observed by this iterator.
type CompressedIterator[T Numeric] struct {
	region   *rawdb.Region
	strategy codec.Strategy
	pages    []page
	tail    []T
	dirty   bool
	pageIdx int
	lanes   []uint64
	local   int
	tailPos int
	err     error
}

// Iter returns an iterator over the vector's current contents.
func (v *CompressedVec[T]) Iter() *CompressedIterator[T] {
	v.mu.Lock()
	defer v.mu.Unlock()

	pagesCopy := make([]page, len(v.index.pages))
	copy(pagesCopy, v.index.pages)
	tailCopy := make([]T, len(v.tail))
	copy(tailCopy, v.tail)

	return &CompressedIterator[T]{
		region:   v.region,
		strategy: v.strategy,
		pages:    pagesCopy,
		tail:     tailCopy,
		dirty:    len(v.tail) > 0,
	}
}

// Next returns the next value and true, or (zero, false) once exhausted or
// once a page fails to decompress (check Err in that case).
func (c *CompressedIterator[T]) Next() (T, bool) {
	var zero T
	if c.err != nil {
		return zero, false
	}
	for c.local >= len(c.lanes) {
		if c.pageIdx >= len(c.pages) {
			if c.tailPos < len(c.tail) {
				v := c.tail[c.tailPos]
				c.tailPos++
				return v, true
			}
			return zero, false
		}
		p := c.pages[c.pageIdx]
		reader := c.region.CreateReader()
		data := reader.Read(HeaderSize+int(p.start), int(p.bytes))
		lanes, err := c.strategy.DecompressInto(data, int(p.values), c.lanes[:0])
		reader.Close()
		if err != nil {
			c.err = &DecompressionMismatchError{PageIndex: c.pageIdx, Expected: int(p.values)}
			return zero, false
		}
		c.lanes = lanes
		c.local = 0
		c.pageIdx++
	}
	v := fromBits[T](c.lanes[c.local])
	c.local++
	return v, true
}

// Err returns the decompression error that stopped iteration, if any.
func (c *CompressedIterator[T]) Err() error {
	return c.err
}

// Close is a no-op: the iterator holds no reader between calls to Next.
// It is safe to call multiple times.
func (c *CompressedIterator[T]) Close() {}

// Collect drains the iterator into a slice.
func (c *CompressedIterator[T]) Collect() ([]T, error) {
	out := make([]T, 0, len(c.tail))
	for {
		v, ok := c.Next()
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out, c.err
}
