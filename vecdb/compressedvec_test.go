// ABOUTME: Tests for CompressedVec page compression, tail handling, and truncation.
package vecdb

import (
	"errors"
	"testing"

	"github.com/nainya/vecdb/rawdb"
)

func TestCompressedVecPushReadAcrossTailAndPages(t *testing.T) {
	db := openTestDB(t)
	v, err := ImportCompressed[uint64](db, "metric", 1, FormatZstd)
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	n := v.PerPage()*2 + 37
	for i := 0; i < n; i++ {
		if err := v.Push(uint64(i)); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if int(v.Len()) != n {
		t.Fatalf("expected len %d, got %d", n, v.Len())
	}
	for i := 0; i < n; i++ {
		got, err := v.Read(uint64(i))
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if got != uint64(i) {
			t.Fatalf("index %d: got %d, want %d", i, got, i)
		}
	}
}

func TestCompressedVecReadOutOfRange(t *testing.T) {
	db := openTestDB(t)
	v, err := ImportCompressed[uint64](db, "metric", 1, FormatLZ4)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	v.Push(1)

	_, err = v.Read(5)
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestCompressedVecSurvivesWriteAndReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := rawdb.Open(dir, rawdb.Config{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	v, err := ImportCompressed[uint64](db, "metric", 1, FormatPco)
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	n := v.PerPage() + 10
	for i := 0; i < n; i++ {
		if err := v.Push(uint64(i) * 3); err != nil {
			t.Fatalf("push: %v", err)
		}
	}
	if err := v.Write(); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := v.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db2, err := rawdb.Open(dir, rawdb.Config{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db2.Close()

	v2, err := ImportCompressed[uint64](db2, "metric", 1, FormatPco)
	if err != nil {
		t.Fatalf("reimport: %v", err)
	}
	if int(v2.Len()) != n {
		t.Fatalf("expected len %d after reopen, got %d", n, v2.Len())
	}
	for i := 0; i < n; i += 7 {
		got, err := v2.Read(uint64(i))
		if err != nil {
			t.Fatalf("read %d after reopen: %v", i, err)
		}
		if got != uint64(i)*3 {
			t.Fatalf("index %d: got %d, want %d", i, got, uint64(i)*3)
		}
	}
}

func TestCompressedVecTruncateWithinTail(t *testing.T) {
	db := openTestDB(t)
	v, err := ImportCompressed[uint64](db, "metric", 1, FormatZstd)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	for i := 0; i < 10; i++ {
		v.Push(uint64(i))
	}
	if err := v.Truncate(4); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	if v.Len() != 4 {
		t.Fatalf("expected len 4, got %d", v.Len())
	}
}

func TestCompressedVecTruncateAtPageBoundary(t *testing.T) {
	db := openTestDB(t)
	v, err := ImportCompressed[uint64](db, "metric", 1, FormatZstd)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	perPage := v.PerPage()
	for i := 0; i < perPage*2; i++ {
		v.Push(uint64(i))
	}
	if err := v.Write(); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := v.Truncate(uint64(perPage)); err != nil {
		t.Fatalf("truncate to page boundary: %v", err)
	}
	if v.Len() != uint64(perPage) {
		t.Fatalf("expected len %d, got %d", perPage, v.Len())
	}
}

func TestCompressedVecTruncateMidPageRejected(t *testing.T) {
	db := openTestDB(t)
	v, err := ImportCompressed[uint64](db, "metric", 1, FormatZstd)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	perPage := v.PerPage()
	for i := 0; i < perPage*2; i++ {
		v.Push(uint64(i))
	}
	if err := v.Write(); err != nil {
		t.Fatalf("write: %v", err)
	}

	err = v.Truncate(uint64(perPage) + 5)
	if !errors.Is(err, ErrTruncateNotOnPageBoundary) {
		t.Fatalf("expected ErrTruncateNotOnPageBoundary, got %v", err)
	}
}

func TestCompressedVecIterMatchesRead(t *testing.T) {
	db := openTestDB(t)
	v, err := ImportCompressed[uint64](db, "metric", 1, FormatLZ4)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	n := v.PerPage() + 20
	for i := 0; i < n; i++ {
		v.Push(uint64(i))
	}

	it := v.Iter()
	got, err := it.Collect()
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(got) != n {
		t.Fatalf("expected %d values, got %d", n, len(got))
	}
	for i, val := range got {
		if val != uint64(i) {
			t.Fatalf("index %d: got %d, want %d", i, val, i)
		}
	}
}

func TestCompressedVecCursorMatchesSequentialReads(t *testing.T) {
	db := openTestDB(t)
	v, err := ImportCompressed[uint64](db, "metric", 1, FormatZstd)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	n := v.PerPage() + 5
	for i := 0; i < n; i++ {
		v.Push(uint64(i) * 2)
	}
	if err := v.Write(); err != nil {
		t.Fatalf("write: %v", err)
	}

	c := NewCursor[uint64](v)
	count := 0
	c.ForEach(uint64(n), func(val uint64) {
		if val != uint64(count)*2 {
			t.Fatalf("cursor index %d: got %d, want %d", count, val, count*2)
		}
		count++
	})
	if count != n {
		t.Fatalf("expected cursor to yield %d values, got %d", n, count)
	}
}
