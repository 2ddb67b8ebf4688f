// ABOUTME: Tests for region byte-level I/O: Append, WriteAt, EnsureCapacity, SetLength, Truncate.
package rawdb

import (
	"bytes"
	"errors"
	"testing"
)

func TestRegionAppendExtendsLength(t *testing.T) {
	db := openTestDB(t)
	r, err := db.CreateRegionIfNeeded("col")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := r.Append([]byte("hello")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if r.Len() != 5 {
		t.Fatalf("expected len 5, got %d", r.Len())
	}
	if err := r.Append([]byte(" world")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if r.Len() != 11 {
		t.Fatalf("expected len 11, got %d", r.Len())
	}

	reader := r.CreateReader()
	defer reader.Close()
	if got := reader.ReadAll(); !bytes.Equal(got, []byte("hello world")) {
		t.Fatalf("got %q, want %q", got, "hello world")
	}
}

func TestRegionWriteAtOverwritesWithinBounds(t *testing.T) {
	db := openTestDB(t)
	r, err := db.CreateRegionIfNeeded("col")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := r.Append([]byte("aaaaa")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := r.WriteAt(1, []byte("bb")); err != nil {
		t.Fatalf("write at: %v", err)
	}

	reader := r.CreateReader()
	defer reader.Close()
	if got := reader.ReadAll(); !bytes.Equal(got, []byte("abbaa")) {
		t.Fatalf("got %q, want %q", got, "abbaa")
	}
}

func TestRegionWriteAtPastLengthFails(t *testing.T) {
	db := openTestDB(t)
	r, err := db.CreateRegionIfNeeded("col")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := r.Append([]byte("abc")); err != nil {
		t.Fatalf("append: %v", err)
	}

	err = r.WriteAt(2, []byte("xyz"))
	var boundsErr *WriteOutOfBoundsError
	if !errors.As(err, &boundsErr) {
		t.Fatalf("expected *WriteOutOfBoundsError, got %v", err)
	}
}

func TestRegionEnsureCapacityGrowsWithoutChangingLength(t *testing.T) {
	db := openTestDB(t)
	r, err := db.CreateRegionIfNeeded("col")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := r.Append([]byte("abc")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := r.EnsureCapacity(4096); err != nil {
		t.Fatalf("ensure capacity: %v", err)
	}
	if r.Len() != 3 {
		t.Fatalf("expected length to remain 3, got %d", r.Len())
	}
	if r.Capacity() < 4096 {
		t.Fatalf("expected capacity >= 4096, got %d", r.Capacity())
	}
}

func TestRegionSetLengthUpdatesBookkeepingOnly(t *testing.T) {
	db := openTestDB(t)
	r, err := db.CreateRegionIfNeeded("col")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := r.EnsureCapacity(64); err != nil {
		t.Fatalf("ensure capacity: %v", err)
	}
	r.SetLength(10)
	if r.Len() != 10 {
		t.Fatalf("expected len 10, got %d", r.Len())
	}
}

func TestRegionTruncateRejectsGrowth(t *testing.T) {
	db := openTestDB(t)
	r, err := db.CreateRegionIfNeeded("col")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := r.Append([]byte("ab")); err != nil {
		t.Fatalf("append: %v", err)
	}

	err = r.Truncate(5)
	var truncErr *TruncateInvalidError
	if !errors.As(err, &truncErr) {
		t.Fatalf("expected *TruncateInvalidError, got %v", err)
	}
}

func TestRegionTruncateShrinksLengthAndReleasesCapacity(t *testing.T) {
	db := openTestDB(t)
	r, err := db.CreateRegionIfNeeded("col")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := r.Append([]byte("abcdefghij")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := r.Truncate(4); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	if r.Len() != 4 {
		t.Fatalf("expected len 4, got %d", r.Len())
	}
	if r.Capacity() != 4 {
		t.Fatalf("expected capacity released down to 4, got %d", r.Capacity())
	}

	reader := r.CreateReader()
	defer reader.Close()
	if got := reader.ReadAll(); !bytes.Equal(got, []byte("abcd")) {
		t.Fatalf("got %q, want %q", got, "abcd")
	}
}
