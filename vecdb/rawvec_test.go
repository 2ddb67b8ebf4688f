// ABOUTME: Tests for RawVec push/read/update/hole/truncate/rollback semantics.
package vecdb

import (
	"errors"
	"testing"

	"github.com/nainya/vecdb/rawdb"
)

func openTestDB(t *testing.T) *rawdb.Database {
	t.Helper()
	db, err := rawdb.Open(t.TempDir(), rawdb.Config{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRawVecPushReadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	v, err := ImportRaw[uint64](db, "numbers", 1, FormatBytes)
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	for i := uint64(0); i < 10; i++ {
		v.Push(i * 7)
	}
	if v.Len() != 10 {
		t.Fatalf("expected len 10, got %d", v.Len())
	}
	for i := uint64(0); i < 10; i++ {
		val, ok := v.Read(i)
		if !ok {
			t.Fatalf("expected index %d to be present", i)
		}
		if val != i*7 {
			t.Fatalf("index %d: got %d, want %d", i, val, i*7)
		}
	}
}

func TestRawVecSurvivesWriteAndReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := rawdb.Open(dir, rawdb.Config{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	v, err := ImportRaw[int32](db, "ids", 1, FormatBytes)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	for i := int32(0); i < 5; i++ {
		v.Push(i)
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

	v2, err := ImportRaw[int32](db2, "ids", 1, FormatBytes)
	if err != nil {
		t.Fatalf("reimport: %v", err)
	}
	if v2.Len() != 5 {
		t.Fatalf("expected len 5 after reopen, got %d", v2.Len())
	}
	for i := int32(0); i < 5; i++ {
		got, ok := v2.Read(uint64(i))
		if !ok || got != i {
			t.Fatalf("index %d: got (%d, %v), want (%d, true)", i, got, ok, i)
		}
	}
}

func TestRawVecVersionMismatch(t *testing.T) {
	dir := t.TempDir()
	db, err := rawdb.Open(dir, rawdb.Config{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	v, err := ImportRaw[uint64](db, "col", 1, FormatBytes)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	v.Push(42)
	if err := v.Write(); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err = ImportRaw[uint64](db, "col", 2, FormatBytes)
	var verErr *DifferentVersionError
	if !errors.As(err, &verErr) {
		t.Fatalf("expected *DifferentVersionError, got %v", err)
	}

	forced, err := ForcedImportRaw[uint64](db, "col", 2, FormatBytes)
	if err != nil {
		t.Fatalf("forced import: %v", err)
	}
	if forced.Len() != 0 {
		t.Fatalf("expected forced import to reset length to 0, got %d", forced.Len())
	}
}

func TestRawVecUpdateOverlay(t *testing.T) {
	db := openTestDB(t)
	v, err := ImportRaw[uint64](db, "col", 1, FormatBytes)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	for i := uint64(0); i < 3; i++ {
		v.Push(i)
	}
	if err := v.Write(); err != nil {
		t.Fatalf("write: %v", err)
	}

	v.Update(1, 999)
	got, ok := v.Read(1)
	if !ok || got != 999 {
		t.Fatalf("expected updated value 999, got (%d, %v)", got, ok)
	}

	if err := v.Write(); err != nil {
		t.Fatalf("write after update: %v", err)
	}
	got, ok = v.Read(1)
	if !ok || got != 999 {
		t.Fatalf("expected update to persist after write, got (%d, %v)", got, ok)
	}
}

func TestRawVecUpdateWithinPushBuffer(t *testing.T) {
	db := openTestDB(t)
	v, err := ImportRaw[uint64](db, "col", 1, FormatBytes)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	v.Push(1)
	v.Push(2)
	v.Update(1, 20)

	got, ok := v.Read(1)
	if !ok || got != 20 {
		t.Fatalf("expected push-buffer-local update to apply, got (%d, %v)", got, ok)
	}
}

func TestRawVecRemoveAtProducesHole(t *testing.T) {
	db := openTestDB(t)
	v, err := ImportRaw[uint64](db, "col", 1, FormatBytes)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	for i := uint64(0); i < 3; i++ {
		v.Push(i)
	}
	v.RemoveAt(1)

	if _, ok := v.Read(1); ok {
		t.Fatalf("expected index 1 to read as absent after RemoveAt")
	}
	if _, ok := v.Read(0); !ok {
		t.Fatalf("expected index 0 to remain present")
	}
}

func TestRawVecTrailingHolesTrimLength(t *testing.T) {
	db := openTestDB(t)
	v, err := ImportRaw[uint64](db, "col", 1, FormatBytes)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	for i := uint64(0); i < 3; i++ {
		v.Push(i)
	}
	v.RemoveAt(2)

	if v.Len() != 2 {
		t.Fatalf("expected trailing hole to trim length to 2, got %d", v.Len())
	}
}

func TestRawVecTruncatePush(t *testing.T) {
	db := openTestDB(t)
	v, err := ImportRaw[uint64](db, "col", 1, FormatBytes)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	for i := uint64(0); i < 5; i++ {
		v.Push(i)
	}
	if err := v.TruncatePush(2, 999); err != nil {
		t.Fatalf("truncate-push: %v", err)
	}
	if v.Len() != 3 {
		t.Fatalf("expected len 3, got %d", v.Len())
	}
	got, ok := v.Read(2)
	if !ok || got != 999 {
		t.Fatalf("expected index 2 == 999, got (%d, %v)", got, ok)
	}
}

func TestRawVecTruncatePastLengthFails(t *testing.T) {
	db := openTestDB(t)
	v, err := ImportRaw[uint64](db, "col", 1, FormatBytes)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	v.Push(1)

	err = v.TruncatePush(5, 0)
	var tErr *TruncateInvalidError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected *TruncateInvalidError, got %v", err)
	}
}

func TestRawVecTruncateBelowStoredLenIsLazy(t *testing.T) {
	db := openTestDB(t)
	v, err := ImportRaw[uint64](db, "col", 1, FormatBytes)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	for i := uint64(0); i < 10; i++ {
		v.Push(i)
	}
	if err := v.Write(); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := v.Truncate(4); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	if v.Len() != 4 {
		t.Fatalf("expected len 4 immediately after truncate, got %d", v.Len())
	}
	if err := v.Write(); err != nil {
		t.Fatalf("write after truncate: %v", err)
	}
	if v.Len() != 4 {
		t.Fatalf("expected len 4 to persist after write, got %d", v.Len())
	}
}

func TestRawVecRollbackRestoresPriorStamp(t *testing.T) {
	db := openTestDB(t)
	v, err := ImportRaw[uint64](db, "col", 1, FormatBytes)
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	v.Push(1)
	v.Push(2)
	v.UpdateStamp(Stamp(1))
	if err := v.Write(); err != nil {
		t.Fatalf("write at stamp 1: %v", err)
	}

	v.Push(3)
	v.UpdateStamp(Stamp(2))
	if err := v.Write(); err != nil {
		t.Fatalf("write at stamp 2: %v", err)
	}
	if v.Len() != 3 {
		t.Fatalf("expected len 3 before rollback, got %d", v.Len())
	}

	if err := v.RollbackTo(Stamp(1)); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if v.Len() != 2 {
		t.Fatalf("expected len 2 after rollback to stamp 1, got %d", v.Len())
	}
	if v.Stamp() != Stamp(1) {
		t.Fatalf("expected stamp 1 after rollback, got %d", v.Stamp())
	}
}

func TestRawVecRollbackTooFarFails(t *testing.T) {
	db := openTestDB(t)
	v, err := ImportRaw[uint64](db, "col", 1, FormatBytes)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	v.Push(1)
	if err := v.Write(); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := v.RollbackTo(Stamp(999)); err != ErrRolledBackTooFar {
		t.Fatalf("expected ErrRolledBackTooFar, got %v", err)
	}
}

func TestRawVecIterCleanPath(t *testing.T) {
	db := openTestDB(t)
	v, err := ImportRaw[uint64](db, "col", 1, FormatBytes)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	for i := uint64(0); i < 5; i++ {
		v.Push(i * i)
	}
	if err := v.Write(); err != nil {
		t.Fatalf("write: %v", err)
	}

	it := v.Iter()
	got := it.Collect()
	if len(got) != 5 {
		t.Fatalf("expected 5 values, got %d", len(got))
	}
	for i, val := range got {
		if val != uint64(i*i) {
			t.Fatalf("index %d: got %d, want %d", i, val, i*i)
		}
	}
}

func TestRawVecIterDirtyPath(t *testing.T) {
	db := openTestDB(t)
	v, err := ImportRaw[uint64](db, "col", 1, FormatBytes)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	for i := uint64(0); i < 5; i++ {
		v.Push(i)
	}
	// Pending push buffer means the dirty path must be used.
	it := v.Iter()
	got := it.Collect()
	if len(got) != 5 {
		t.Fatalf("expected 5 values from dirty iterator, got %d", len(got))
	}
}

func TestRawVecNativeFormatEndianGuard(t *testing.T) {
	dir := t.TempDir()
	db, err := rawdb.Open(dir, rawdb.Config{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	v, err := ImportRaw[uint64](db, "col", 1, FormatNative)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	v.Push(123)
	if err := v.Write(); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopening on the same host must succeed: the stored endianness tag
	// always matches the host that wrote it.
	db2, err := rawdb.Open(dir, rawdb.Config{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db2.Close()
	v2, err := ImportRaw[uint64](db2, "col", 1, FormatNative)
	if err != nil {
		t.Fatalf("reimport native vector on same host: %v", err)
	}
	got, ok := v2.Read(0)
	if !ok || got != 123 {
		t.Fatalf("got (%d, %v), want (123, true)", got, ok)
	}
}
