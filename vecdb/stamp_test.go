// ABOUTME: Tests for the bounded stamp ledger used by rollback.
package vecdb

import "testing"

func TestStampLedgerFindReturnsMostRecentMatch(t *testing.T) {
	l := newStampLedger(8)
	l.record(snapshot{stamp: 1, storedLen: 1})
	l.record(snapshot{stamp: 2, storedLen: 2})
	l.record(snapshot{stamp: 2, storedLen: 20})

	got, ok := l.find(2)
	if !ok {
		t.Fatalf("expected stamp 2 to be found")
	}
	if got.storedLen != 20 {
		t.Fatalf("expected the most recently recorded snapshot for stamp 2, got storedLen=%d", got.storedLen)
	}
}

func TestStampLedgerFindMissingStampFails(t *testing.T) {
	l := newStampLedger(8)
	l.record(snapshot{stamp: 1})

	if _, ok := l.find(99); ok {
		t.Fatalf("expected stamp 99 to not be found")
	}
}

func TestStampLedgerEvictsOldestBeyondRetentionLimit(t *testing.T) {
	l := newStampLedger(2)
	l.record(snapshot{stamp: 1})
	l.record(snapshot{stamp: 2})
	l.record(snapshot{stamp: 3})

	if _, ok := l.find(1); ok {
		t.Fatalf("expected stamp 1 to have been evicted")
	}
	if _, ok := l.find(2); !ok {
		t.Fatalf("expected stamp 2 to still be retained")
	}
	if _, ok := l.find(3); !ok {
		t.Fatalf("expected stamp 3 to still be retained")
	}
}

func TestNewStampLedgerClampsNonPositiveRetention(t *testing.T) {
	l := newStampLedger(0)
	if l.maxRetained != 1 {
		t.Fatalf("expected maxRetained to clamp to 1, got %d", l.maxRetained)
	}
}
