package memory

import (
	"context"
	"testing"

	"talaan/internal/export"
)

func TestStoreAppendAndRows(t *testing.T) {
	s := New()

	ref, err := s.AppendLedgerRow(context.Background(), export.LedgerRow{
		EntryID: 7, Year: 2024, Description: "Streetlight repair",
		LineItem: "Infrastructure", Proposed: "300.00", Actual: "250.00",
		Returned: "50.00", Status: "active",
	})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}

	ref, err = s.AppendLedgerRow(context.Background(), export.LedgerRow{EntryID: 8, Year: 2024})
	if err != nil || ref != "mem:2" {
		t.Fatalf("unexpected second append: ref=%q err=%v", ref, err)
	}

	rows := s.Rows()
	if len(rows) != 2 || rows[0].EntryID != 7 || rows[1].EntryID != 8 {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	// Rows returns a copy; mutating it must not affect the store.
	rows[0].EntryID = 99
	if got := s.Rows()[0].EntryID; got != 7 {
		t.Errorf("store mutated through copy: %d", got)
	}
}
