package export

import (
	"context"
)

// LedgerRow is one line of the audit mirror: the state of an expense entry
// at the time it was synced.
type LedgerRow struct {
	EntryID     int64
	Year        int
	Description string
	LineItem    string
	Proposed    string
	Actual      string
	Returned    string
	Status      string
	SyncedAt    string
}

// Ports for outbound adapters.
type (
	// LedgerAppender mirrors expense entries to an external audit ledger.
	LedgerAppender interface {
		AppendLedgerRow(ctx context.Context, row LedgerRow) (rowRef string, err error)
	}
)
