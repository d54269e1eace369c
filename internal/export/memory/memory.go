package memory

import (
	"context"
	"fmt"
	"sync"

	"talaan/internal/export"
)

// Store is an in-memory ledger mirror for development and tests.
type Store struct {
	mu   sync.Mutex
	rows []export.LedgerRow
}

func New() *Store {
	return &Store{}
}

// AppendLedgerRow stores the row and returns a synthetic reference.
func (s *Store) AppendLedgerRow(_ context.Context, row export.LedgerRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []export.LedgerRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]export.LedgerRow(nil), s.rows...)
}
