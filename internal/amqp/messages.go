package amqp

import (
	"encoding/json"
	"time"
)

// Operations carried on a ledger event.
const (
	OpCreate  = "create"
	OpUpdate  = "update"
	OpArchive = "archive"
	OpRestore = "restore"
)

// LedgerEventMessage announces that an expense entry changed and should be
// mirrored to the audit ledger. It carries only the ID and version; the
// worker fetches the current row from the database, so a stale message is
// harmless.
type LedgerEventMessage struct {
	ID        int64     `json:"id"`
	Op        string    `json:"op"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEventMessage(id int64, op string, version int64) *LedgerEventMessage {
	return &LedgerEventMessage{
		ID:        id,
		Op:        op,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
