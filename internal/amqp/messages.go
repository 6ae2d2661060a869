package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// BulkActionMessage announces that a bulk action changed a set of rows.
// It carries ids only; consumers re-read the rows from storage.
type BulkActionMessage struct {
	Table     string    `json:"table"`
	Action    string    `json:"action"`
	IDs       []string  `json:"ids"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBulkActionMessage creates a message stamped with the current time.
func NewBulkActionMessage(table, action string, ids []string) *BulkActionMessage {
	return &BulkActionMessage{
		Table:     table,
		Action:    action,
		IDs:       ids,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *BulkActionMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BulkActionMessageFromJSON decodes a message and checks it names a table
// and an action.
func BulkActionMessageFromJSON(data []byte) (*BulkActionMessage, error) {
	var msg BulkActionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Table == "" || msg.Action == "" {
		return nil, errors.New("bulk action message without table or action")
	}
	return &msg, nil
}
