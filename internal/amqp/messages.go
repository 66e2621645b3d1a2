package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExpenseSyncMessage asks the worker to mirror one expense row to the sheet.
// It carries only the ID and version; the worker fetches the full row from
// the database.
type ExpenseSyncMessage struct {
	MessageID string    `json:"message_id"`
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseSyncMessage(id, version int64) *ExpenseSyncMessage {
	return &ExpenseSyncMessage{
		MessageID: uuid.NewString(),
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func (m *ExpenseSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseSyncMessageFromJSON(data []byte) (*ExpenseSyncMessage, error) {
	var msg ExpenseSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
