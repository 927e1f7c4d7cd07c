package amqp

import (
	"encoding/json"
	"time"
)

// Action tags what happened to a transaction.
type Action string

const (
	ActionCreated Action = "created"
	ActionDeleted Action = "deleted"
)

// TransactionEventMessage tells the rollup worker that the transaction set
// changed. It carries only the ID and action; the worker recomputes from the
// full snapshot rather than applying deltas.
type TransactionEventMessage struct {
	ID        string    `json:"id"`
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionEventMessage creates an event message stamped with now
func NewTransactionEventMessage(id string, action Action) *TransactionEventMessage {
	return &TransactionEventMessage{
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventMessageFromJSON creates a message from JSON bytes
func TransactionEventMessageFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
