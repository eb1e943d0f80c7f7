package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// EventOp is the kind of change a TransactionEvent announces.
type EventOp string

const (
	OpCreated EventOp = "created"
	OpUpdated EventOp = "updated"
	OpDeleted EventOp = "deleted"
)

func (op EventOp) Valid() bool {
	switch op {
	case OpCreated, OpUpdated, OpDeleted:
		return true
	}
	return false
}

// TransactionEvent announces a confirmed write. It carries ids only; the
// consumer reads the current row from the store.
type TransactionEvent struct {
	Op            EventOp   `json:"op"`
	UserID        string    `json:"user_id"`
	TransactionID string    `json:"transaction_id"`
	UpdatedAt     time.Time `json:"updated_at"`
	Timestamp     time.Time `json:"timestamp"`
}

var ErrMalformedEvent = errors.New("malformed transaction event")

func NewTransactionEvent(op EventOp, userID, transactionID string, updatedAt time.Time) *TransactionEvent {
	return &TransactionEvent{
		Op:            op,
		UserID:        userID,
		TransactionID: transactionID,
		UpdatedAt:     updatedAt,
		Timestamp:     time.Now().UTC(),
	}
}

func (e *TransactionEvent) Validate() error {
	if !e.Op.Valid() {
		return fmt.Errorf("%w: unknown op %q", ErrMalformedEvent, e.Op)
	}
	if e.UserID == "" || e.TransactionID == "" {
		return fmt.Errorf("%w: missing user or transaction id", ErrMalformedEvent)
	}
	return nil
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes and validates an event body.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
