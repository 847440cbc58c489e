package amqp

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TransactionEvent is published by the inventory backend whenever a stock
// movement is created, changed or removed. The dashboard only needs to know
// that statistics are stale, so the payload stays small.
type TransactionEvent struct {
	Event         string    `json:"event"`
	TransactionID int64     `json:"transaction_id"`
	ItemID        int64     `json:"item_id,omitempty"`
	Type          string    `json:"type,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionEvent creates an event stamped with the current time
func NewTransactionEvent(event string, transactionID, itemID int64, txType string) *TransactionEvent {
	return &TransactionEvent{
		Event:         event,
		TransactionID: transactionID,
		ItemID:        itemID,
		Type:          txType,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes an event. When the body carries no event
// name it is taken from the last segment of the routing key.
func TransactionEventFromJSON(data []byte, routingKey string) (*TransactionEvent, error) {
	var ev TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode transaction event: %w", err)
	}
	if ev.Event == "" {
		if i := strings.LastIndexByte(routingKey, '.'); i >= 0 {
			ev.Event = routingKey[i+1:]
		} else {
			ev.Event = routingKey
		}
	}
	return &ev, nil
}
