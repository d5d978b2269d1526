package events

import (
	"encoding/json"
	"fmt"
	"time"
)

type Envelope struct {
	EventType      string          `json:"event_type"`
	AggregateType  string          `json:"aggregate_type"`
	AggregateID    string          `json:"aggregate_id"`
	ConversationID string          `json:"conversation_id"`
	OccurredAt     time.Time       `json:"occurred_at"`
	Payload        json.RawMessage `json:"payload"`
}

// NewEnvelope marshals payload into an envelope stamped with occurredAt.
func NewEnvelope(eventType, aggregateType, aggregateID, conversationID string, occurredAt time.Time, payload interface{}) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		EventType:      eventType,
		AggregateType:  aggregateType,
		AggregateID:    aggregateID,
		ConversationID: conversationID,
		OccurredAt:     occurredAt.UTC(),
		Payload:        data,
	}, nil
}
