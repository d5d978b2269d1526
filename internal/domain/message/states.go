package message

import (
	"encoding/json"
	"fmt"
	"time"
)

type Status string

const (
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
)

// StatusTimestamps records when each status was reached.
type StatusTimestamps map[Status]time.Time

func (s StatusTimestamps) Marshal() (string, error) {
	if s == nil {
		s = StatusTimestamps{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal status timestamps: %w", err)
	}
	return string(b), nil
}

func UnmarshalStatusTimestamps(raw []byte) (StatusTimestamps, error) {
	out := StatusTimestamps{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal status timestamps: %w", err)
	}
	return out, nil
}
