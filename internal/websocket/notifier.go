package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"chat-service/internal/events"

	"github.com/google/uuid"
)

// HubNotifier delivers envelopes straight to this instance's connections.
// It serves single-instance deployments that run without redis.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) Notify(_ context.Context, recipients []uuid.UUID, env events.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	seen := make(map[uuid.UUID]struct{}, len(recipients))
	for _, id := range recipients {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		n.hub.BroadcastToUser(id.String(), data)
	}
	return nil
}
