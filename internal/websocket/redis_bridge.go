package websocket

import (
	"context"

	"chat-service/internal/events"
	"chat-service/pkg/logger"
)

// RedisBridge delivers envelopes published to personal user channels by any
// instance to the connections held by this one.
type RedisBridge struct {
	subscriber events.Subscriber
	hub        *Hub
	logger     *logger.Logger
}

func NewRedisBridge(subscriber events.Subscriber, hub *Hub, l *logger.Logger) *RedisBridge {
	return &RedisBridge{subscriber: subscriber, hub: hub, logger: l}
}

// Run blocks until ctx is done or the subscription fails.
func (b *RedisBridge) Run(ctx context.Context) error {
	pattern := events.ChannelPrefixUser + "*"
	return b.subscriber.Subscribe(ctx, []string{pattern}, b.route)
}

func (b *RedisBridge) route(channel string, payload []byte) {
	userID, ok := events.UserIDFromChannel(channel)
	if !ok {
		b.logger.Warnf("ignoring message on unexpected channel %q", channel)
		return
	}
	b.hub.BroadcastToUser(userID, payload)
}
