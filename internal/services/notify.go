package services

import (
	"context"
	"time"

	"chat-service/internal/events"
	"chat-service/internal/metrics"
	"chat-service/pkg/logger"

	"github.com/google/uuid"
)

// emitter sends post-commit notifications. Delivery failures are logged and
// counted but never surface to the caller, whose change has already committed.
type emitter struct {
	notifier events.Notifier
	logger   *logger.Logger
	now      func() time.Time
}

func newEmitter(notifier events.Notifier, l *logger.Logger) emitter {
	if notifier == nil {
		notifier = events.NopNotifier{}
	}
	if l == nil {
		l = logger.NewNop()
	}
	return emitter{notifier: notifier, logger: l, now: time.Now}
}

func (e emitter) emit(ctx context.Context, recipients []uuid.UUID, eventType, aggregateType, aggregateID string, conversationID uuid.UUID, payload interface{}) {
	env, err := events.NewEnvelope(eventType, aggregateType, aggregateID, conversationID.String(), e.now(), payload)
	if err != nil {
		metrics.NotificationFailures.WithLabelValues(eventType).Inc()
		e.logger.WithContext(ctx).Errorf("failed to build %s event: %v", eventType, err)
		return
	}
	if err := e.notifier.Notify(context.WithoutCancel(ctx), recipients, env); err != nil {
		metrics.NotificationFailures.WithLabelValues(eventType).Inc()
		e.logger.WithContext(ctx).Errorf("failed to notify %s for conversation %s: %v", eventType, conversationID, err)
	}
}
