package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Notifier delivers an envelope to the given recipients. Callers invoke it
// only after the change it describes has committed.
type Notifier interface {
	Notify(ctx context.Context, recipients []uuid.UUID, env Envelope) error
}

// Publisher is satisfied by the redis publisher.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// PubSubNotifier publishes envelopes to per-user pub/sub channels.
type PubSubNotifier struct {
	publisher Publisher
	resolver  ChannelResolver
}

func NewPubSubNotifier(publisher Publisher, resolver ChannelResolver) *PubSubNotifier {
	if resolver == nil {
		resolver = NewUserChannelResolver()
	}
	return &PubSubNotifier{publisher: publisher, resolver: resolver}
}

func (n *PubSubNotifier) Notify(ctx context.Context, recipients []uuid.UUID, env Envelope) error {
	channels := n.resolver.ResolveChannels(recipients, env)
	if len(channels) == 0 {
		return nil
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	var errs []error
	for _, channel := range channels {
		if err := n.publisher.Publish(ctx, channel, data); err != nil {
			errs = append(errs, fmt.Errorf("publish to %s: %w", channel, err))
		}
	}
	return errors.Join(errs...)
}

// Producer is satisfied by the kafka producer.
type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Record is the kafka value: the envelope plus who should receive it.
type Record struct {
	Envelope
	Recipients []string `json:"recipients"`
}

// KafkaNotifier writes one record per envelope, keyed by conversation so a
// conversation's events stay ordered within a partition.
type KafkaNotifier struct {
	producer Producer
	topic    string
}

func NewKafkaNotifier(producer Producer, topic string) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic}
}

func (n *KafkaNotifier) Notify(ctx context.Context, recipients []uuid.UUID, env Envelope) error {
	rec := Record{Envelope: env, Recipients: make([]string, 0, len(recipients))}
	for _, id := range recipients {
		rec.Recipients = append(rec.Recipients, id.String())
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	headers := map[string]string{
		"event_type":   env.EventType,
		"content-type": "application/json",
	}
	return n.producer.Publish(ctx, n.topic, env.ConversationID, data, headers)
}

// Fanout notifies every wrapped notifier and joins their errors.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, recipients []uuid.UUID, env Envelope) error {
	var errs []error
	for _, n := range f {
		if err := n.Notify(ctx, recipients, env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, []uuid.UUID, Envelope) error { return nil }
