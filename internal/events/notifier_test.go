package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type recordingPublisher struct {
	channels []string
	payloads [][]byte
	failOn   string
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, payload []byte) error {
	if channel == p.failOn {
		return errors.New("connection refused")
	}
	p.channels = append(p.channels, channel)
	p.payloads = append(p.payloads, payload)
	return nil
}

type recordingProducer struct {
	topic, key string
	payload    []byte
	headers    map[string]string
}

func (p *recordingProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	p.topic, p.key, p.payload, p.headers = topic, key, payload, headers
	return nil
}

func testEnvelope(t *testing.T) Envelope {
	t.Helper()
	env, err := NewEnvelope(EventTypeMessageCreated, AggregateTypeMessage, "7", "conv-1", time.Now(), map[string]string{"content": "hi"})
	if err != nil {
		t.Fatal(err)
	}
	return env
}

func TestPubSubNotifierPublishesToEachRecipientOnce(t *testing.T) {
	pub := &recordingPublisher{}
	n := NewPubSubNotifier(pub, nil)
	a, b := uuid.New(), uuid.New()

	if err := n.Notify(context.Background(), []uuid.UUID{a, b, a}, testEnvelope(t)); err != nil {
		t.Fatal(err)
	}
	if len(pub.channels) != 2 || pub.channels[0] != UserChannel(a.String()) || pub.channels[1] != UserChannel(b.String()) {
		t.Fatalf("channels = %v", pub.channels)
	}
	var env Envelope
	if err := json.Unmarshal(pub.payloads[0], &env); err != nil {
		t.Fatal(err)
	}
	if env.EventType != EventTypeMessageCreated || env.AggregateID != "7" {
		t.Errorf("decoded envelope = %+v", env)
	}
}

func TestPubSubNotifierReportsPartialFailure(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	pub := &recordingPublisher{failOn: UserChannel(a.String())}
	err := NewPubSubNotifier(pub, nil).Notify(context.Background(), []uuid.UUID{a, b}, testEnvelope(t))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(pub.channels) != 1 {
		t.Errorf("remaining recipients should still be published to, got %v", pub.channels)
	}
}

func TestKafkaNotifierKeysByConversation(t *testing.T) {
	prod := &recordingProducer{}
	a := uuid.New()
	if err := NewKafkaNotifier(prod, "chat.events").Notify(context.Background(), []uuid.UUID{a}, testEnvelope(t)); err != nil {
		t.Fatal(err)
	}
	if prod.topic != "chat.events" || prod.key != "conv-1" || prod.headers["event_type"] != EventTypeMessageCreated {
		t.Fatalf("producer got topic=%q key=%q headers=%v", prod.topic, prod.key, prod.headers)
	}
	var rec Record
	if err := json.Unmarshal(prod.payload, &rec); err != nil {
		t.Fatal(err)
	}
	if len(rec.Recipients) != 1 || rec.Recipients[0] != a.String() {
		t.Errorf("recipients = %v", rec.Recipients)
	}
}

func TestUserIDFromChannel(t *testing.T) {
	if id, ok := UserIDFromChannel("channel:user:abc"); !ok || id != "abc" {
		t.Errorf("got %q, %v", id, ok)
	}
	if _, ok := UserIDFromChannel("channel:conversation:abc"); ok {
		t.Error("conversation channel must not parse as a user channel")
	}
	if _, ok := UserIDFromChannel(ChannelPrefixUser); ok {
		t.Error("empty id must not parse")
	}
}
