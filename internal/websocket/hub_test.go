package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"chat-service/internal/events"
	"chat-service/pkg/logger"

	"github.com/google/uuid"
)

func runHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return nil
	}
}

func TestHubRoutesByUser(t *testing.T) {
	hub := runHub(t)
	alice1 := NewClient(nil, "alice")
	alice2 := NewClient(nil, "alice")
	bob := NewClient(nil, "bob")
	for _, c := range []*Client{alice1, alice2, bob} {
		hub.Register(c)
	}
	waitFor(t, func() bool { return hub.GetClientCount() == 3 })

	if n := hub.BroadcastToUser("alice", []byte("hello")); n != 2 {
		t.Errorf("delivered = %d, want 2", n)
	}
	for _, c := range []*Client{alice1, alice2} {
		if got := string(receive(t, c)); got != "hello" {
			t.Errorf("got %q", got)
		}
	}
	select {
	case msg := <-bob.Send:
		t.Errorf("bob received %q", msg)
	default:
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := runHub(t)
	c := NewClient(nil, "alice")
	hub.Register(c)
	waitFor(t, func() bool { return hub.GetUserConnectionCount("alice") == 1 })

	hub.Unregister(c)
	hub.Unregister(c)
	waitFor(t, func() bool { return hub.GetClientCount() == 0 })

	if _, ok := <-c.Send; ok {
		t.Error("send channel still open")
	}
	if n := hub.BroadcastToUser("alice", []byte("x")); n != 0 {
		t.Errorf("delivered = %d after unregister", n)
	}
}

func TestHubStopsAcceptingAfterShutdown(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	live := NewClient(nil, "alice")
	hub.Register(live)
	waitFor(t, func() bool { return hub.GetClientCount() == 1 })

	cancel()
	select {
	case <-hub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	if _, ok := <-live.Send; ok {
		t.Error("send channel of live client still open")
	}

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for i := 0; i < 2*cap(hub.unregister); i++ {
			hub.Unregister(live)
		}
		if hub.Register(NewClient(nil, "bob")) {
			t.Error("register accepted after shutdown")
		}
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("register/unregister blocked after shutdown")
	}
}

func TestSendMessageDropsWhenFull(t *testing.T) {
	c := NewClient(nil, "alice")
	for i := 0; i < sendBuffer; i++ {
		if !c.SendMessage([]byte("x")) {
			t.Fatalf("message %d dropped early", i)
		}
	}
	if c.SendMessage([]byte("overflow")) {
		t.Error("full buffer accepted a message")
	}
}

func TestHubNotifierDeliversEnvelope(t *testing.T) {
	hub := runHub(t)
	alice, bob := uuid.New(), uuid.New()
	ca := NewClient(nil, alice.String())
	cb := NewClient(nil, bob.String())
	hub.Register(ca)
	hub.Register(cb)
	waitFor(t, func() bool { return hub.GetClientCount() == 2 })

	env, err := events.NewEnvelope(events.EventTypeMessageCreated, events.AggregateTypeMessage, "7", uuid.NewString(), time.Now(), map[string]string{"id": "7"})
	if err != nil {
		t.Fatal(err)
	}
	if err := NewHubNotifier(hub).Notify(context.Background(), []uuid.UUID{alice, bob, alice}, env); err != nil {
		t.Fatal(err)
	}

	for _, c := range []*Client{ca, cb} {
		var got events.Envelope
		if err := json.Unmarshal(receive(t, c), &got); err != nil {
			t.Fatal(err)
		}
		if got.EventType != events.EventTypeMessageCreated || got.AggregateID != "7" {
			t.Errorf("envelope = %+v", got)
		}
	}
	select {
	case <-ca.Send:
		t.Error("duplicate recipient delivered twice")
	default:
	}
}

type fakeSubscriber struct {
	messages map[string][]byte
}

func (f fakeSubscriber) Subscribe(_ context.Context, _ []string, handler func(channel string, payload []byte)) error {
	for ch, payload := range f.messages {
		handler(ch, payload)
	}
	return nil
}

func TestRedisBridgeRoutesUserChannels(t *testing.T) {
	hub := runHub(t)
	c := NewClient(nil, "alice")
	hub.Register(c)
	waitFor(t, func() bool { return hub.GetClientCount() == 1 })

	bridge := NewRedisBridge(fakeSubscriber{messages: map[string][]byte{
		events.UserChannel("alice"): []byte("for alice"),
		"channel:other:x":           []byte("ignored"),
	}}, hub, logger.NewNop())
	if err := bridge.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := string(receive(t, c)); got != "for alice" {
		t.Errorf("got %q", got)
	}
	select {
	case msg := <-c.Send:
		t.Errorf("unexpected %q", msg)
	default:
	}
}
