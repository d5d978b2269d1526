package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"chat-service/internal/commands"
	"chat-service/internal/domain/message"
	"chat-service/internal/events"
	"chat-service/internal/pagination"
	chat_errors "chat-service/pkg/errors"

	"github.com/google/uuid"
)

func (e *env) send(t *testing.T, conversationID, sender uuid.UUID, content string) message.Message {
	t.Helper()
	m, err := e.messages.SendMessage(context.Background(), &commands.SendMessageCommand{
		ConversationID: conversationID,
		SenderID:       sender,
		Content:        content,
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	return m
}

func (e *env) page(t *testing.T, conversationID, requester uuid.UUID, cursor string, limit int) MessagePage {
	t.Helper()
	p, err := e.messages.GetMessages(context.Background(), &commands.ListMessagesQuery{
		ConversationID: conversationID,
		RequesterID:    requester,
		Cursor:         cursor,
		Limit:          &limit,
	})
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	return p
}

func TestOneToOneScenario(t *testing.T) {
	e := newEnv(t)
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	d := e.create(t, alice, bob)

	sent := e.send(t, d.Conversation.ID, alice, "hi")
	if sent.Status != message.StatusSent || sent.EditedAt.Valid {
		t.Errorf("sent = %+v", sent)
	}
	if _, ok := sent.StatusTimestamps[message.StatusSent]; !ok {
		t.Error("missing sent timestamp")
	}
	if sent.Sender == nil || sent.Sender.Name != "alice" {
		t.Errorf("sender = %+v", sent.Sender)
	}

	n := e.notifier.last(t)
	if n.env.EventType != events.EventTypeMessageCreated || len(n.recipients) != 2 {
		t.Errorf("notification = %s to %d", n.env.EventType, len(n.recipients))
	}

	p, err := e.messages.GetMessages(context.Background(), &commands.ListMessagesQuery{ConversationID: d.Conversation.ID, RequesterID: bob})
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Messages) != 1 || p.Messages[0].Content != "hi" || p.HasMore || p.NextCursor != nil {
		t.Errorf("page = %+v", p)
	}
}

func TestPaginationScenario(t *testing.T) {
	e := newEnv(t)
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	d := e.create(t, alice, bob)

	var sent []message.Message
	for _, c := range []string{"m1", "m2", "m3", "m4", "m5"} {
		sent = append(sent, e.send(t, d.Conversation.ID, alice, c))
	}

	p := e.page(t, d.Conversation.ID, bob, "", 3)
	if len(p.Messages) != 3 || !p.HasMore || p.NextCursor == nil {
		t.Fatalf("first page = %+v", p)
	}
	for i, want := range []int64{sent[4].ID, sent[3].ID, sent[2].ID} {
		if p.Messages[i].ID != want {
			t.Errorf("first page[%d] = %d, want %d", i, p.Messages[i].ID, want)
		}
	}
	if id, _ := pagination.Decode(*p.NextCursor); id != sent[2].ID {
		t.Errorf("cursor id = %d, want %d", id, sent[2].ID)
	}

	p = e.page(t, d.Conversation.ID, bob, *p.NextCursor, 3)
	if len(p.Messages) != 2 || p.HasMore || p.NextCursor != nil {
		t.Fatalf("second page = %+v", p)
	}
	if p.Messages[0].ID != sent[1].ID || p.Messages[1].ID != sent[0].ID {
		t.Errorf("second page ids = %d, %d", p.Messages[0].ID, p.Messages[1].ID)
	}
}

func TestPaginationSameClockTick(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice")
	d := e.create(t, alice, e.user(t, "bob"))

	frozen := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	e.messages.now = func() time.Time { return frozen }
	const total = 7
	for i := 0; i < total; i++ {
		e.send(t, d.Conversation.ID, alice, "tick")
	}

	seen := map[int64]bool{}
	var prev int64
	cursor := ""
	for {
		p := e.page(t, d.Conversation.ID, alice, cursor, 2)
		for _, m := range p.Messages {
			if seen[m.ID] {
				t.Fatalf("message %d returned twice", m.ID)
			}
			if prev != 0 && m.ID >= prev {
				t.Fatalf("ids not descending: %d after %d", m.ID, prev)
			}
			seen[m.ID] = true
			prev = m.ID
		}
		if !p.HasMore {
			break
		}
		cursor = *p.NextCursor
	}
	if len(seen) != total {
		t.Errorf("saw %d messages, want %d", len(seen), total)
	}
}

func TestFullHistoryInOnePage(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice")
	d := e.create(t, alice, e.user(t, "bob"))

	const n = 12
	for i := 0; i < n; i++ {
		e.send(t, d.Conversation.ID, alice, "x")
	}
	p := e.page(t, d.Conversation.ID, alice, "", n)
	if len(p.Messages) != n || p.HasMore {
		t.Fatalf("len = %d hasMore = %v", len(p.Messages), p.HasMore)
	}
	for i := 1; i < n; i++ {
		if p.Messages[i].ID >= p.Messages[i-1].ID {
			t.Fatalf("not strictly descending at %d", i)
		}
	}
}

func TestGetMessagesValidation(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice")
	d := e.create(t, alice, e.user(t, "bob"))

	for _, limit := range []int{0, 101} {
		l := limit
		_, err := e.messages.GetMessages(context.Background(), &commands.ListMessagesQuery{ConversationID: d.Conversation.ID, RequesterID: alice, Limit: &l})
		if !errors.Is(err, chat_errors.ErrInvalidInput) {
			t.Errorf("limit %d: err = %v", limit, err)
		}
	}
	_, err := e.messages.GetMessages(context.Background(), &commands.ListMessagesQuery{ConversationID: d.Conversation.ID, RequesterID: alice, Cursor: "garbage!"})
	if !errors.Is(err, chat_errors.ErrInvalidInput) {
		t.Errorf("bad cursor: err = %v", err)
	}
}

func TestSendMessageRules(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	d := e.create(t, alice, e.user(t, "bob"))

	_, err := e.messages.SendMessage(ctx, &commands.SendMessageCommand{ConversationID: d.Conversation.ID, SenderID: alice, Content: "   "})
	if !errors.Is(err, chat_errors.ErrInvalidInput) {
		t.Errorf("blank: err = %v", err)
	}
	_, err = e.messages.SendMessage(ctx, &commands.SendMessageCommand{ConversationID: uuid.New(), SenderID: alice, Content: "hi"})
	if !errors.Is(err, chat_errors.ErrForbidden) {
		t.Errorf("unknown conversation: err = %v", err)
	}

	m, err := e.messages.SendMessage(ctx, &commands.SendMessageCommand{
		ConversationID: d.Conversation.ID,
		SenderID:       alice,
		Content:        "  padded  ",
		Attachments:    []message.Attachment{message.Attachment(`{"type":"image/png","url":"https://cdn/a.png","name":"a.png","size":10}`)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if m.Content != "  padded  " || len(m.Attachments) != 1 {
		t.Errorf("stored = %+v", m)
	}
}

func TestOutsiderIsForbidden(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob, carol := e.user(t, "alice"), e.user(t, "bob"), e.user(t, "carol")
	d := e.create(t, alice, bob)
	m := e.send(t, d.Conversation.ID, alice, "private")

	if _, err := e.messages.SendMessage(ctx, &commands.SendMessageCommand{ConversationID: d.Conversation.ID, SenderID: carol, Content: "hey"}); !errors.Is(err, chat_errors.ErrForbidden) {
		t.Errorf("send: err = %v", err)
	}
	if _, err := e.messages.GetMessages(ctx, &commands.ListMessagesQuery{ConversationID: d.Conversation.ID, RequesterID: carol}); !errors.Is(err, chat_errors.ErrForbidden) {
		t.Errorf("get: err = %v", err)
	}
	if _, err := e.messages.UpdateMessage(ctx, &commands.EditMessageCommand{MessageID: m.ID, RequesterID: carol, Content: "x"}); !errors.Is(err, chat_errors.ErrForbidden) {
		t.Errorf("update: err = %v", err)
	}
	if _, err := e.messages.DeleteMessage(ctx, &commands.DeleteMessageCommand{MessageID: m.ID, RequesterID: carol}); !errors.Is(err, chat_errors.ErrForbidden) {
		t.Errorf("delete: err = %v", err)
	}
}

func TestUpdateAndDeleteMessage(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	d := e.create(t, alice, bob)
	m := e.send(t, d.Conversation.ID, alice, "draft")

	if _, err := e.messages.UpdateMessage(ctx, &commands.EditMessageCommand{MessageID: m.ID + 100, RequesterID: alice, Content: "x"}); !errors.Is(err, chat_errors.ErrNotFound) {
		t.Errorf("unknown: err = %v", err)
	}
	if _, err := e.messages.UpdateMessage(ctx, &commands.EditMessageCommand{MessageID: m.ID, RequesterID: bob, Content: "x"}); !errors.Is(err, chat_errors.ErrForbidden) {
		t.Errorf("non-sender: err = %v", err)
	}
	if _, err := e.messages.UpdateMessage(ctx, &commands.EditMessageCommand{MessageID: m.ID, RequesterID: alice, Content: " "}); !errors.Is(err, chat_errors.ErrInvalidInput) {
		t.Errorf("blank: err = %v", err)
	}

	edited, err := e.messages.UpdateMessage(ctx, &commands.EditMessageCommand{MessageID: m.ID, RequesterID: alice, Content: "final"})
	if err != nil {
		t.Fatal(err)
	}
	if edited.Content != "final" || !edited.EditedAt.Valid || edited.ID != m.ID || !edited.CreatedAt.Equal(m.CreatedAt) {
		t.Errorf("edited = %+v", edited)
	}
	if n := e.notifier.last(t); n.env.EventType != events.EventTypeMessageUpdated {
		t.Errorf("event = %s", n.env.EventType)
	}

	for i := 0; i < 2; i++ {
		deleted, err := e.messages.DeleteMessage(ctx, &commands.DeleteMessageCommand{MessageID: m.ID, RequesterID: alice})
		if err != nil {
			t.Fatalf("delete %d: %v", i, err)
		}
		if !deleted.IsDeleted() || !deleted.EditedAt.Valid || deleted.ID != m.ID {
			t.Errorf("delete %d = %+v", i, deleted)
		}
	}
	if n := e.notifier.last(t); n.env.EventType != events.EventTypeMessageDeleted {
		t.Errorf("event = %s", n.env.EventType)
	}

	p := e.page(t, d.Conversation.ID, bob, "", 10)
	if len(p.Messages) != 1 || p.Messages[0].Content != message.Tombstone {
		t.Errorf("history after delete = %+v", p.Messages)
	}
}
