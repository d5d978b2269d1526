package commands

import (
	"errors"
	"testing"

	"chat-service/internal/domain/message"
	"chat-service/internal/pagination"
	chat_errors "chat-service/pkg/errors"

	"github.com/google/uuid"
)

func TestValidateRejections(t *testing.T) {
	creator, other := uuid.New(), uuid.New()
	zero, big := 0, 101
	long := string(make([]byte, 300))

	cases := []struct {
		name string
		cmd  Command
	}{
		{"no participants", &CreateConversationCommand{CreatorID: creator}},
		{"bad participant id", &CreateConversationCommand{CreatorID: creator, ParticipantIDs: []string{"nope"}}},
		{"long title", &CreateConversationCommand{CreatorID: creator, ParticipantIDs: []string{other.String()}, Title: &long}},
		{"blank content", &SendMessageCommand{ConversationID: uuid.New(), SenderID: creator, Content: " \n\t "}},
		{"attachment not object", &SendMessageCommand{ConversationID: uuid.New(), SenderID: creator, Content: "hi", Attachments: []message.Attachment{message.Attachment(`"x.png"`)}}},
		{"blank edit", &EditMessageCommand{MessageID: 1, RequesterID: creator, Content: ""}},
		{"bad delete id", &DeleteMessageCommand{RequesterID: creator}},
		{"zero limit", &ListMessagesQuery{Limit: &zero}},
		{"large limit", &ListMessagesQuery{Limit: &big}},
		{"bad cursor", &ListMessagesQuery{Cursor: "%%%"}},
		{"missing user", &AddParticipantCommand{ConversationID: uuid.New(), ActorID: creator}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cmd.Validate()
			if !errors.Is(err, chat_errors.ErrInvalidInput) {
				t.Fatalf("%s.Validate() = %v, want validation error", tc.cmd.CommandType(), err)
			}
		})
	}
}

func TestMembersPutsCreatorFirstAndDedupes(t *testing.T) {
	creator, b, c := uuid.New(), uuid.New(), uuid.New()
	cmd := &CreateConversationCommand{
		CreatorID:      creator,
		ParticipantIDs: []string{b.String(), creator.String(), c.String(), b.String()},
	}
	if err := cmd.Validate(); err != nil {
		t.Fatal(err)
	}
	got := cmd.Members()
	want := []uuid.UUID{creator, b, c}
	if len(got) != len(want) {
		t.Fatalf("Members() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Members()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestSendMessageKeepsUntrimmedContent(t *testing.T) {
	cmd := &SendMessageCommand{ConversationID: uuid.New(), SenderID: uuid.New(), Content: "  hi  "}
	if err := cmd.Validate(); err != nil {
		t.Fatal(err)
	}
	if cmd.Content != "  hi  " {
		t.Errorf("content mutated to %q", cmd.Content)
	}
}

func TestListMessagesQueryPage(t *testing.T) {
	q := &ListMessagesQuery{}
	if err := q.Validate(); err != nil {
		t.Fatal(err)
	}
	if before, limit := q.Page(); before != 0 || limit != pagination.DefaultLimit {
		t.Errorf("Page() = %d, %d", before, limit)
	}

	n := 10
	q = &ListMessagesQuery{Cursor: pagination.Encode(77), Limit: &n}
	if err := q.Validate(); err != nil {
		t.Fatal(err)
	}
	if before, limit := q.Page(); before != 77 || limit != 10 {
		t.Errorf("Page() = %d, %d", before, limit)
	}
}

func TestRemoveParticipantSelf(t *testing.T) {
	u := uuid.New()
	if !(&RemoveParticipantCommand{ConversationID: uuid.New(), UserID: u, ActorID: u}).IsSelfRemoval() {
		t.Error("expected self removal")
	}
}
