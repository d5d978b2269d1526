package commands

import (
	"strings"

	chat_errors "chat-service/pkg/errors"

	"github.com/google/uuid"
)

const maxTitleLength = 255

// CreateConversationCommand creates a conversation owned by CreatorID.
// ParticipantIDs arrive unparsed so malformed ids surface as validation errors.
type CreateConversationCommand struct {
	CreatorID      uuid.UUID
	ParticipantIDs []string
	Title          *string
	IsGroup        bool
}

func (c *CreateConversationCommand) CommandType() string { return "CreateConversation" }

func (c *CreateConversationCommand) Validate() error {
	if c.CreatorID == uuid.Nil {
		return chat_errors.Validation("creator is required")
	}
	if len(c.ParticipantIDs) == 0 {
		return chat_errors.Validation("participantIds must not be empty")
	}
	for _, raw := range c.ParticipantIDs {
		if _, err := uuid.Parse(strings.TrimSpace(raw)); err != nil {
			return chat_errors.Newf(chat_errors.KindValidation, "invalid participant id %q", raw)
		}
	}
	if c.Title != nil && len(*c.Title) > maxTitleLength {
		return chat_errors.Newf(chat_errors.KindValidation, "title must be at most %d characters", maxTitleLength)
	}
	return nil
}

// Members returns the creator followed by the requested participants,
// deduplicated in first-seen order. Call after Validate.
func (c *CreateConversationCommand) Members() []uuid.UUID {
	seen := map[uuid.UUID]struct{}{c.CreatorID: {}}
	out := []uuid.UUID{c.CreatorID}
	for _, raw := range c.ParticipantIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// AddParticipantCommand adds UserID to a conversation on behalf of ActorID.
type AddParticipantCommand struct {
	ConversationID uuid.UUID
	UserID         uuid.UUID
	ActorID        uuid.UUID
}

func (c *AddParticipantCommand) CommandType() string { return "AddParticipant" }

func (c *AddParticipantCommand) Validate() error {
	return requireIDs(c.ConversationID, c.UserID, c.ActorID)
}

// RemoveParticipantCommand removes UserID; ActorID == UserID means leaving.
type RemoveParticipantCommand struct {
	ConversationID uuid.UUID
	UserID         uuid.UUID
	ActorID        uuid.UUID
}

func (c *RemoveParticipantCommand) CommandType() string { return "RemoveParticipant" }

func (c *RemoveParticipantCommand) Validate() error {
	return requireIDs(c.ConversationID, c.UserID, c.ActorID)
}

func (c *RemoveParticipantCommand) IsSelfRemoval() bool {
	return c.UserID == c.ActorID
}

func requireIDs(conversationID, userID, actorID uuid.UUID) error {
	switch {
	case conversationID == uuid.Nil:
		return chat_errors.Validation("conversation id is required")
	case userID == uuid.Nil:
		return chat_errors.Validation("userId is required")
	case actorID == uuid.Nil:
		return chat_errors.Validation("acting user is required")
	}
	return nil
}
