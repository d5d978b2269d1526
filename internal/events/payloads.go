package events

import (
	"strconv"
	"time"

	"chat-service/internal/domain/conversation"
	"chat-service/internal/domain/message"

	"github.com/google/uuid"
)

type MessagePayload struct {
	ID             string               `json:"id"`
	ConversationID string               `json:"conversationId"`
	SenderID       *string              `json:"senderId"`
	Content        string               `json:"content"`
	Attachments    []message.Attachment `json:"attachments"`
	Status         string               `json:"status"`
	CreatedAt      time.Time            `json:"createdAt"`
	EditedAt       *time.Time           `json:"editedAt"`
}

func NewMessagePayload(m message.Message) MessagePayload {
	p := MessagePayload{
		ID:             strconv.FormatInt(m.ID, 10),
		ConversationID: m.ConversationID.String(),
		Content:        m.Content,
		Attachments:    m.Attachments,
		Status:         string(m.Status),
		CreatedAt:      m.CreatedAt,
	}
	if m.SenderID.Valid {
		s := m.SenderID.UUID.String()
		p.SenderID = &s
	}
	if m.EditedAt.Valid {
		t := m.EditedAt.Time
		p.EditedAt = &t
	}
	return p
}

type ConversationPayload struct {
	ID           string   `json:"id"`
	Title        *string  `json:"title"`
	IsGroup      bool     `json:"isGroup"`
	CreatedBy    string   `json:"createdBy"`
	Participants []string `json:"participantIds"`
}

func NewConversationPayload(c conversation.Conversation, participants []conversation.Participant) ConversationPayload {
	p := ConversationPayload{
		ID:        c.ID.String(),
		IsGroup:   c.IsGroup,
		CreatedBy: c.CreatedBy.String(),
	}
	if c.Title.Valid {
		title := c.Title.String
		p.Title = &title
	}
	for _, part := range participants {
		p.Participants = append(p.Participants, part.UserID.String())
	}
	return p
}

type ParticipantPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	ActorID        string `json:"actorId"`
	Role           string `json:"role,omitempty"`
}

func NewParticipantPayload(conversationID, userID, actorID uuid.UUID, role conversation.Role) ParticipantPayload {
	return ParticipantPayload{
		ConversationID: conversationID.String(),
		UserID:         userID.String(),
		ActorID:        actorID.String(),
		Role:           string(role),
	}
}
