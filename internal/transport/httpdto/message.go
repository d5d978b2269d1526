package httpdto

import (
	"strconv"
	"time"

	"chat-service/internal/domain/message"
	"chat-service/internal/services"
)

type SendMessageRequest struct {
	Content     string               `json:"content"`
	Attachments []message.Attachment `json:"attachments"`
}

type UpdateMessageRequest struct {
	Content string `json:"content"`
}

// MessageDTO carries the id as a decimal string so clients never lose
// precision on 64-bit ids.
type MessageDTO struct {
	ID               string               `json:"id"`
	ConversationID   string               `json:"conversationId"`
	SenderID         *string              `json:"senderId"`
	Sender           *ProfileDTO          `json:"sender"`
	Content          string               `json:"content"`
	Attachments      []message.Attachment `json:"attachments"`
	Status           string               `json:"status"`
	StatusTimestamps map[string]string    `json:"statusTimestamps"`
	CreatedAt        string               `json:"createdAt"`
	EditedAt         *string              `json:"editedAt"`
}

type MessageResponse struct {
	Message MessageDTO `json:"message"`
}

type MessagePageResponse struct {
	Messages   []MessageDTO `json:"messages"`
	NextCursor *string      `json:"nextCursor"`
	HasMore    bool         `json:"hasMore"`
}

// FromMessage converts a domain message to MessageDTO
func FromMessage(m message.Message) MessageDTO {
	dto := MessageDTO{
		ID:               strconv.FormatInt(m.ID, 10),
		ConversationID:   m.ConversationID.String(),
		Content:          m.Content,
		Attachments:      m.Attachments,
		Status:           string(m.Status),
		StatusTimestamps: make(map[string]string, len(m.StatusTimestamps)),
		CreatedAt:        m.CreatedAt.Format(time.RFC3339Nano),
	}
	if dto.Attachments == nil {
		dto.Attachments = []message.Attachment{}
	}
	for status, at := range m.StatusTimestamps {
		dto.StatusTimestamps[string(status)] = at.Format(time.RFC3339Nano)
	}
	if m.SenderID.Valid {
		id := m.SenderID.UUID.String()
		dto.SenderID = &id
	}
	if m.Sender != nil {
		sender := FromProfile(*m.Sender)
		dto.Sender = &sender
	}
	if m.EditedAt.Valid {
		edited := m.EditedAt.Time.Format(time.RFC3339Nano)
		dto.EditedAt = &edited
	}
	return dto
}

// FromMessagePage converts a service page to MessagePageResponse
func FromMessagePage(p services.MessagePage) MessagePageResponse {
	out := MessagePageResponse{
		Messages:   make([]MessageDTO, len(p.Messages)),
		NextCursor: p.NextCursor,
		HasMore:    p.HasMore,
	}
	for i, m := range p.Messages {
		out.Messages[i] = FromMessage(m)
	}
	return out
}
