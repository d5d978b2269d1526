package httpdto

import (
	"time"

	"chat-service/internal/domain/conversation"
	"chat-service/internal/services"
)

type CreateConversationRequest struct {
	ParticipantIDs []string `json:"participantIds"`
	Title          *string  `json:"title"`
	IsGroup        bool     `json:"isGroup"`
}

// ParticipantRequest is the body of both add and remove participant.
type ParticipantRequest struct {
	UserID string `json:"userId"`
}

type ParticipantDTO struct {
	UserID   string     `json:"userId"`
	Role     string     `json:"role"`
	JoinedAt string     `json:"joinedAt"`
	User     ProfileDTO `json:"user"`
}

type ConversationDTO struct {
	ID           string           `json:"id"`
	Title        *string          `json:"title"`
	IsGroup      bool             `json:"isGroup"`
	CreatedBy    string           `json:"createdBy"`
	CreatedAt    string           `json:"createdAt"`
	Participants []ParticipantDTO `json:"participants"`
	LastMessage  *MessageDTO      `json:"lastMessage"`
}

type ConversationResponse struct {
	Conversation ConversationDTO `json:"conversation"`
}

type ListConversationsResponse struct {
	Conversations []ConversationDTO `json:"conversations"`
}

// FromParticipant converts a domain participant to ParticipantDTO
func FromParticipant(p conversation.Participant) ParticipantDTO {
	return ParticipantDTO{
		UserID:   p.UserID.String(),
		Role:     string(p.Role),
		JoinedAt: p.JoinedAt.Format(time.RFC3339Nano),
		User:     FromProfile(p.Profile),
	}
}

// FromConversation converts conversation details to ConversationDTO
func FromConversation(d services.ConversationDetails) ConversationDTO {
	dto := ConversationDTO{
		ID:           d.Conversation.ID.String(),
		IsGroup:      d.Conversation.IsGroup,
		CreatedBy:    d.Conversation.CreatedBy.String(),
		CreatedAt:    d.Conversation.CreatedAt.Format(time.RFC3339Nano),
		Participants: make([]ParticipantDTO, len(d.Participants)),
	}
	if d.Conversation.Title.Valid {
		title := d.Conversation.Title.String
		dto.Title = &title
	}
	for i, p := range d.Participants {
		dto.Participants[i] = FromParticipant(p)
	}
	if d.LastMessage != nil {
		last := FromMessage(*d.LastMessage)
		dto.LastMessage = &last
	}
	return dto
}

// FromConversationSlice converts a slice of conversation details to ConversationDTO slice
func FromConversationSlice(items []services.ConversationDetails) []ConversationDTO {
	dtos := make([]ConversationDTO, len(items))
	for i, d := range items {
		dtos[i] = FromConversation(d)
	}
	return dtos
}
