package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"chat-service/internal/domain/conversation"
	"chat-service/internal/domain/message"
	"chat-service/internal/domain/user"
)

type UserRepository interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (user.User, error)
	// GetUsersByIDs returns the users that exist; absent ids are simply missing from the map.
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]user.User, error)
	UpsertUser(ctx context.Context, u user.User) error
}

type ConversationRepository interface {
	// CreateWithParticipants persists the conversation and all participant rows atomically.
	CreateWithParticipants(ctx context.Context, c *conversation.Conversation, participants []conversation.Participant) error
	GetByID(ctx context.Context, id uuid.UUID) (conversation.Conversation, error)
	GetUserConversations(ctx context.Context, userID uuid.UUID) ([]conversation.Conversation, error)

	AddParticipant(ctx context.Context, p *conversation.Participant) error
	RemoveParticipant(ctx context.Context, conversationID, userID uuid.UUID) error
	GetParticipant(ctx context.Context, conversationID, userID uuid.UUID) (conversation.Participant, error)
	GetParticipants(ctx context.Context, conversationID uuid.UUID) ([]conversation.Participant, error)
	IsParticipant(ctx context.Context, conversationID, userID uuid.UUID) (bool, error)
}

type MessageRepository interface {
	// Create inserts m and sets m.ID to the storage-assigned id.
	Create(ctx context.Context, m *message.Message) error
	GetByID(ctx context.Context, id int64) (message.Message, error)
	// GetConversationMessages returns up to limit messages with id < beforeID
	// (no bound when beforeID is 0), newest first.
	GetConversationMessages(ctx context.Context, conversationID uuid.UUID, beforeID int64, limit int) ([]message.Message, error)
	// GetLastMessages returns the highest-id message of each conversation that has one.
	GetLastMessages(ctx context.Context, conversationIDs []uuid.UUID) (map[uuid.UUID]message.Message, error)
	UpdateContent(ctx context.Context, id int64, content string, editedAt time.Time) error
}
