package conversation

import (
	"database/sql"
	"time"

	"chat-service/internal/domain/user"

	"github.com/google/uuid"
)

// Conversation represents the conversations table
type Conversation struct {
	ID        uuid.UUID
	Title     sql.NullString
	IsGroup   bool
	CreatedBy uuid.UUID
	CreatedAt time.Time
}

// Participant represents the participants table.
// (ConversationID, UserID) is the primary key.
type Participant struct {
	ConversationID uuid.UUID
	UserID         uuid.UUID
	Role           Role
	JoinedAt       time.Time

	// Profile is populated by reads that join the users table.
	Profile user.Profile
}

func (Conversation) TableName() string {
	return "conversations"
}

func (Participant) TableName() string {
	return "participants"
}
