package message

import (
	"database/sql"
	"time"

	"chat-service/internal/domain/user"

	"github.com/google/uuid"
)

// Tombstone replaces the content of a soft-deleted message.
const Tombstone = "[deleted]"

// Message represents the messages table. ID is assigned by storage and
// strictly increases with creation order.
type Message struct {
	ID               int64
	ConversationID   uuid.UUID
	SenderID         uuid.NullUUID
	Content          string
	Attachments      []Attachment
	Status           Status
	StatusTimestamps StatusTimestamps
	CreatedAt        time.Time
	EditedAt         sql.NullTime

	// Sender is populated by reads that join the users table.
	Sender *user.Profile
}

func (m Message) IsDeleted() bool {
	return m.Content == Tombstone
}

// SentBy reports whether userID authored the message.
func (m Message) SentBy(userID uuid.UUID) bool {
	return m.SenderID.Valid && m.SenderID.UUID == userID
}

func (Message) TableName() string {
	return "messages"
}
