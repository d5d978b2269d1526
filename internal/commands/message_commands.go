package commands

import (
	"strings"

	"chat-service/internal/domain/message"
	"chat-service/internal/pagination"
	chat_errors "chat-service/pkg/errors"

	"github.com/google/uuid"
)

// SendMessageCommand posts Content to a conversation. Content is stored as
// given; only its trimmed form must be non-empty. Attachments are opaque.
type SendMessageCommand struct {
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	Content        string
	Attachments    []message.Attachment
}

func (c *SendMessageCommand) CommandType() string { return "SendMessage" }

func (c *SendMessageCommand) Validate() error {
	if c.ConversationID == uuid.Nil {
		return chat_errors.Validation("conversation id is required")
	}
	if c.SenderID == uuid.Nil {
		return chat_errors.Validation("sender is required")
	}
	for _, a := range c.Attachments {
		if !a.IsObject() {
			return chat_errors.Validation("attachments must be objects")
		}
	}
	return validateContent(c.Content)
}

// EditMessageCommand replaces the content of a message.
type EditMessageCommand struct {
	MessageID   int64
	RequesterID uuid.UUID
	Content     string
}

func (c *EditMessageCommand) CommandType() string { return "EditMessage" }

func (c *EditMessageCommand) Validate() error {
	if c.MessageID <= 0 {
		return chat_errors.Validation("invalid message id")
	}
	return validateContent(c.Content)
}

// DeleteMessageCommand tombstones a message.
type DeleteMessageCommand struct {
	MessageID   int64
	RequesterID uuid.UUID
}

func (c *DeleteMessageCommand) CommandType() string { return "DeleteMessage" }

func (c *DeleteMessageCommand) Validate() error {
	if c.MessageID <= 0 {
		return chat_errors.Validation("invalid message id")
	}
	return nil
}

// ListMessagesQuery reads one page of history, newest first.
type ListMessagesQuery struct {
	ConversationID uuid.UUID
	RequesterID    uuid.UUID
	Cursor         string
	Limit          *int

	beforeID int64
	limit    int
}

func (q *ListMessagesQuery) CommandType() string { return "ListMessages" }

// Validate resolves the cursor and limit; read them back with Page.
func (q *ListMessagesQuery) Validate() error {
	limit, err := pagination.NormalizeLimit(q.Limit)
	if err != nil {
		return err
	}
	q.limit = limit
	q.beforeID = 0
	if q.Cursor != "" {
		id, err := pagination.Decode(q.Cursor)
		if err != nil {
			return err
		}
		q.beforeID = id
	}
	return nil
}

// Page returns the exclusive upper id bound (0 for none) and the page size.
func (q *ListMessagesQuery) Page() (beforeID int64, limit int) {
	return q.beforeID, q.limit
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return chat_errors.Validation("content must not be empty")
	}
	return nil
}
