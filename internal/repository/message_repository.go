package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chat-service/internal/domain/message"
	"chat-service/internal/domain/user"
	chat_errors "chat-service/pkg/errors"

	"github.com/google/uuid"
)

type SQLMessageRepository struct {
	db      DBTX
	dialect Dialect
}

func NewMessageRepository(db DBTX, dialect Dialect) MessageRepository {
	return &SQLMessageRepository{db: db, dialect: dialect}
}

const messageSelect = `
	SELECT m.id, m.conversation_id, m.sender_id, m.content, m.attachments,
	       m.status, m.status_timestamps, m.created_at, m.edited_at,
	       u.id, u.name, u.email, u.avatar_url
	FROM messages m
	LEFT JOIN users u ON u.id = m.sender_id
`

func (r *SQLMessageRepository) Create(ctx context.Context, m *message.Message) error {
	attachments, err := message.MarshalAttachments(m.Attachments)
	if err != nil {
		return err
	}
	for status, at := range m.StatusTimestamps {
		m.StatusTimestamps[status] = dbTime(at)
	}
	timestamps, err := m.StatusTimestamps.Marshal()
	if err != nil {
		return err
	}
	m.CreatedAt = dbTime(m.CreatedAt)

	var id int64
	err = r.db.QueryRowContext(ctx, r.dialect.Rebind(`
		INSERT INTO messages (conversation_id, sender_id, content, attachments, status, status_timestamps, created_at, edited_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), m.ConversationID, m.SenderID, m.Content, attachments, string(m.Status), timestamps, m.CreatedAt, m.EditedAt).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return chat_errors.NotFound("conversation not found")
		}
		return fmt.Errorf("insert message: %w", err)
	}
	m.ID = id
	return nil
}

func (r *SQLMessageRepository) GetByID(ctx context.Context, id int64) (message.Message, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.Rebind(messageSelect+`
		WHERE m.id = ?
	`), id)
	m, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return message.Message{}, chat_errors.NotFound("message not found")
		}
		return message.Message{}, err
	}
	return m, nil
}

func (r *SQLMessageRepository) GetConversationMessages(ctx context.Context, conversationID uuid.UUID, beforeID int64, limit int) ([]message.Message, error) {
	query := messageSelect + ` WHERE m.conversation_id = ?`
	args := []interface{}{conversationID}
	if beforeID > 0 {
		query += ` AND m.id < ?`
		args = append(args, beforeID)
	}
	query += ` ORDER BY m.id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	out := make([]message.Message, 0, limit)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *SQLMessageRepository) GetLastMessages(ctx context.Context, conversationIDs []uuid.UUID) (map[uuid.UUID]message.Message, error) {
	out := make(map[uuid.UUID]message.Message, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return out, nil
	}
	args := make([]interface{}, len(conversationIDs))
	for i, id := range conversationIDs {
		args[i] = id
	}
	query := messageSelect + fmt.Sprintf(`
		WHERE m.id IN (
			SELECT MAX(id) FROM messages
			WHERE conversation_id IN (%s)
			GROUP BY conversation_id
		)
	`, buildPlaceholders(len(conversationIDs)))

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query last messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out[m.ConversationID] = m
	}
	return out, rows.Err()
}

func (r *SQLMessageRepository) UpdateContent(ctx context.Context, id int64, content string, editedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(`
		UPDATE messages SET content = ?, edited_at = ?
		WHERE id = ?
	`), content, dbTime(editedAt), id)
	if err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return chat_errors.NotFound("message not found")
	}
	return nil
}

func scanMessage(row rowScanner) (message.Message, error) {
	var (
		m                       message.Message
		status                  string
		attachments, timestamps []byte
		senderID                uuid.NullUUID
		name, email, avatar     sql.NullString
	)
	err := row.Scan(
		&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &attachments,
		&status, &timestamps, &m.CreatedAt, &m.EditedAt,
		&senderID, &name, &email, &avatar,
	)
	if err != nil {
		return message.Message{}, err
	}

	if m.Attachments, err = message.UnmarshalAttachments(attachments); err != nil {
		return message.Message{}, err
	}
	if m.StatusTimestamps, err = message.UnmarshalStatusTimestamps(timestamps); err != nil {
		return message.Message{}, err
	}
	m.Status = message.Status(status)
	m.CreatedAt = m.CreatedAt.UTC()
	if m.EditedAt.Valid {
		m.EditedAt.Time = m.EditedAt.Time.UTC()
	}
	if senderID.Valid {
		m.Sender = &user.Profile{
			ID:        senderID.UUID,
			Name:      name.String,
			Email:     email.String,
			AvatarURL: avatar,
		}
	}
	return m, nil
}
