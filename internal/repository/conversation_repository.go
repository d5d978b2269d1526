package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"chat-service/internal/domain/conversation"
	chat_errors "chat-service/pkg/errors"

	"github.com/google/uuid"
)

type SQLConversationRepository struct {
	db      DBTX
	dialect Dialect
}

func NewConversationRepository(db DBTX, dialect Dialect) ConversationRepository {
	return &SQLConversationRepository{db: db, dialect: dialect}
}

func (r *SQLConversationRepository) CreateWithParticipants(ctx context.Context, c *conversation.Conversation, participants []conversation.Participant) error {
	c.CreatedAt = dbTime(c.CreatedAt)
	return WithTx(ctx, r.db, func(tx DBTX) error {
		_, err := tx.ExecContext(ctx, r.dialect.Rebind(`
			INSERT INTO conversations (id, title, is_group, created_by, created_at)
			VALUES (?, ?, ?, ?, ?)
		`), c.ID, c.Title, c.IsGroup, c.CreatedBy, c.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return chat_errors.ErrAlreadyExists
			}
			return fmt.Errorf("insert conversation: %w", err)
		}

		for i := range participants {
			participants[i].ConversationID = c.ID
			if err := r.insertParticipant(ctx, tx, &participants[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (conversation.Conversation, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.Rebind(`
		SELECT id, title, is_group, created_by, created_at
		FROM conversations
		WHERE id = ?
	`), id)
	c, err := scanConversation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return conversation.Conversation{}, chat_errors.NotFound("conversation not found")
		}
		return conversation.Conversation{}, err
	}
	return c, nil
}

func (r *SQLConversationRepository) GetUserConversations(ctx context.Context, userID uuid.UUID) ([]conversation.Conversation, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(`
		SELECT c.id, c.title, c.is_group, c.created_by, c.created_at
		FROM conversations c
		JOIN participants p ON p.conversation_id = c.id
		WHERE p.user_id = ?
	`), userID)
	if err != nil {
		return nil, fmt.Errorf("query user conversations: %w", err)
	}
	defer rows.Close()

	var out []conversation.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AddParticipant relies on the (conversation_id, user_id) primary key to
// reject duplicates, so concurrent adds of one user yield exactly one row.
func (r *SQLConversationRepository) AddParticipant(ctx context.Context, p *conversation.Participant) error {
	return r.insertParticipant(ctx, r.db, p)
}

func (r *SQLConversationRepository) insertParticipant(ctx context.Context, db DBTX, p *conversation.Participant) error {
	p.JoinedAt = dbTime(p.JoinedAt)
	_, err := db.ExecContext(ctx, r.dialect.Rebind(`
		INSERT INTO participants (conversation_id, user_id, role, joined_at)
		VALUES (?, ?, ?, ?)
	`), p.ConversationID, p.UserID, string(p.Role), p.JoinedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return chat_errors.Conflict("user is already a participant")
		case isForeignKeyViolation(err):
			return chat_errors.NotFound("user not found")
		}
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func (r *SQLConversationRepository) RemoveParticipant(ctx context.Context, conversationID, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(`
		DELETE FROM participants
		WHERE conversation_id = ? AND user_id = ?
	`), conversationID, userID)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return chat_errors.NotFound("participant not found")
	}
	return nil
}

func (r *SQLConversationRepository) GetParticipant(ctx context.Context, conversationID, userID uuid.UUID) (conversation.Participant, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.Rebind(participantSelect+`
		WHERE p.conversation_id = ? AND p.user_id = ?
	`), conversationID, userID)
	p, err := scanParticipant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return conversation.Participant{}, chat_errors.NotFound("participant not found")
		}
		return conversation.Participant{}, err
	}
	return p, nil
}

func (r *SQLConversationRepository) GetParticipants(ctx context.Context, conversationID uuid.UUID) ([]conversation.Participant, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(participantSelect+`
		WHERE p.conversation_id = ?
		ORDER BY p.joined_at ASC, p.role ASC, p.user_id ASC
	`), conversationID)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	var out []conversation.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLConversationRepository) IsParticipant(ctx context.Context, conversationID, userID uuid.UUID) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(`
		SELECT COUNT(1) FROM participants
		WHERE conversation_id = ? AND user_id = ?
	`), conversationID, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check participant: %w", err)
	}
	return n > 0, nil
}

const participantSelect = `
	SELECT p.conversation_id, p.user_id, p.role, p.joined_at,
	       u.name, u.email, u.avatar_url
	FROM participants p
	LEFT JOIN users u ON u.id = p.user_id
`

func scanConversation(row rowScanner) (conversation.Conversation, error) {
	var c conversation.Conversation
	if err := row.Scan(&c.ID, &c.Title, &c.IsGroup, &c.CreatedBy, &c.CreatedAt); err != nil {
		return conversation.Conversation{}, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

func scanParticipant(row rowScanner) (conversation.Participant, error) {
	var (
		p           conversation.Participant
		role        string
		name, email sql.NullString
	)
	if err := row.Scan(&p.ConversationID, &p.UserID, &role, &p.JoinedAt, &name, &email, &p.Profile.AvatarURL); err != nil {
		return conversation.Participant{}, err
	}
	p.Role = conversation.Role(role)
	p.JoinedAt = p.JoinedAt.UTC()
	p.Profile.ID = p.UserID
	p.Profile.Name = name.String
	p.Profile.Email = email.String
	return p, nil
}
