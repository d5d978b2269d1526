package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chat-service/internal/domain/user"
	chat_errors "chat-service/pkg/errors"

	"github.com/google/uuid"
)

type SQLUserRepository struct {
	db      DBTX
	dialect Dialect
}

func NewUserRepository(db DBTX, dialect Dialect) UserRepository {
	return &SQLUserRepository{db: db, dialect: dialect}
}

func (r *SQLUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.Rebind(`
		SELECT id, name, email, avatar_url, created_at
		FROM users
		WHERE id = ?
	`), id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, chat_errors.NotFound("user not found")
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *SQLUserRepository) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]user.User, error) {
	out := make(map[uuid.UUID]user.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := fmt.Sprintf(`
		SELECT id, name, email, avatar_url, created_at
		FROM users
		WHERE id IN (%s)
	`, buildPlaceholders(len(ids)))

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, rows.Err()
}

// UpsertUser mirrors a user-directory record into the local read model.
func (r *SQLUserRepository) UpsertUser(ctx context.Context, u user.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(`
		INSERT INTO users (id, name, email, avatar_url, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			avatar_url = excluded.avatar_url
	`), u.ID, u.Name, u.Email, u.AvatarURL, dbTime(u.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return chat_errors.Conflict("email already in use")
		}
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.AvatarURL, &u.CreatedAt); err != nil {
		return user.User{}, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}
