package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"chat-service/internal/domain/conversation"
	"chat-service/internal/domain/message"
	"chat-service/internal/domain/user"
	"chat-service/pkg/logger"
)

// SchemaVersion is the newest version known to this build.
const SchemaVersion = 2

type migration struct {
	Version     int
	Description string
	Postgres    string
	SQLite      string
}

func (m migration) statements(d Dialect) []string {
	src := m.SQLite
	if d == DialectPostgres {
		src = m.Postgres
	}
	var out []string
	for _, stmt := range strings.Split(src, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// migrations are applied in order, once each, tracked in schema_version.
var migrations = []migration{
	{
		Version:     1,
		Description: "users, conversations, participants, messages",
		Postgres: `
		CREATE TABLE IF NOT EXISTS users (
			id          UUID PRIMARY KEY,
			name        TEXT NOT NULL,
			email       TEXT NOT NULL,
			avatar_url  TEXT,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS conversations (
			id          UUID PRIMARY KEY,
			title       TEXT,
			is_group    BOOLEAN NOT NULL DEFAULT FALSE,
			created_by  UUID NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS participants (
			conversation_id UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			user_id         UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			role            TEXT NOT NULL CHECK (role IN ('admin', 'member')),
			joined_at       TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (conversation_id, user_id)
		);
		CREATE INDEX IF NOT EXISTS idx_participants_user ON participants(user_id);

		CREATE TABLE IF NOT EXISTS messages (
			id                BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			conversation_id   UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			sender_id         UUID REFERENCES users(id) ON DELETE SET NULL,
			content           TEXT NOT NULL,
			attachments       JSONB NOT NULL DEFAULT '[]',
			status            TEXT NOT NULL DEFAULT 'sent',
			status_timestamps JSONB NOT NULL DEFAULT '{}',
			created_at        TIMESTAMPTZ NOT NULL,
			edited_at         TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, id DESC)
		`,
		SQLite: `
		CREATE TABLE IF NOT EXISTS users (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			email       TEXT NOT NULL,
			avatar_url  TEXT,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS conversations (
			id          TEXT PRIMARY KEY,
			title       TEXT,
			is_group    BOOLEAN NOT NULL DEFAULT 0,
			created_by  TEXT NOT NULL,
			created_at  DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS participants (
			conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			user_id         TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			role            TEXT NOT NULL CHECK (role IN ('admin', 'member')),
			joined_at       DATETIME NOT NULL,
			PRIMARY KEY (conversation_id, user_id)
		);
		CREATE INDEX IF NOT EXISTS idx_participants_user ON participants(user_id);

		CREATE TABLE IF NOT EXISTS messages (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			conversation_id   TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			sender_id         TEXT REFERENCES users(id) ON DELETE SET NULL,
			content           TEXT NOT NULL,
			attachments       TEXT NOT NULL DEFAULT '[]',
			status            TEXT NOT NULL DEFAULT 'sent',
			status_timestamps TEXT NOT NULL DEFAULT '{}',
			created_at        DATETIME NOT NULL,
			edited_at         DATETIME
		);
		CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, id DESC)
		`,
	},
	{
		Version:     2,
		Description: "unique user email",
		Postgres:    `CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		SQLite:      `CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
	},
}

// RunMigrations brings the schema up to SchemaVersion.
func RunMigrations(ctx context.Context, db *sql.DB, dialect Dialect, l *logger.Logger) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version     INTEGER PRIMARY KEY,
			description TEXT,
			applied_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	current, err := CurrentSchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if l != nil {
			l.Infof("applying migration v%d: %s", m.Version, m.Description)
		}
		err := WithTx(ctx, db, func(tx DBTX) error {
			for _, stmt := range m.statements(dialect) {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("migration v%d: %w", m.Version, err)
				}
			}
			_, err := tx.ExecContext(ctx,
				dialect.Rebind("INSERT INTO schema_version (version, description) VALUES (?, ?)"),
				m.Version, m.Description,
			)
			if err != nil {
				return fmt.Errorf("record migration v%d: %w", m.Version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// CurrentSchemaVersion returns the highest applied version, 0 for a fresh database.
func CurrentSchemaVersion(ctx context.Context, db DBTX) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("query schema version: %w", err)
	}
	return version, nil
}

// ManagedTables lists the tables this service reads and writes.
func ManagedTables() []string {
	return []string{
		user.User{}.TableName(),
		conversation.Conversation{}.TableName(),
		conversation.Participant{}.TableName(),
		message.Message{}.TableName(),
	}
}

// TableCounts returns the row count of every managed table.
func TableCounts(ctx context.Context, db DBTX) (map[string]int64, error) {
	counts := make(map[string]int64, len(ManagedTables()))
	for _, table := range ManagedTables() {
		var n int64
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
