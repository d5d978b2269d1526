package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"chat-service/internal/domain/conversation"
	"chat-service/internal/domain/message"
	"chat-service/internal/domain/user"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := RunMigrations(context.Background(), db, DialectSQLite, nil); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	return db
}

type fixture struct {
	db            *sql.DB
	users         UserRepository
	conversations ConversationRepository
	messages      MessageRepository
}

func newFixture(t *testing.T) *fixture {
	db := testDB(t)
	return &fixture{
		db:            db,
		users:         NewUserRepository(db, DialectSQLite),
		conversations: NewConversationRepository(db, DialectSQLite),
		messages:      NewMessageRepository(db, DialectSQLite),
	}
}

func (f *fixture) user(t *testing.T, name string) user.User {
	t.Helper()
	u := user.User{ID: uuid.New(), Name: name, Email: name + "@example.com", CreatedAt: time.Now()}
	if err := f.users.UpsertUser(context.Background(), u); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	return u
}

func (f *fixture) conversation(t *testing.T, admin uuid.UUID, members ...uuid.UUID) conversation.Conversation {
	t.Helper()
	now := time.Now()
	c := conversation.Conversation{ID: uuid.New(), CreatedBy: admin, IsGroup: len(members) > 1, CreatedAt: now}
	parts := []conversation.Participant{{UserID: admin, Role: conversation.RoleAdmin, JoinedAt: now}}
	for _, m := range members {
		parts = append(parts, conversation.Participant{UserID: m, Role: conversation.RoleMember, JoinedAt: now})
	}
	if err := f.conversations.CreateWithParticipants(context.Background(), &c, parts); err != nil {
		t.Fatalf("CreateWithParticipants: %v", err)
	}
	return c
}

func (f *fixture) message(t *testing.T, conversationID, sender uuid.UUID, content string, at time.Time) message.Message {
	t.Helper()
	m := message.Message{
		ConversationID:   conversationID,
		SenderID:         uuid.NullUUID{UUID: sender, Valid: true},
		Content:          content,
		Status:           message.StatusSent,
		StatusTimestamps: message.StatusTimestamps{message.StatusSent: at},
		CreatedAt:        at,
	}
	if err := f.messages.Create(context.Background(), &m); err != nil {
		t.Fatalf("Create message: %v", err)
	}
	return m
}
