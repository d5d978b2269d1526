package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"chat-service/internal/domain/user"
	"chat-service/internal/events"
	"chat-service/internal/proxy"
	"chat-service/internal/repository"
	"chat-service/pkg/logger"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type notification struct {
	recipients []uuid.UUID
	env        events.Envelope
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, recipients []uuid.UUID, env events.Envelope) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{recipients: recipients, env: env})
	return n.err
}

func (n *recordingNotifier) last(t *testing.T) notification {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		t.Fatal("no notification sent")
	}
	return n.sent[len(n.sent)-1]
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type env struct {
	db            *sql.DB
	users         repository.UserRepository
	conversations *ConversationService
	messages      *MessageService
	notifier      *recordingNotifier
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "chat.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := repository.RunMigrations(context.Background(), db, repository.DialectSQLite, nil); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}

	userRepo := repository.NewUserRepository(db, repository.DialectSQLite)
	convRepo := repository.NewConversationRepository(db, repository.DialectSQLite)
	msgRepo := repository.NewMessageRepository(db, repository.DialectSQLite)
	access := proxy.NewAccessControl(convRepo)
	notifier := &recordingNotifier{}
	l := logger.NewNop()

	return &env{
		db:            db,
		users:         userRepo,
		conversations: NewConversationService(convRepo, msgRepo, userRepo, access, notifier, l),
		messages:      NewMessageService(msgRepo, convRepo, access, notifier, l),
		notifier:      notifier,
	}
}

func (e *env) user(t *testing.T, name string) uuid.UUID {
	t.Helper()
	u := user.User{ID: uuid.New(), Name: name, Email: name + "@example.com", CreatedAt: time.Now()}
	if err := e.users.UpsertUser(context.Background(), u); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	return u.ID
}
