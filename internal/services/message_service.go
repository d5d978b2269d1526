package services

import (
	"context"
	"strconv"

	"chat-service/internal/commands"
	"chat-service/internal/domain/message"
	"chat-service/internal/events"
	"chat-service/internal/metrics"
	"chat-service/internal/pagination"
	"chat-service/internal/proxy"
	"chat-service/internal/repository"
	chat_errors "chat-service/pkg/errors"
	"chat-service/pkg/logger"

	"github.com/google/uuid"
)

// MessagePage is one page of history, newest first. NextCursor is set only
// when HasMore is true.
type MessagePage struct {
	Messages   []message.Message
	NextCursor *string
	HasMore    bool
}

type MessageService struct {
	msgRepo  repository.MessageRepository
	convRepo repository.ConversationRepository
	access   *proxy.AccessControl
	logger   *logger.Logger
	emitter
}

func NewMessageService(
	msgRepo repository.MessageRepository,
	convRepo repository.ConversationRepository,
	access *proxy.AccessControl,
	notifier events.Notifier,
	l *logger.Logger,
) *MessageService {
	em := newEmitter(notifier, l)
	return &MessageService{
		msgRepo:  msgRepo,
		convRepo: convRepo,
		access:   access,
		logger:   em.logger,
		emitter:  em,
	}
}

// SendMessage stores the message with a storage-assigned id. Sending to a
// conversation that does not exist is reported as Forbidden.
func (s *MessageService) SendMessage(ctx context.Context, cmd *commands.SendMessageCommand) (message.Message, error) {
	if err := cmd.Validate(); err != nil {
		return message.Message{}, err
	}
	if err := s.access.CanSendMessage(ctx, cmd.SenderID, cmd.ConversationID); err != nil {
		return message.Message{}, err
	}

	now := s.now()
	m := message.Message{
		ConversationID:   cmd.ConversationID,
		SenderID:         uuid.NullUUID{UUID: cmd.SenderID, Valid: true},
		Content:          cmd.Content,
		Attachments:      cmd.Attachments,
		Status:           message.StatusSent,
		StatusTimestamps: message.StatusTimestamps{message.StatusSent: now},
		CreatedAt:        now,
	}
	if m.Attachments == nil {
		m.Attachments = []message.Attachment{}
	}

	writeCtx := context.WithoutCancel(ctx)
	if err := s.msgRepo.Create(writeCtx, &m); err != nil {
		return message.Message{}, err
	}
	metrics.MessageOperations.WithLabelValues("send").Inc()

	created, err := s.msgRepo.GetByID(writeCtx, m.ID)
	if err != nil {
		return message.Message{}, err
	}
	s.notifyMessage(ctx, events.EventTypeMessageCreated, created)
	return created, nil
}

func (s *MessageService) GetMessages(ctx context.Context, q *commands.ListMessagesQuery) (MessagePage, error) {
	if err := q.Validate(); err != nil {
		return MessagePage{}, err
	}
	if err := s.access.CanViewConversation(ctx, q.RequesterID, q.ConversationID); err != nil {
		return MessagePage{}, err
	}

	beforeID, limit := q.Page()
	rows, err := s.msgRepo.GetConversationMessages(ctx, q.ConversationID, beforeID, limit+1)
	if err != nil {
		return MessagePage{}, err
	}

	page := MessagePage{Messages: rows}
	if len(rows) > limit {
		page.Messages = rows[:limit]
		page.HasMore = true
		next := pagination.Encode(page.Messages[limit-1].ID)
		page.NextCursor = &next
	}
	return page, nil
}

func (s *MessageService) UpdateMessage(ctx context.Context, cmd *commands.EditMessageCommand) (message.Message, error) {
	if err := cmd.Validate(); err != nil {
		return message.Message{}, err
	}
	m, err := s.rewrite(ctx, cmd.MessageID, cmd.RequesterID, cmd.Content)
	if err != nil {
		return message.Message{}, err
	}
	metrics.MessageOperations.WithLabelValues("edit").Inc()
	s.notifyMessage(ctx, events.EventTypeMessageUpdated, m)
	return m, nil
}

// DeleteMessage replaces the content with the tombstone. Repeating it leaves
// the same content but moves editedAt forward.
func (s *MessageService) DeleteMessage(ctx context.Context, cmd *commands.DeleteMessageCommand) (message.Message, error) {
	if err := cmd.Validate(); err != nil {
		return message.Message{}, err
	}
	m, err := s.rewrite(ctx, cmd.MessageID, cmd.RequesterID, message.Tombstone)
	if err != nil {
		return message.Message{}, err
	}
	metrics.MessageOperations.WithLabelValues("delete").Inc()
	s.notifyMessage(ctx, events.EventTypeMessageDeleted, m)
	return m, nil
}

// rewrite replaces the content of a message owned by requesterID.
func (s *MessageService) rewrite(ctx context.Context, messageID int64, requesterID uuid.UUID, content string) (message.Message, error) {
	m, err := s.msgRepo.GetByID(ctx, messageID)
	if err != nil {
		return message.Message{}, err
	}
	if !m.SentBy(requesterID) {
		return message.Message{}, chat_errors.Forbidden("only the sender can modify this message")
	}

	writeCtx := context.WithoutCancel(ctx)
	if err := s.msgRepo.UpdateContent(writeCtx, messageID, content, s.now()); err != nil {
		return message.Message{}, err
	}
	return s.msgRepo.GetByID(writeCtx, messageID)
}

func (s *MessageService) notifyMessage(ctx context.Context, eventType string, m message.Message) {
	participants, err := s.convRepo.GetParticipants(context.WithoutCancel(ctx), m.ConversationID)
	if err != nil {
		metrics.NotificationFailures.WithLabelValues(eventType).Inc()
		s.logger.WithContext(ctx).Errorf("failed to resolve recipients for %s: %v", eventType, err)
		return
	}
	recipients := make([]uuid.UUID, 0, len(participants))
	for _, p := range participants {
		recipients = append(recipients, p.UserID)
	}
	s.emit(ctx, recipients, eventType, events.AggregateTypeMessage,
		strconv.FormatInt(m.ID, 10), m.ConversationID, events.NewMessagePayload(m))
}
