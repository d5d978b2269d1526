package services

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"chat-service/internal/commands"
	"chat-service/internal/domain/conversation"
	"chat-service/internal/domain/message"
	"chat-service/internal/events"
	"chat-service/internal/metrics"
	"chat-service/internal/proxy"
	"chat-service/internal/repository"
	chat_errors "chat-service/pkg/errors"
	"chat-service/pkg/logger"

	"github.com/google/uuid"
)

// ConversationDetails is a conversation with its profile-joined participants
// and, when any exists, its highest-id message.
type ConversationDetails struct {
	Conversation conversation.Conversation
	Participants []conversation.Participant
	LastMessage  *message.Message
}

// ParticipantIDs returns the user ids of all participants.
func (d ConversationDetails) ParticipantIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(d.Participants))
	for _, p := range d.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}

// activity is the time the list ordering sorts on.
func (d ConversationDetails) activity() time.Time {
	if d.LastMessage != nil {
		return d.LastMessage.CreatedAt
	}
	return d.Conversation.CreatedAt
}

type ConversationService struct {
	convRepo repository.ConversationRepository
	msgRepo  repository.MessageRepository
	userRepo repository.UserRepository
	access   *proxy.AccessControl
	logger   *logger.Logger
	emitter
}

func NewConversationService(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	access *proxy.AccessControl,
	notifier events.Notifier,
	l *logger.Logger,
) *ConversationService {
	em := newEmitter(notifier, l)
	return &ConversationService{
		convRepo: convRepo,
		msgRepo:  msgRepo,
		userRepo: userRepo,
		access:   access,
		logger:   em.logger,
		emitter:  em,
	}
}

// CreateConversation persists the conversation and every participant row in
// one transaction. The creator becomes admin, everyone else a member.
func (s *ConversationService) CreateConversation(ctx context.Context, cmd *commands.CreateConversationCommand) (ConversationDetails, error) {
	if err := cmd.Validate(); err != nil {
		return ConversationDetails{}, err
	}

	members := cmd.Members()
	users, err := s.userRepo.GetUsersByIDs(ctx, members)
	if err != nil {
		return ConversationDetails{}, err
	}
	for _, id := range members {
		if _, ok := users[id]; !ok {
			return ConversationDetails{}, chat_errors.Newf(chat_errors.KindNotFound, "user %s not found", id)
		}
	}

	now := s.now()
	conv := conversation.Conversation{
		ID:        uuid.New(),
		IsGroup:   cmd.IsGroup,
		CreatedBy: cmd.CreatorID,
		CreatedAt: now,
	}
	if cmd.Title != nil {
		conv.Title = sql.NullString{String: *cmd.Title, Valid: true}
	}

	participants := make([]conversation.Participant, 0, len(members))
	for _, id := range members {
		role := conversation.RoleMember
		if id == cmd.CreatorID {
			role = conversation.RoleAdmin
		}
		participants = append(participants, conversation.Participant{
			UserID:   id,
			Role:     role,
			JoinedAt: now,
			Profile:  users[id].Profile(),
		})
	}

	if err := s.convRepo.CreateWithParticipants(context.WithoutCancel(ctx), &conv, participants); err != nil {
		return ConversationDetails{}, err
	}
	metrics.ConversationsCreated.Inc()
	s.logger.WithContext(ctx).Infof("conversation %s created with %d participants", conv.ID, len(participants))

	details := ConversationDetails{Conversation: conv, Participants: participants}
	s.emit(ctx, members, events.EventTypeConversationCreated, events.AggregateTypeConversation,
		conv.ID.String(), conv.ID, events.NewConversationPayload(conv, participants))
	return details, nil
}

func (s *ConversationService) GetConversation(ctx context.Context, conversationID, requesterID uuid.UUID) (ConversationDetails, error) {
	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return ConversationDetails{}, err
	}
	if err := s.access.CanViewConversation(ctx, requesterID, conversationID); err != nil {
		return ConversationDetails{}, err
	}
	return s.loadDetails(ctx, conv)
}

// ListConversations returns the user's conversations, most recently active
// first. Activity is the last message's creation time, or the conversation's
// own when it has no messages; ties fall back to the higher conversation id.
func (s *ConversationService) ListConversations(ctx context.Context, userID uuid.UUID) ([]ConversationDetails, error) {
	convs, err := s.convRepo.GetUserConversations(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.ID)
	}
	last, err := s.msgRepo.GetLastMessages(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]ConversationDetails, 0, len(convs))
	for _, c := range convs {
		participants, err := s.convRepo.GetParticipants(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		d := ConversationDetails{Conversation: c, Participants: participants}
		if m, ok := last[c.ID]; ok {
			d.LastMessage = &m
		}
		out = append(out, d)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := out[i].activity(), out[j].activity()
		if !ai.Equal(aj) {
			return ai.After(aj)
		}
		return out[i].Conversation.ID.String() > out[j].Conversation.ID.String()
	})
	return out, nil
}

func (s *ConversationService) AddParticipant(ctx context.Context, cmd *commands.AddParticipantCommand) (ConversationDetails, error) {
	if err := cmd.Validate(); err != nil {
		return ConversationDetails{}, err
	}
	conv, err := s.convRepo.GetByID(ctx, cmd.ConversationID)
	if err != nil {
		return ConversationDetails{}, err
	}
	if err := s.access.CanManageGroup(ctx, cmd.ActorID, cmd.ConversationID); err != nil {
		return ConversationDetails{}, err
	}
	if _, err := s.userRepo.GetUserByID(ctx, cmd.UserID); err != nil {
		return ConversationDetails{}, err
	}

	// The primary key decides concurrent adds of the same user.
	writeCtx := context.WithoutCancel(ctx)
	err = s.convRepo.AddParticipant(writeCtx, &conversation.Participant{
		ConversationID: cmd.ConversationID,
		UserID:         cmd.UserID,
		Role:           conversation.RoleMember,
		JoinedAt:       s.now(),
	})
	if err != nil {
		return ConversationDetails{}, err
	}
	metrics.ParticipantChanges.WithLabelValues("added").Inc()

	details, err := s.loadDetails(writeCtx, conv)
	if err != nil {
		return ConversationDetails{}, err
	}
	s.emit(ctx, details.ParticipantIDs(), events.EventTypeParticipantAdded, events.AggregateTypeParticipant,
		cmd.UserID.String(), conv.ID, events.NewParticipantPayload(conv.ID, cmd.UserID, cmd.ActorID, conversation.RoleMember))
	return details, nil
}

// RemoveParticipant lets admins remove anyone and members remove themselves.
// Nothing protects the last admin.
func (s *ConversationService) RemoveParticipant(ctx context.Context, cmd *commands.RemoveParticipantCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if _, err := s.convRepo.GetByID(ctx, cmd.ConversationID); err != nil {
		return err
	}
	if !cmd.IsSelfRemoval() {
		if err := s.access.CanManageGroup(ctx, cmd.ActorID, cmd.ConversationID); err != nil {
			return err
		}
	}

	participants, err := s.convRepo.GetParticipants(ctx, cmd.ConversationID)
	if err != nil {
		return err
	}
	if err := s.convRepo.RemoveParticipant(context.WithoutCancel(ctx), cmd.ConversationID, cmd.UserID); err != nil {
		return err
	}
	metrics.ParticipantChanges.WithLabelValues("removed").Inc()

	eventType := events.EventTypeParticipantRemoved
	if cmd.IsSelfRemoval() {
		eventType = events.EventTypeParticipantLeft
	}
	recipients := make([]uuid.UUID, 0, len(participants)+1)
	removedListed := false
	for _, p := range participants {
		recipients = append(recipients, p.UserID)
		removedListed = removedListed || p.UserID == cmd.UserID
	}
	if !removedListed {
		recipients = append(recipients, cmd.UserID)
	}
	s.emit(ctx, recipients, eventType, events.AggregateTypeParticipant,
		cmd.UserID.String(), cmd.ConversationID, events.NewParticipantPayload(cmd.ConversationID, cmd.UserID, cmd.ActorID, ""))
	return nil
}

func (s *ConversationService) loadDetails(ctx context.Context, conv conversation.Conversation) (ConversationDetails, error) {
	participants, err := s.convRepo.GetParticipants(ctx, conv.ID)
	if err != nil {
		return ConversationDetails{}, err
	}
	last, err := s.msgRepo.GetLastMessages(ctx, []uuid.UUID{conv.ID})
	if err != nil {
		return ConversationDetails{}, err
	}
	d := ConversationDetails{Conversation: conv, Participants: participants}
	if m, ok := last[conv.ID]; ok {
		d.LastMessage = &m
	}
	return d, nil
}
