package proxy

import (
	"context"

	"chat-service/internal/domain/conversation"
	"chat-service/internal/repository"
	chat_errors "chat-service/pkg/errors"

	"github.com/google/uuid"
)

// AccessControl answers membership questions for the services. Every check
// returns nil or a kind-tagged error.
type AccessControl struct {
	conversationRepo repository.ConversationRepository
}

func NewAccessControl(conversationRepo repository.ConversationRepository) *AccessControl {
	return &AccessControl{conversationRepo: conversationRepo}
}

func (a *AccessControl) CanSendMessage(ctx context.Context, userID, conversationID uuid.UUID) error {
	return a.ensureParticipant(ctx, conversationID, userID)
}

func (a *AccessControl) CanViewConversation(ctx context.Context, userID, conversationID uuid.UUID) error {
	return a.ensureParticipant(ctx, conversationID, userID)
}

// CanManageGroup requires the admin role; non-participants are forbidden too.
func (a *AccessControl) CanManageGroup(ctx context.Context, userID, conversationID uuid.UUID) error {
	if a.conversationRepo == nil {
		return chat_errors.ErrForbidden
	}
	participant, err := a.conversationRepo.GetParticipant(ctx, conversationID, userID)
	if err != nil {
		if chat_errors.KindOf(err) == chat_errors.KindNotFound {
			return chat_errors.Forbidden("only admins can manage participants")
		}
		return err
	}
	if participant.Role != conversation.RoleAdmin {
		return chat_errors.Forbidden("only admins can manage participants")
	}
	return nil
}

func (a *AccessControl) ensureParticipant(ctx context.Context, conversationID, userID uuid.UUID) error {
	if a.conversationRepo == nil {
		return chat_errors.ErrForbidden
	}
	ok, err := a.conversationRepo.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return chat_errors.Forbidden("not a participant of this conversation")
	}
	return nil
}
