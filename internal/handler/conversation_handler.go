package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"chat-service/internal/commands"
	"chat-service/internal/services"
	"chat-service/internal/transport/httpdto"
	chat_errors "chat-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ConversationHandler struct {
	service *services.ConversationService
}

func NewConversationHandler(service *services.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

func (h *ConversationHandler) Create(c *gin.Context) {
	var req httpdto.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, chat_errors.Validation("invalid request body"))
		return
	}
	creatorID, ok := currentUser(c)
	if !ok {
		return
	}

	res, err := h.service.CreateConversation(c.Request.Context(), &commands.CreateConversationCommand{
		CreatorID:      creatorID,
		ParticipantIDs: req.ParticipantIDs,
		Title:          req.Title,
		IsGroup:        req.IsGroup,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.ConversationResponse{
		Conversation: httpdto.FromConversation(res),
	}))
}

func (h *ConversationHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.service.ListConversations(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListConversationsResponse{
		Conversations: httpdto.FromConversationSlice(items),
	}))
}

func (h *ConversationHandler) GetByID(c *gin.Context) {
	conversationID, ok := conversationParam(c)
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	item, err := h.service.GetConversation(c.Request.Context(), conversationID, userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ConversationResponse{
		Conversation: httpdto.FromConversation(item),
	}))
}

func (h *ConversationHandler) AddParticipant(c *gin.Context) {
	conversationID, ok := conversationParam(c)
	if !ok {
		return
	}
	targetID, ok := participantTarget(c)
	if !ok {
		return
	}
	actorID, ok := currentUser(c)
	if !ok {
		return
	}

	item, err := h.service.AddParticipant(c.Request.Context(), &commands.AddParticipantCommand{
		ConversationID: conversationID,
		UserID:         targetID,
		ActorID:        actorID,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ConversationResponse{
		Conversation: httpdto.FromConversation(item),
	}))
}

func (h *ConversationHandler) RemoveParticipant(c *gin.Context) {
	conversationID, ok := conversationParam(c)
	if !ok {
		return
	}
	targetID, ok := participantTarget(c)
	if !ok {
		return
	}
	actorID, ok := currentUser(c)
	if !ok {
		return
	}

	err := h.service.RemoveParticipant(c.Request.Context(), &commands.RemoveParticipantCommand{
		ConversationID: conversationID,
		UserID:         targetID,
		ActorID:        actorID,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

// participantTarget reads userId from the JSON body, falling back to the
// query string for clients that cannot send a body with DELETE.
func participantTarget(c *gin.Context) (uuid.UUID, bool) {
	var req httpdto.ParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, chat_errors.Validation("invalid request body"))
		return uuid.Nil, false
	}
	raw := strings.TrimSpace(req.UserID)
	if raw == "" {
		raw = strings.TrimSpace(c.Query("userId"))
	}
	if raw == "" {
		fail(c, chat_errors.Validation("userId is required"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		fail(c, chat_errors.Validation("invalid userId"))
		return uuid.Nil, false
	}
	return id, true
}
