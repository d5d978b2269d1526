package handler

import (
	"net/http"

	"chat-service/internal/commands"
	"chat-service/internal/services"
	"chat-service/internal/transport/httpdto"
	chat_errors "chat-service/pkg/errors"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	service *services.MessageService
}

func NewMessageHandler(service *services.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) Send(c *gin.Context) {
	conversationID, ok := conversationParam(c)
	if !ok {
		return
	}
	var req httpdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, chat_errors.Validation("invalid request body"))
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), &commands.SendMessageCommand{
		ConversationID: conversationID,
		SenderID:       userID,
		Content:        req.Content,
		Attachments:    req.Attachments,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.MessageResponse{Message: httpdto.FromMessage(msg)}))
}

func (h *MessageHandler) List(c *gin.Context) {
	conversationID, ok := conversationParam(c)
	if !ok {
		return
	}
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		fail(c, err)
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	page, err := h.service.GetMessages(c.Request.Context(), &commands.ListMessagesQuery{
		ConversationID: conversationID,
		RequesterID:    userID,
		Cursor:         c.Query("cursor"),
		Limit:          limit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromMessagePage(page)))
}

func (h *MessageHandler) Update(c *gin.Context) {
	messageID, ok := messageParam(c)
	if !ok {
		return
	}
	var req httpdto.UpdateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, chat_errors.Validation("invalid request body"))
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	msg, err := h.service.UpdateMessage(c.Request.Context(), &commands.EditMessageCommand{
		MessageID:   messageID,
		RequesterID: userID,
		Content:     req.Content,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.MessageResponse{Message: httpdto.FromMessage(msg)}))
}

func (h *MessageHandler) Delete(c *gin.Context) {
	messageID, ok := messageParam(c)
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	msg, err := h.service.DeleteMessage(c.Request.Context(), &commands.DeleteMessageCommand{
		MessageID:   messageID,
		RequesterID: userID,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.MessageResponse{Message: httpdto.FromMessage(msg)}))
}
