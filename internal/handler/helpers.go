package handler

import (
	"strconv"

	"chat-service/internal/services"
	chat_errors "chat-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// fail hands err to the error middleware, which picks the status from its kind.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		fail(c, chat_errors.ErrUnauthorized)
	}
	return userID, ok
}

func conversationParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, chat_errors.Validation("invalid conversation id"))
		return uuid.Nil, false
	}
	return id, true
}

func messageParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, chat_errors.Validation("invalid message id"))
		return 0, false
	}
	return id, true
}

func parseLimit(value string) (*int, error) {
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, chat_errors.Validation("limit must be an integer")
	}
	return &n, nil
}
