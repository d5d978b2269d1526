package middleware

import (
	"strings"

	"chat-service/internal/services"
	"chat-service/internal/transport/httpdto"
	chat_errors "chat-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Authenticator resolves a bearer credential to a user id.
type Authenticator interface {
	Authenticate(token string) (uuid.UUID, error)
}

// AuthMiddleware rejects the request before any handler runs when the bearer
// token does not resolve to a user.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := auth.Authenticate(extractBearer(c))
		if err != nil {
			c.AbortWithStatusJSON(chat_errors.HTTPStatus(chat_errors.ErrUnauthorized),
				httpdto.NewErrorResponse("unauthorized", chat_errors.KindUnauthorized))
			return
		}

		ctx := services.WithUserContext(c.Request.Context(), userID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	value := c.GetHeader("Authorization")
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
