package websocket

import (
	"context"
	"net/http"
	"strings"

	"chat-service/internal/transport/httpdto"
	chat_errors "chat-service/pkg/errors"
	"chat-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Authenticator resolves a bearer credential to a user id.
type Authenticator interface {
	Authenticate(token string) (uuid.UUID, error)
}

type Handler struct {
	auth     Authenticator
	hub      *Hub
	logger   *logger.Logger
	upgrader websocket.Upgrader
}

func NewHandler(auth Authenticator, hub *Hub, l *logger.Logger) *Handler {
	return &Handler{
		auth:   auth,
		hub:    hub,
		logger: l,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Connect upgrades an authenticated request and streams the user's events
// until the peer disconnects. Browsers cannot set headers on websocket
// requests, so the token may also come from the query string.
func (h *Handler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = bearerToken(c.GetHeader("Authorization"))
	}
	userID, err := h.auth.Authenticate(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", chat_errors.KindUnauthorized))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warnf("websocket upgrade failed for user %s: %v", userID, err)
		return
	}

	client := NewClient(conn, userID.String())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !h.hub.Register(client) {
		_ = conn.Close()
		return
	}
	h.logger.Debugf("websocket connected: user=%s conn=%s", client.UserID, client.ID)
	go client.WriteLoop(ctx)

	client.ReadLoop()

	h.hub.Unregister(client)
	h.logger.Debugf("websocket disconnected: user=%s conn=%s", client.UserID, client.ID)
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
