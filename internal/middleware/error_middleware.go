package middleware

import (
	"chat-service/internal/transport/httpdto"
	chat_errors "chat-service/pkg/errors"
	"chat-service/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error a handler attached with c.Error. The
// status comes from the error kind; untagged errors become a generic 500 and
// are logged with their detail.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		kind := chat_errors.KindOf(err)
		if l != nil {
			log := l.WithContext(c.Request.Context())
			if kind == chat_errors.KindInternal {
				log.Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
			} else {
				log.Debugf("%s %s rejected (%s): %v", c.Request.Method, c.FullPath(), kind, err)
			}
		}
		c.JSON(chat_errors.HTTPStatus(err), httpdto.FromError(err))
	}
}
