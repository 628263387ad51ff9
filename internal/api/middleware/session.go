package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionHeader = "X-Session-ID"
	SessionKey    = "session_id"
)

// SessionID resolves the session of a request from the X-Session-ID header,
// issuing a new id when the header is absent. The id is echoed back.
func SessionID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(SessionHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(SessionKey, id)
		c.Header(SessionHeader, id)
		c.Next()
	}
}
