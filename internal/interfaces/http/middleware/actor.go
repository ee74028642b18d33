package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/erp/ledger/internal/infrastructure/logger"
)

const (
	// UserIDHeader identifies the acting user
	UserIDHeader = "X-User-ID"
	// UserNameHeader carries the acting user's display name
	UserNameHeader = "X-User-Name"

	maxActorLength = 128
)

// Actor copies the acting user from request headers into the request
// context. Identity is trusted as given; authentication happens upstream.
// It must run after logger.RequestLogger so the actor reaches log lines.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := clip(c.GetHeader(UserIDHeader))
		name := clip(c.GetHeader(UserNameHeader))
		if id != "" || name != "" {
			c.Request = c.Request.WithContext(logger.WithActor(c.Request.Context(), id, name))
		}
		c.Next()
	}
}

func clip(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxActorLength {
		s = s[:maxActorLength]
	}
	return s
}
