package middleware

import (
	"github.com/gin-gonic/gin"

	"legalai-assistant/internal/store"
)

const (
	SessionHeader       = "X-Session-ID"
	ContextSessionIDKey = "session_id"
)

// EnsureSession resolves the caller's session from the X-Session-ID header.
// A missing or unknown id mints a fresh session; the resolved id is always
// echoed back on the response header so the client can carry it forward.
func EnsureSession(sessions *store.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionHeader)
		if sessionID != "" {
			if _, ok := sessions.Get(sessionID); !ok {
				sessionID = ""
			}
		}
		if sessionID == "" {
			sessionID = sessions.Create()
		}

		c.Header(SessionHeader, sessionID)
		c.Set(ContextSessionIDKey, sessionID)
		c.Next()
	}
}

// SessionID returns the session id resolved by EnsureSession.
func SessionID(c *gin.Context) string {
	id, _ := c.Get(ContextSessionIDKey)
	sessionID, _ := id.(string)
	return sessionID
}
