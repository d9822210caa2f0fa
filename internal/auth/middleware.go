package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MessageNoSession is returned by the login guard when the request carries no login.
const MessageNoSession = "No user is logged in"

// Context keys for user data
const (
	ContextKeyUserID    = "auth_user_id"
	ContextKeyUsername  = "auth_username"
	ContextKeyRequestID = "request_id"
)

// HeaderRequestID is echoed back on every response.
const HeaderRequestID = "X-Request-ID"

// Guard rejects requests that do not carry a logged-in session.
type Guard struct {
	sessions *SessionManager
}

// NewGuard creates a login guard backed by the session manager.
func NewGuard(sessions *SessionManager) *Guard {
	return &Guard{sessions: sessions}
}

// RequireLogin returns a middleware that lets the request through only when
// the session is marked logged in. The user id and name are copied into the
// gin context for handlers.
func (g *Guard) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		data := g.sessions.GetSessionData(c.Request)
		if data == nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": MessageNoSession})
			return
		}

		c.Set(ContextKeyUserID, data.UserID)
		c.Set(ContextKeyUsername, data.Username)
		c.Next()
	}
}

// RequestIDMiddleware tags every request with an id, reusing a client-supplied
// X-Request-ID when present.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)
		c.Next()
	}
}

// Helper functions to extract auth data from Gin context

// GetUserID retrieves the logged-in user's ID from the context.
// Returns 0 outside the login guard.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}

// GetUsername retrieves the logged-in user's name from the context.
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextKeyUsername)
}

// GetRequestID retrieves the id assigned by RequestIDMiddleware.
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}
