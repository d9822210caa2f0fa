package auth

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
)

// cookieCommitter holds back the first header write of a response until the
// session has been saved and its cookie set. Register and login renew the
// token and logout destroys it, so the cookie has to follow whatever the
// handler did to the session.
type cookieCommitter struct {
	gin.ResponseWriter
	sessions *SessionManager
	ctx      context.Context
	once     sync.Once
}

func (w *cookieCommitter) WriteHeader(code int) {
	w.commit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *cookieCommitter) WriteHeaderNow() {
	w.commit()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *cookieCommitter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

func (w *cookieCommitter) WriteString(s string) (int, error) {
	w.commit()
	return w.ResponseWriter.WriteString(s)
}

// commit saves a modified session and sets or clears the cookie. Runs once.
func (w *cookieCommitter) commit() {
	w.once.Do(func() {
		switch w.sessions.Status(w.ctx) {
		case scs.Modified:
			token, expiry, err := w.sessions.Commit(w.ctx)
			if err != nil {
				log.Printf("Failed to commit session: %v", err)
				return
			}
			w.sessions.WriteSessionCookie(w.ctx, w.ResponseWriter, token, expiry)
		case scs.Destroyed:
			w.sessions.WriteSessionCookie(w.ctx, w.ResponseWriter, "", time.Time{})
		}
	})
}

// LoadAndSaveSession loads the session named by the request cookie into the
// request context and persists it when the handler responds. Mount it before
// any route that reads or changes the session.
func (sm *SessionManager) LoadAndSaveSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		if cookie, err := c.Request.Cookie(sm.Cookie.Name); err == nil {
			token = cookie.Value
		}

		ctx, err := sm.Load(c.Request.Context(), token)
		if err != nil {
			log.Printf("Failed to load session: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
			return
		}
		c.Request = c.Request.WithContext(ctx)

		w := &cookieCommitter{ResponseWriter: c.Writer, sessions: sm, ctx: ctx}
		c.Writer = w

		c.Next()

		// Handlers that only set a status leave the header unwritten
		if !w.Written() {
			w.commit()
		}
	}
}
