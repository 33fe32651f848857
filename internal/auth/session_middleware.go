package auth

import (
	"bufio"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
)

// SessionLoadSave loads the session named by the request cookie and commits
// it before the first byte of the response. Admin handlers set flash
// messages and then redirect, so the cookie has to be on the redirect.
func (sm *SessionManager) SessionLoadSave() gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		if cookie, err := c.Request.Cookie(sm.Cookie.Name); err == nil {
			token = cookie.Value
		}

		ctx, err := sm.Load(c.Request.Context(), token)
		if err != nil {
			log.Printf("Failed to load session: %v", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Request = c.Request.WithContext(ctx)

		w := &committingWriter{ResponseWriter: c.Writer, sm: sm, request: c.Request}
		c.Writer = w

		c.Next()

		w.commit()
	}
}

// committingWriter writes the session cookie once, right before headers go out.
type committingWriter struct {
	gin.ResponseWriter
	sm      *SessionManager
	request *http.Request
	once    sync.Once
}

func (w *committingWriter) commit() {
	w.once.Do(func() {
		ctx := w.request.Context()
		switch w.sm.Status(ctx) {
		case scs.Modified:
			token, expiry, err := w.sm.Commit(ctx)
			if err != nil {
				log.Printf("Failed to commit session: %v", err)
				return
			}
			w.sm.WriteSessionCookie(ctx, w.ResponseWriter, token, expiry)
		case scs.Destroyed:
			w.sm.WriteSessionCookie(ctx, w.ResponseWriter, "", time.Time{})
		}
	})
}

func (w *committingWriter) WriteHeader(code int) {
	w.commit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *committingWriter) WriteHeaderNow() {
	w.commit()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *committingWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

func (w *committingWriter) WriteString(s string) (int, error) {
	w.commit()
	return w.ResponseWriter.WriteString(s)
}

func (w *committingWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.Hijack()
}
