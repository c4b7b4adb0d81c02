package middleware

import (
	"log/slog"
	"net/http"

	"github.com/avidcandu/ChatSnap/internal/handler/httperr"
	"github.com/avidcandu/ChatSnap/internal/pkg/config"
	"github.com/avidcandu/ChatSnap/internal/pkg/cookie"
	"github.com/avidcandu/ChatSnap/internal/pkg/errs"
	"github.com/avidcandu/ChatSnap/internal/pkg/sessiontoken"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var ErrNoSession = errs.New("no session cookie")

const (
	ctxSessionIDKey     = "session_id"
	ctxInvalidCookieKey = "session_cookie_invalid"
)

type SessionMiddleware struct {
	tokens    *sessiontoken.Service
	cookieCfg config.CookieConfig
}

func NewSessionMiddleware(tokens *sessiontoken.Service, cfg config.Config) *SessionMiddleware {
	return &SessionMiddleware{
		tokens:    tokens,
		cookieCfg: cfg.Cookie,
	}
}

// LoadSession resolves the session cookie into a session id. A missing or
// tampered cookie leaves the context without one and never aborts.
func (m *SessionMiddleware) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cookie.GetSessionToken(c, m.cookieCfg)
		if token == "" {
			c.Next()
			return
		}

		id, err := m.tokens.Parse(token)
		if err != nil {
			slog.DebugContext(c.Request.Context(), "ignoring invalid session cookie", "error", err.Error())
			c.Set(ctxInvalidCookieKey, true)
			c.Next()
			return
		}

		c.Set(ctxSessionIDKey, id)
		c.Next()
	}
}

// RequireSession rejects requests that carry no valid session cookie.
func (m *SessionMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetSessionID(c); ok {
			c.Next()
			return
		}
		if c.GetBool(ctxInvalidCookieKey) {
			cookie.ClearSessionCookie(c, m.cookieCfg)
		}
		httperr.AbortWithError(c, http.StatusBadRequest, ErrNoSession, httperr.CodeBadRequest, "No session found")
	}
}

func GetSessionID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ctxSessionIDKey)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := v.(uuid.UUID)
	return id, ok
}
