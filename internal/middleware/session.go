package middleware

import (
	"context"
	"net/http"
	"time"

	"firmeza/internal/apierror"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const (
	SessionCookieName = "firmeza_admin"
	AdminIDKey        = "admin_id"

	sessionUID = "uid"
	sessionExp = "exp"
)

// UserVerifier re-checks on every request that the session's user still
// exists and is allowed into the admin panel.
type UserVerifier func(ctx context.Context, uid uint) bool

// SessionManager issues and validates the admin panel cookie through a
// gin-contrib cookie store (securecookie signed). The session carries the user
// id and an absolute expiry.
type SessionManager struct {
	store    cookie.Store
	ttl      time.Duration
	secure   bool
	verifier UserVerifier
	now      func() time.Time
}

func NewSessionManager(secret string, ttl time.Duration, secure bool, verifier UserVerifier) *SessionManager {
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return &SessionManager{store: store, ttl: ttl, secure: secure, verifier: verifier, now: time.Now}
}

// Middleware loads the session for every route of the admin group. Create,
// Clear and RequireAdmin must run behind it.
func (m *SessionManager) Middleware() gin.HandlerFunc {
	return sessions.Sessions(SessionCookieName, m.store)
}

// Create stores userID in a fresh session.
func (m *SessionManager) Create(c *gin.Context, userID uint) error {
	s := sessions.Default(c)
	s.Clear()
	s.Set(sessionUID, userID)
	s.Set(sessionExp, m.now().Add(m.ttl).Unix())
	return s.Save()
}

// Clear deletes the session cookie.
func (m *SessionManager) Clear(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return s.Save()
}

// usuario returns the user id of a valid, unexpired session.
func (m *SessionManager) usuario(c *gin.Context) (uint, bool) {
	s := sessions.Default(c)
	uid, ok := s.Get(sessionUID).(uint)
	if !ok || uid == 0 {
		return 0, false
	}
	exp, ok := s.Get(sessionExp).(int64)
	if !ok || m.now().Unix() >= exp {
		return 0, false
	}
	return uid, true
}

// RequireAdmin rejects requests without a valid session. A session whose user
// no longer passes the verifier is cleared.
func (m *SessionManager) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := m.usuario(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.ForStatus(http.StatusUnauthorized, "Sesión inválida o expirada."))
			return
		}
		if m.verifier != nil && !m.verifier(c.Request.Context(), uid) {
			_ = m.Clear(c)
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.ForStatus(http.StatusUnauthorized, "Sesión inválida o expirada."))
			return
		}
		c.Set(AdminIDKey, uid)
		c.Next()
	}
}

// AdminID returns the id stored by RequireAdmin.
func AdminID(c *gin.Context) uint {
	return c.GetUint(AdminIDKey)
}
