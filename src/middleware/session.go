package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/khabaroff/metrology-license-registry/src/logging"
	"github.com/khabaroff/metrology-license-registry/src/models"
)

const (
	// SessionCookieName holds the signed admin session token
	SessionCookieName = "session"

	// LoginPath is where unauthenticated admin requests are sent
	LoginPath = "/login"

	// MsgLoginRequired is flashed when a gated page is requested without a session
	MsgLoginRequired = "Please log in to access this page."

	sessionIssuer   = "metrology-license-registry"
	adminContextKey = "admin_session"
)

// ErrNoSession indicates the request carries no usable session cookie
var ErrNoSession = errors.New("no session")

var errAdminGone = errors.New("session admin no longer exists")

// SessionConfig configures the session manager
type SessionConfig struct {
	Secret   string
	Lifetime time.Duration
	Secure   bool // set the Secure cookie attribute (production only)

	// AdminExists, when set, is consulted by RequireSession so that tokens of
	// removed accounts stop working before they expire
	AdminExists func(ctx context.Context, adminID int64) (bool, error)
}

// AdminClaims are the JWT claims stored in the session cookie
type AdminClaims struct {
	AdminID  int64  `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Session is the authenticated admin identity of a request
type Session struct {
	AdminID   int64
	Username  string
	SessionID string
	ExpiresAt time.Time
}

// SessionManager issues and verifies signed session cookies
type SessionManager struct {
	secret   []byte
	lifetime time.Duration
	secure   bool
	now      func() time.Time
	exists   func(ctx context.Context, adminID int64) (bool, error)
}

// NewSessionManager creates a session manager
func NewSessionManager(cfg SessionConfig) *SessionManager {
	return &SessionManager{
		secret:   []byte(cfg.Secret),
		lifetime: cfg.Lifetime,
		secure:   cfg.Secure,
		now:      time.Now,
		exists:   cfg.AdminExists,
	}
}

// Sign creates a session token for the admin, valid for the configured lifetime
func (m *SessionManager) Sign(adminID int64, username string) (string, *AdminClaims, error) {
	now := m.now()
	claims := &AdminClaims{
		AdminID:  adminID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    sessionIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.lifetime)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, claims, nil
}

// Parse verifies a session token and returns its claims
func (m *SessionManager) Parse(token string) (*AdminClaims, error) {
	keyFunc := func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}

	claims := &AdminClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	if !parsed.Valid || claims.AdminID == 0 || claims.ID == "" {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}

// Issue starts a new session for the admin, replacing any session cookie on the request
func (m *SessionManager) Issue(c *gin.Context, admin *models.AdminUser) (*Session, error) {
	token, claims, err := m.Sign(admin.ID, admin.Username)
	if err != nil {
		return nil, err
	}

	m.setCookie(c, &http.Cookie{
		Name:   SessionCookieName,
		Value:  token,
		MaxAge: int(m.lifetime.Seconds()),
	})

	session := sessionFromClaims(claims)
	c.Set(adminContextKey, session)
	return session, nil
}

// Clear removes the session cookie
func (m *SessionManager) Clear(c *gin.Context) {
	m.setCookie(c, &http.Cookie{
		Name:   SessionCookieName,
		Value:  "",
		MaxAge: -1,
	})
	c.Set(adminContextKey, (*Session)(nil))
}

// Read returns the session carried by the request cookie
func (m *SessionManager) Read(c *gin.Context) (*Session, error) {
	token, err := c.Cookie(SessionCookieName)
	if err != nil || token == "" {
		return nil, ErrNoSession
	}
	claims, err := m.Parse(token)
	if err != nil {
		return nil, err
	}
	return sessionFromClaims(claims), nil
}

// RequireSession gates admin routes. Requests without a valid session are redirected
// to the login page with a notice.
func (m *SessionManager) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := m.Read(c)
		if err == nil && m.exists != nil {
			var found bool
			found, err = m.exists(c.Request.Context(), session.AdminID)
			if err != nil {
				logging.FromContext(c.Request.Context()).Error().Err(err).
					Int64("admin_id", session.AdminID).
					Msg("failed to verify session admin")
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			if !found {
				err = errAdminGone
			}
		}
		if err != nil {
			if !errors.Is(err, ErrNoSession) {
				m.Clear(c)
			}
			m.Flash(c, FlashWarning, MsgLoginRequired)
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}

		c.Set(adminContextKey, session)
		c.Next()
	}
}

// LoadSession attaches the session, when present, without enforcing it
func (m *SessionManager) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if session, err := m.Read(c); err == nil {
			c.Set(adminContextKey, session)
		}
		c.Next()
	}
}

// CurrentSession returns the admin session attached to the request
func CurrentSession(c *gin.Context) (*Session, bool) {
	value, exists := c.Get(adminContextKey)
	if !exists {
		return nil, false
	}
	session, ok := value.(*Session)
	return session, ok && session != nil
}

func sessionFromClaims(claims *AdminClaims) *Session {
	return &Session{
		AdminID:   claims.AdminID,
		Username:  claims.Username,
		SessionID: claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
}

// setCookie writes the cookie with the session attributes, replacing an earlier
// Set-Cookie for the same name in this response
func (m *SessionManager) setCookie(c *gin.Context, cookie *http.Cookie) {
	cookie.Path = "/"
	cookie.HttpOnly = true
	cookie.Secure = m.secure
	cookie.SameSite = http.SameSiteLaxMode

	header := c.Writer.Header()
	prefix := cookie.Name + "="
	existing := header.Values("Set-Cookie")
	header.Del("Set-Cookie")
	for _, line := range existing {
		if !strings.HasPrefix(line, prefix) {
			header.Add("Set-Cookie", line)
		}
	}
	http.SetCookie(c.Writer, cookie)
}
