package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/khabaroff/metrology-license-registry/src/middleware"
	"github.com/khabaroff/metrology-license-registry/src/services"
)

// AuthHandler handles admin login and logout
type AuthHandler struct {
	admins   *services.AdminService
	sessions *middleware.SessionManager
	renderer *Renderer
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(admins *services.AdminService, sessions *middleware.SessionManager, renderer *Renderer) *AuthHandler {
	return &AuthHandler{admins: admins, sessions: sessions, renderer: renderer}
}

// HandleLoginPage renders the login form, or skips it when already signed in
func (h *AuthHandler) HandleLoginPage(c *gin.Context) {
	if _, ok := middleware.CurrentSession(c); ok {
		c.Redirect(http.StatusFound, dashboardPath)
		return
	}
	h.renderer.Page(c, http.StatusOK, pageLogin, PageData{Title: "Login"})
}

// HandleLogin verifies the credentials and starts a new session
func (h *AuthHandler) HandleLogin(c *gin.Context) {
	if _, ok := middleware.CurrentSession(c); ok {
		c.Redirect(http.StatusFound, dashboardPath)
		return
	}

	username := c.PostForm("username")
	password := c.PostForm("password")

	admin, err := h.admins.AuthenticateAdmin(c.Request.Context(), username, password)
	if err != nil {
		status := http.StatusOK
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.sessions.Flash(c, middleware.FlashDanger, msgInvalidLogin)
		} else {
			logError(c, err, "admin authentication failed")
			h.sessions.Flash(c, middleware.FlashDanger, msgDatabaseError)
			status = http.StatusInternalServerError
		}
		h.renderer.Page(c, status, pageLogin, PageData{Title: "Login", Username: username})
		return
	}

	if _, err := h.sessions.Issue(c, admin); err != nil {
		logError(c, err, "failed to issue session")
		h.renderer.Error(c, http.StatusInternalServerError, msgDatabaseError)
		return
	}

	h.sessions.Flash(c, middleware.FlashSuccess, msgLoginSuccess)
	c.Redirect(http.StatusFound, dashboardPath)
}

// HandleLogout clears the session unconditionally
func (h *AuthHandler) HandleLogout(c *gin.Context) {
	h.sessions.Clear(c)
	h.sessions.Flash(c, middleware.FlashInfo, msgLoggedOut)
	c.Redirect(http.StatusFound, middleware.LoginPath)
}
