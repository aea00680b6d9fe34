package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/khabaroff/metrology-license-registry/src/logging"
	"github.com/khabaroff/metrology-license-registry/src/middleware"
	"github.com/khabaroff/metrology-license-registry/src/services"
	"github.com/khabaroff/metrology-license-registry/src/templates"
)

// Page template names
const (
	pageScan        = "scan.html"
	pageLogin       = "login.html"
	pageDashboard   = "dashboard.html"
	pageLicenseForm = "license_form.html"
	pageError       = "error.html"
)

// Notices shown to admins
const (
	msgLoginSuccess       = "Login successful!"
	msgInvalidLogin       = "Invalid username or password"
	msgLoggedOut          = "You have been logged out."
	msgLicenseAdded       = "License added successfully!"
	msgLicenseUpdated     = "License updated successfully!"
	msgLicenseDeleted     = "License deleted successfully."
	msgDuplicateSerial    = "Serial number already exists!"
	msgDuplicateLicense   = "License number already exists!"
	msgDuplicateData      = "Database error: duplicate data detected."
	msgDatabaseError      = "Database error: please try again."
	msgDeleteFailed       = "Error deleting license."
	msgLicenseNotFound    = "License not found."
	msgPageNotFound       = "Page not found."
	msgTooManyLoginTrials = "Too many login attempts. Please try again later."
)

// PageData is the data passed to every page template
type PageData struct {
	Site    *templates.SiteConfig
	Title   string
	Admin   *middleware.Session
	Flashes []middleware.FlashMessage

	// login
	Username string

	// error
	Status  int
	Message string

	// dashboard
	Licenses *services.LicensePage

	// add / edit
	Form      services.LicenseInput
	LicenseID int64
}

// Renderer renders HTML pages with the shared layout data filled in
type Renderer struct {
	site     *templates.SiteConfig
	sessions *middleware.SessionManager
}

// NewRenderer creates a page renderer
func NewRenderer(site *templates.SiteConfig, sessions *middleware.SessionManager) *Renderer {
	return &Renderer{site: site, sessions: sessions}
}

// Page renders the named template, consuming pending flash notices
func (r *Renderer) Page(c *gin.Context, status int, name string, data PageData) {
	data.Site = r.site
	data.Admin, _ = middleware.CurrentSession(c)
	data.Flashes = r.sessions.PopFlashes(c)
	c.HTML(status, name, data)
}

// Error renders the error page
func (r *Renderer) Error(c *gin.Context, status int, message string) {
	r.Page(c, status, pageError, PageData{
		Title:   http.StatusText(status),
		Status:  status,
		Message: message,
	})
}

// NotFound renders the generic 404 page
func (r *Renderer) NotFound(c *gin.Context) {
	r.Error(c, http.StatusNotFound, msgPageNotFound)
}

// LoginRateLimited renders the rejection for throttled login attempts
func (r *Renderer) LoginRateLimited(c *gin.Context) {
	r.Error(c, http.StatusTooManyRequests, msgTooManyLoginTrials)
}

// logError records an unexpected failure with the request-scoped logger
func logError(c *gin.Context, err error, msg string) {
	_ = c.Error(err)
	logging.FromContext(c.Request.Context()).Error().Err(err).Msg(msg)
}
