package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/khabaroff/metrology-license-registry/src/middleware"
	"github.com/khabaroff/metrology-license-registry/src/services"
)

// CheckDuplicateRequest is the body of POST /admin/api/check-duplicate.
// ExcludeID may be a number, a numeric string or null.
type CheckDuplicateRequest struct {
	SerialNumber  string      `json:"serial_number"`
	LicenseNumber string      `json:"license_number"`
	ExcludeID     interface{} `json:"exclude_id"`
}

// LicenseHandler serves the admin license pages
type LicenseHandler struct {
	licenses *services.LicenseService
	sessions *middleware.SessionManager
	renderer *Renderer
}

// NewLicenseHandler creates a new license handler
func NewLicenseHandler(licenses *services.LicenseService, sessions *middleware.SessionManager, renderer *Renderer) *LicenseHandler {
	return &LicenseHandler{licenses: licenses, sessions: sessions, renderer: renderer}
}

// HandleDashboard lists licenses, newest first, with optional search
func (h *LicenseHandler) HandleDashboard(c *gin.Context) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}

	result, err := h.licenses.List(c.Request.Context(), page, c.Query("search"))
	if err != nil {
		logError(c, err, "failed to list licenses")
		h.renderer.Error(c, http.StatusInternalServerError, msgDatabaseError)
		return
	}

	h.renderer.Page(c, http.StatusOK, pageDashboard, PageData{
		Title:    "Dashboard",
		Licenses: result,
	})
}

// HandleAddPage renders an empty license form
func (h *LicenseHandler) HandleAddPage(c *gin.Context) {
	h.renderForm(c, http.StatusOK, 0, services.LicenseInput{})
}

// HandleAdd creates a license from the submitted form
func (h *LicenseHandler) HandleAdd(c *gin.Context) {
	in := licenseInputFromForm(c)

	if _, err := h.licenses.Create(c.Request.Context(), in); err != nil {
		h.failForm(c, err, 0, in)
		return
	}

	h.sessions.Flash(c, middleware.FlashSuccess, msgLicenseAdded)
	c.Redirect(http.StatusFound, dashboardPath)
}

// HandleEditPage renders the form filled with the stored license
func (h *LicenseHandler) HandleEditPage(c *gin.Context) {
	id, ok := licenseID(c)
	if !ok {
		h.renderer.NotFound(c)
		return
	}

	license, err := h.licenses.Get(c.Request.Context(), id)
	if err != nil {
		h.failLookup(c, err)
		return
	}

	h.renderForm(c, http.StatusOK, id, services.InputFromLicense(license))
}

// HandleEdit replaces the stored license with the submitted form
func (h *LicenseHandler) HandleEdit(c *gin.Context) {
	id, ok := licenseID(c)
	if !ok {
		h.renderer.NotFound(c)
		return
	}

	in := licenseInputFromForm(c)
	if _, err := h.licenses.Update(c.Request.Context(), id, in); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			h.renderer.Error(c, http.StatusNotFound, msgLicenseNotFound)
			return
		}
		h.failForm(c, err, id, in)
		return
	}

	h.sessions.Flash(c, middleware.FlashSuccess, msgLicenseUpdated)
	c.Redirect(http.StatusFound, dashboardPath)
}

// HandleDelete permanently removes a license
func (h *LicenseHandler) HandleDelete(c *gin.Context) {
	id, ok := licenseID(c)
	if !ok {
		h.renderer.NotFound(c)
		return
	}

	if err := h.licenses.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			h.renderer.Error(c, http.StatusNotFound, msgLicenseNotFound)
			return
		}
		logError(c, err, "failed to delete license")
		h.sessions.Flash(c, middleware.FlashDanger, msgDeleteFailed)
		c.Redirect(http.StatusFound, dashboardPath)
		return
	}

	h.sessions.Flash(c, middleware.FlashSuccess, msgLicenseDeleted)
	c.Redirect(http.StatusFound, dashboardPath)
}

// HandleCheckDuplicate reports whether a serial or license number is already used
// by a license other than exclude_id
func (h *LicenseHandler) HandleCheckDuplicate(c *gin.Context) {
	var req CheckDuplicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}

	result, err := h.licenses.CheckDuplicate(
		c.Request.Context(),
		req.SerialNumber,
		req.LicenseNumber,
		parseExcludeID(req.ExcludeID),
	)
	if err != nil {
		logError(c, err, "duplicate check failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgDatabaseError})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *LicenseHandler) renderForm(c *gin.Context, status int, id int64, in services.LicenseInput) {
	title := "Add License"
	if id != 0 {
		title = "Edit License"
	}
	h.renderer.Page(c, status, pageLicenseForm, PageData{
		Title:     title,
		Form:      in,
		LicenseID: id,
	})
}

// failForm re-renders the submitted form with a notice describing err
func (h *LicenseHandler) failForm(c *gin.Context, err error, id int64, in services.LicenseInput) {
	var verr *services.ValidationError
	status := http.StatusOK

	switch {
	case errors.As(err, &verr):
		h.sessions.Flash(c, middleware.FlashDanger, verr.Message)
	case errors.Is(err, services.ErrDuplicateSerial):
		h.sessions.Flash(c, middleware.FlashDanger, msgDuplicateSerial)
	case errors.Is(err, services.ErrDuplicateLicenseNumber):
		h.sessions.Flash(c, middleware.FlashDanger, msgDuplicateLicense)
	case errors.Is(err, services.ErrDuplicate):
		h.sessions.Flash(c, middleware.FlashDanger, msgDuplicateData)
	default:
		logError(c, err, "failed to save license")
		h.sessions.Flash(c, middleware.FlashDanger, msgDatabaseError)
		status = http.StatusInternalServerError
	}

	h.renderForm(c, status, id, in)
}

func (h *LicenseHandler) failLookup(c *gin.Context, err error) {
	if errors.Is(err, services.ErrNotFound) {
		h.renderer.Error(c, http.StatusNotFound, msgLicenseNotFound)
		return
	}
	logError(c, err, "failed to load license")
	h.renderer.Error(c, http.StatusInternalServerError, msgDatabaseError)
}

func licenseInputFromForm(c *gin.Context) services.LicenseInput {
	return services.LicenseInput{
		SerialNumber:  c.PostForm("serial_number"),
		LicenseNumber: c.PostForm("license_number"),
		Brand:         c.PostForm("brand"),
		Model:         c.PostForm("model"),
		LicenseDate:   c.PostForm("license_date"),
		ExpiryDate:    c.PostForm("expiry_date"),
		Notes:         c.PostForm("notes"),
	}
}

// licenseID parses the positive integer :id path parameter
func licenseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// parseExcludeID accepts a positive JSON number or numeric string; anything else excludes nothing
func parseExcludeID(value interface{}) int64 {
	switch v := value.(type) {
	case float64:
		// float64(math.MaxInt64) rounds up to 2^63, which does not fit
		if v >= 1 && v == math.Trunc(v) && v < math.MaxInt64 {
			return int64(v)
		}
	case string:
		if id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && id > 0 {
			return id
		}
	}
	return 0
}
