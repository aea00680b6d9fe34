package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/khabaroff/metrology-license-registry/src/models"
	"github.com/khabaroff/metrology-license-registry/src/services"
)

// ValidateRequest is the body of POST /api/validate
type ValidateRequest struct {
	SerialNumber string `json:"serial_number"`
}

// ValidateResponse is returned when the lookup ran
type ValidateResponse struct {
	Success bool         `json:"success"`
	Found   bool         `json:"found"`
	Data    *LicenseView `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
}

// ErrorResponse is returned when the request could not be served
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// LicenseView is the public representation of a license.
// Missing brand and model are rendered as null.
type LicenseView struct {
	SerialNumber  string               `json:"serial_number"`
	LicenseNumber string               `json:"license_number"`
	Brand         *string              `json:"brand"`
	Model         *string              `json:"model"`
	LicenseDate   string               `json:"license_date"`
	ExpiryDate    string               `json:"expiry_date"`
	Status        models.LicenseStatus `json:"status"`
	IsExpired     bool                 `json:"is_expired"`
}

// NewLicenseView computes the derived status as of now
func NewLicenseView(l *models.License) *LicenseView {
	return &LicenseView{
		SerialNumber:  l.SerialNumber,
		LicenseNumber: l.LicenseNumber,
		Brand:         l.Brand,
		Model:         l.Model,
		LicenseDate:   models.FormatDate(l.LicenseDate),
		ExpiryDate:    models.FormatDate(l.ExpiryDate),
		Status:        l.Status(),
		IsExpired:     l.IsExpired(),
	}
}

const (
	msgSerialRequired = "Serial number is required"
	msgNoLicenseFound = "No license record found for this serial number"
	msgInvalidBody    = "Invalid request body"
	msgBodyTooLarge   = "Request body too large"
	msgLookupFailed   = "Lookup failed, please try again"

	scanPath      = "/scan"
	dashboardPath = "/admin/dashboard"
)

// ScanHandler serves the public lookup page and API
type ScanHandler struct {
	lookup   *services.LookupService
	renderer *Renderer
}

// NewScanHandler creates a new scan handler
func NewScanHandler(lookup *services.LookupService, renderer *Renderer) *ScanHandler {
	return &ScanHandler{lookup: lookup, renderer: renderer}
}

// HandleIndex sends visitors to the scan page
func (h *ScanHandler) HandleIndex(c *gin.Context) {
	c.Redirect(http.StatusFound, scanPath)
}

// HandleScan renders the public lookup page
func (h *ScanHandler) HandleScan(c *gin.Context) {
	h.renderer.Page(c, http.StatusOK, pageScan, PageData{Title: "Scan"})
}

// HandleValidate looks up a serial number by exact, case-insensitive match
func (h *ScanHandler) HandleValidate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: msgBodyTooLarge})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidBody})
		return
	}

	serial := strings.TrimSpace(req.SerialNumber)
	if serial == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgSerialRequired})
		return
	}

	license, found, err := h.lookup.FindByExactSerial(c.Request.Context(), serial)
	if err != nil {
		logError(c, err, "serial lookup failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgLookupFailed})
		return
	}

	if !found {
		c.JSON(http.StatusOK, ValidateResponse{
			Success: true,
			Found:   false,
			Message: msgNoLicenseFound,
		})
		return
	}

	c.JSON(http.StatusOK, ValidateResponse{
		Success: true,
		Found:   true,
		Data:    NewLicenseView(license),
	})
}
