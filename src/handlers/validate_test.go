package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleValidate_FoundTrimsAndFoldsCase(t *testing.T) {
	env := newTestEnv(t)
	env.seed("BB123", "LIC-1", "Acme", time.Now().AddDate(1, 0, 0).Format("2006-01-02"))

	w := env.do(jsonRequest(http.MethodPost, "/api/validate", `{"serial_number": " bb123 "}`))

	assertStatusCode(t, w, http.StatusOK)
	response := decodeJSON(t, w)
	assert.Equal(t, true, response["success"])
	assert.Equal(t, true, response["found"])

	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "expected data object")
	assert.Equal(t, "BB123", data["serial_number"])
	assert.Equal(t, "LIC-1", data["license_number"])
	assert.Equal(t, "Acme", data["brand"])
	assert.Nil(t, data["model"])
	assert.Contains(t, data, "model")
	assert.Equal(t, "2024-01-01", data["license_date"])
	assert.Equal(t, "Active", data["status"])
	assert.Equal(t, false, data["is_expired"])
}

func TestHandleValidate_StatusBoundaries(t *testing.T) {
	env := newTestEnv(t)
	today := time.Now()
	env.seed("YESTERDAY", "L1", "", today.AddDate(0, 0, -1).Format("2006-01-02"))
	env.seed("TODAY", "L2", "", today.Format("2006-01-02"))
	env.seed("TOMORROW", "L3", "", today.AddDate(0, 0, 1).Format("2006-01-02"))

	tests := map[string]struct {
		status  string
		expired bool
	}{
		"yesterday": {"Expired", true},
		"today":     {"Active", false},
		"tomorrow":  {"Active", false},
	}
	for serial, want := range tests {
		w := env.do(jsonRequest(http.MethodPost, "/api/validate", `{"serial_number":"`+serial+`"}`))
		assertStatusCode(t, w, http.StatusOK)
		data := decodeJSON(t, w)["data"].(map[string]interface{})
		assert.Equal(t, want.status, data["status"], serial)
		assert.Equal(t, want.expired, data["is_expired"], serial)
	}
}

func TestHandleValidate_NotFound(t *testing.T) {
	env := newTestEnv(t)
	env.seed("BB123", "LIC-1", "", "2030-01-01")

	for _, serial := range []string{"BB1234", "xBB123x", "BB12"} {
		w := env.do(jsonRequest(http.MethodPost, "/api/validate", `{"serial_number":"`+serial+`"}`))
		assertStatusCode(t, w, http.StatusOK)
		assert.JSONEq(t, `{"success":true,"found":false,"message":"No license record found for this serial number"}`, w.Body.String(), serial)
	}
}

func TestHandleValidate_EmptySerial(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{`{"serial_number": ""}`, `{"serial_number": "   "}`, `{}`} {
		w := env.do(jsonRequest(http.MethodPost, "/api/validate", body))
		assertStatusCode(t, w, http.StatusBadRequest)
		assert.JSONEq(t, `{"success":false,"error":"Serial number is required"}`, w.Body.String())
	}
}

func TestHandleValidate_InvalidBody(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(jsonRequest(http.MethodPost, "/api/validate", `not json`))
	assertStatusCode(t, w, http.StatusBadRequest)
	assert.JSONEq(t, `{"success":false,"error":"Invalid request body"}`, w.Body.String())
}

func TestHandleScan_RendersPage(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(newGet("/scan"))
	assertStatusCode(t, w, http.StatusOK)
	assert.True(t, strings.Contains(w.Body.String(), "/api/validate"))
}

func TestHandleIndex_RedirectsToScan(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(newGet("/"))
	assertStatusCode(t, w, http.StatusFound)
	assert.Equal(t, "/scan", w.Header().Get("Location"))
}
