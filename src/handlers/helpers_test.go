package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/khabaroff/metrology-license-registry/src/middleware"
	"github.com/khabaroff/metrology-license-registry/src/models"
	"github.com/khabaroff/metrology-license-registry/src/repositories/mock"
	"github.com/khabaroff/metrology-license-registry/src/services"
	"github.com/khabaroff/metrology-license-registry/src/templates"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret-key-0123456789abcdef"

// testEnv wires the handlers to in-memory repositories
type testEnv struct {
	router   *gin.Engine
	admins   *mock.AdminRepository
	licenses *mock.LicenseRepository
	sessions *middleware.SessionManager
	adminSvc *services.AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	site, err := templates.LoadSiteConfig()
	require.NoError(t, err)
	pages, err := templates.LoadPages()
	require.NoError(t, err)

	env := &testEnv{
		admins:   mock.NewAdminRepository(),
		licenses: mock.NewLicenseRepository(),
		sessions: middleware.NewSessionManager(middleware.SessionConfig{
			Secret:   testSecret,
			Lifetime: 7 * 24 * time.Hour,
		}),
	}
	env.adminSvc = services.NewAdminService(env.admins)

	renderer := NewRenderer(site, env.sessions)
	scan := NewScanHandler(services.NewLookupService(env.licenses), renderer)
	auth := NewAuthHandler(env.adminSvc, env.sessions, renderer)
	licenses := NewLicenseHandler(services.NewLicenseService(env.licenses), env.sessions, renderer)

	router := gin.New()
	router.SetHTMLTemplate(pages)
	router.Use(env.sessions.LoadSession())

	router.GET("/", scan.HandleIndex)
	router.GET("/scan", scan.HandleScan)
	router.POST("/api/validate", scan.HandleValidate)
	router.GET("/login", auth.HandleLoginPage)
	router.POST("/login", auth.HandleLogin)
	router.GET("/logout", auth.HandleLogout)
	router.GET("/admin/dashboard", licenses.HandleDashboard)
	router.GET("/admin/licenses/add", licenses.HandleAddPage)
	router.POST("/admin/licenses/add", licenses.HandleAdd)
	router.GET("/admin/licenses/edit/:id", licenses.HandleEditPage)
	router.POST("/admin/licenses/edit/:id", licenses.HandleEdit)
	router.POST("/admin/licenses/delete/:id", licenses.HandleDelete)
	router.POST("/admin/api/check-duplicate", licenses.HandleCheckDuplicate)

	env.router = router
	return env
}

// seed stores a license expiring on the given date
func (env *testEnv) seed(serial, number, brand, expiry string) *models.License {
	issued, _ := models.ParseDate("2024-01-01")
	expires, _ := models.ParseDate(expiry)
	l := &models.License{
		SerialNumber:  serial,
		LicenseNumber: number,
		Brand:         models.OptionalString(brand),
		LicenseDate:   issued,
		ExpiryDate:    expires,
	}
	env.licenses.Seed(l)
	return l
}

// sessionCookie signs a session for a fresh admin
func (env *testEnv) sessionCookie(t *testing.T) *http.Cookie {
	t.Helper()
	token, _, err := env.sessions.Sign(1, "admin")
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.SessionCookieName, Value: token}
}

func (env *testEnv) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formRequest(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// assertStatusCode checks if response status code matches expected
func assertStatusCode(t *testing.T, w *httptest.ResponseRecorder, expectedCode int) {
	t.Helper()
	if w.Code != expectedCode {
		t.Errorf("expected status %d, got %d: %s", expectedCode, w.Code, w.Body.String())
	}
}

// decodeJSON parses the response body into a generic map
func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return response
}

// flashes decodes the notices a response carries to the next request
func flashes(t *testing.T, w *httptest.ResponseRecorder) []middleware.FlashMessage {
	t.Helper()
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.FlashCookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" {
		return nil
	}

	w2 := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w2)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	ctx.Request.AddCookie(cookie)
	sessions := middleware.NewSessionManager(middleware.SessionConfig{Secret: testSecret, Lifetime: time.Hour})
	return sessions.PopFlashes(ctx)
}

func newGet(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}
