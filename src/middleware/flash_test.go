package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlash_SurvivesRedirect(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newTestSessionManager(false)

	router := gin.New()
	router.POST("/logout", func(c *gin.Context) {
		m.Flash(c, FlashInfo, "You have been logged out.")
		c.Redirect(http.StatusFound, "/login")
	})
	router.GET("/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, m.PopFlashes(c))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/logout", nil))
	flashCookie := findCookie(w, FlashCookieName)
	require.NotNil(t, flashCookie)
	assert.True(t, flashCookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(flashCookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.JSONEq(t, `[{"category":"info","message":"You have been logged out."}]`, w.Body.String())
	cleared := findCookie(w, FlashCookieName)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestFlash_SameRequestRender(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newTestSessionManager(false)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/login", nil)

	m.Flash(c, FlashDanger, "Invalid username or password")
	m.Flash(c, FlashInfo, "second")
	flashes := m.PopFlashes(c)

	require.Len(t, flashes, 2)
	assert.Equal(t, "Invalid username or password", flashes[0].Message)
	assert.Empty(t, m.PopFlashes(c))

	cleared := findCookie(w, FlashCookieName)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestDecodeFlashes_IgnoresGarbage(t *testing.T) {
	assert.Nil(t, decodeFlashes("%%%"))
	assert.Nil(t, decodeFlashes("bm90LWpzb24"))
}
