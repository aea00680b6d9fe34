package middleware

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// FlashCookieName carries notices across a redirect
const FlashCookieName = "flash"

const flashContextKey = "pending_flashes"

// Flash categories
const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

// FlashMessage is a one-time notice shown on the next rendered page
type FlashMessage struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Flash queues a notice for the next page render, in this request or after a redirect
func (m *SessionManager) Flash(c *gin.Context, category, message string) {
	pending := append(pendingFlashes(c), FlashMessage{Category: category, Message: message})
	c.Set(flashContextKey, pending)

	data, err := json.Marshal(pending)
	if err != nil {
		return
	}
	m.setCookie(c, &http.Cookie{
		Name:   FlashCookieName,
		Value:  base64.RawURLEncoding.EncodeToString(data),
		MaxAge: 60,
	})
}

// PopFlashes returns the notices carried by the request plus any queued during it,
// and clears them
func (m *SessionManager) PopFlashes(c *gin.Context) []FlashMessage {
	var flashes []FlashMessage
	if raw, err := c.Cookie(FlashCookieName); err == nil && raw != "" {
		flashes = decodeFlashes(raw)
		m.setCookie(c, &http.Cookie{Name: FlashCookieName, Value: "", MaxAge: -1})
	}

	if pending := pendingFlashes(c); len(pending) > 0 {
		flashes = append(flashes, pending...)
		c.Set(flashContextKey, []FlashMessage(nil))
		m.setCookie(c, &http.Cookie{Name: FlashCookieName, Value: "", MaxAge: -1})
	}
	return flashes
}

func pendingFlashes(c *gin.Context) []FlashMessage {
	if value, ok := c.Get(flashContextKey); ok {
		if pending, ok := value.([]FlashMessage); ok {
			return pending
		}
	}
	return nil
}

// decodeFlashes ignores malformed cookies
func decodeFlashes(raw string) []FlashMessage {
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var flashes []FlashMessage
	if err := json.Unmarshal(data, &flashes); err != nil {
		return nil
	}
	return flashes
}
