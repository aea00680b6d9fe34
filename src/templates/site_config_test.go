package templates

import (
	"bytes"
	"testing"
	"time"

	"github.com/khabaroff/metrology-license-registry/src/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSiteConfig(t *testing.T) {
	config, err := LoadSiteConfig()
	require.NoError(t, err)

	assert.NotEmpty(t, config.Branding.Name)
	assert.NotEmpty(t, config.Scan.Title)
	assert.Equal(t, "No license record found for this serial number", config.Scan.NotFoundText)
	assert.NotEmpty(t, config.Dashboard.Title)
}

func TestParseSiteConfig_RequiresName(t *testing.T) {
	_, err := ParseSiteConfig([]byte("branding:\n  tagline: x\n"))
	assert.Error(t, err)

	_, err = ParseSiteConfig([]byte("branding: [unclosed"))
	assert.Error(t, err)
}

func TestLoadPages_DefinesEveryPage(t *testing.T) {
	tmpl, err := LoadPages()
	require.NoError(t, err)

	for _, name := range []string{"scan.html", "login.html", "dashboard.html", "license_form.html", "error.html", "header", "footer"} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestLoadPages_RendersEscapedValues(t *testing.T) {
	tmpl, err := LoadPages()
	require.NoError(t, err)
	site, err := LoadSiteConfig()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = tmpl.ExecuteTemplate(&buf, "error.html", map[string]interface{}{
		"Site":    site,
		"Title":   "Not Found",
		"Status":  404,
		"Message": "<script>alert(1)</script>",
	})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "404")
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestFuncs_StatusClass(t *testing.T) {
	statusClass := Funcs["statusClass"].(func(models.License) string)

	expired := models.License{ExpiryDate: mustDate(t, "2000-01-01")}
	active := models.License{ExpiryDate: mustDate(t, "2999-01-01")}
	assert.Equal(t, "expired", statusClass(expired))
	assert.Equal(t, "active", statusClass(active))
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := models.ParseDate(value)
	require.NoError(t, err)
	return parsed
}
