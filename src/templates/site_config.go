package templates

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/khabaroff/metrology-license-registry/src/models"
	"gopkg.in/yaml.v3"
)

//go:embed site.yaml pages/*.html
var files embed.FS

// SiteConfig holds the page texts and branding from site.yaml
type SiteConfig struct {
	Branding struct {
		Name         string `yaml:"name"`
		Tagline      string `yaml:"tagline"`
		Organization string `yaml:"organization"`
		SupportEmail string `yaml:"support_email"`
	} `yaml:"branding"`

	Scan struct {
		Title        string `yaml:"title"`
		Intro        string `yaml:"intro"`
		Placeholder  string `yaml:"placeholder"`
		ButtonText   string `yaml:"button_text"`
		NotFoundText string `yaml:"not_found_text"`
	} `yaml:"scan"`

	Dashboard struct {
		Title             string `yaml:"title"`
		SearchPlaceholder string `yaml:"search_placeholder"`
		EmptyText         string `yaml:"empty_text"`
		DeleteConfirm     string `yaml:"delete_confirm"`
	} `yaml:"dashboard"`

	Login struct {
		Title string `yaml:"title"`
	} `yaml:"login"`
}

// LoadSiteConfig loads the embedded site.yaml
func LoadSiteConfig() (*SiteConfig, error) {
	data, err := files.ReadFile("site.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read site config: %w", err)
	}
	return ParseSiteConfig(data)
}

// ParseSiteConfig parses site configuration YAML
func ParseSiteConfig(data []byte) (*SiteConfig, error) {
	var config SiteConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse site config: %w", err)
	}
	if config.Branding.Name == "" {
		return nil, fmt.Errorf("site config: branding.name is required")
	}
	return &config, nil
}

// Funcs are the helpers available to every page template
var Funcs = template.FuncMap{
	"formatDate":  models.FormatDate,
	"stringValue": models.StringValue,
	"statusClass": func(l models.License) string {
		if l.IsExpired() {
			return "expired"
		}
		return "active"
	},
}

// LoadPages parses every embedded page template. Each page is addressed by
// its file name, e.g. "dashboard.html".
func LoadPages() (*template.Template, error) {
	tmpl, err := template.New("pages").Funcs(Funcs).ParseFS(files, "pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}
	return tmpl, nil
}
