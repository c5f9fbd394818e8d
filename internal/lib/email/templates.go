package email

import (
	"embed"
	"html/template"
)

type Template string

const (
	TemplateWelcome         Template = "welcome"
	TemplatePasswordReset   Template = "password_reset"
	TemplateDefaultPassword Template = "default_password"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// PreviewData holds sample data for rendering every template locally.
var PreviewData = map[Template]map[string]string{
	TemplateWelcome: {
		"UserName": "Sarah Johnson",
	},
	TemplatePasswordReset: {
		"UserName":  "Sarah Johnson",
		"Token":     "4f1c9a0d2e7b",
		"ExpiresIn": "24 hours",
	},
	TemplateDefaultPassword: {
		"UserName": "Mike Chen",
		"Email":    "mike.chen@company.com",
		"Password": "Dash-7Kq2mX9p",
	},
}
