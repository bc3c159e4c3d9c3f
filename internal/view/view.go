package view

import (
	"embed"
	"html/template"
	"time"

	"github.com/cmsdash/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// FuncMap returns the helpers available to every dashboard template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"excerpt": PlainText,
		"ago": func(t time.Time) string {
			return FormatRelativeTime(time.Now(), t)
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.In(time.Local).Format("2006-01-02 15:04")
		},
		"slugPattern": func() string {
			return service.SlugPattern
		},
	}
}

// Templates parses the embedded dashboard templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.html")
}

// MustTemplates is like Templates but panics on a parse error.
func MustTemplates() *template.Template {
	return template.Must(Templates())
}
