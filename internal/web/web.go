// Package web holds the embedded HTML templates for the three pages.
// The templates materialize the typed widget list produced by the form
// builder; all widget-enhancement plugins (select2, flatpickr, Tagify,
// Chart.js) are initialized from the pages, never from Go code.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates parses the embedded page templates for gin's HTML renderer.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templatesFS, "templates/*.html"))
}
