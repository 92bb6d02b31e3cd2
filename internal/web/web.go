// Package web holds the server-rendered pages.
package web

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html
var files embed.FS

var pages = template.Must(template.ParseFS(files, "templates/*.html"))

// IndexData is rendered into the submission form.
type IndexData struct {
	Title     string
	MaxUpload string
}

// RenderIndex writes the submission form.
func RenderIndex(w io.Writer, data IndexData) error {
	return pages.ExecuteTemplate(w, "index.html", data)
}
