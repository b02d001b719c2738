package handlers

import (
	"embed"
	"html/template"
	"slices"
	"time"

	"github.com/waste3d/codelearn/internal/domain"
	"github.com/waste3d/codelearn/internal/infrastructure/markdown"
	"github.com/waste3d/codelearn/internal/preview"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templateFuncs = template.FuncMap{
	"markdown": markdown.Render,
	"preview": func(code domain.CodeSnapshot) string {
		return preview.Compose(preview.Fragments{HTML: code.HTML, CSS: code.CSS, JS: code.JS})
	},
	"hasTab": func(tabs []string, tab string) bool {
		return slices.Contains(tabs, tab)
	},
	"date": func(t time.Time) string {
		return t.Format("Jan 2, 2006")
	},
}

// Templates parses the embedded page templates. Pages are addressed by file
// name, e.g. "course.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
}
