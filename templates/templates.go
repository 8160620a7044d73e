// Package templates holds the server-rendered pages.
package templates

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed *.html
var files embed.FS

// Funcs are the helpers available to every page.
var Funcs = template.FuncMap{
	"fixed": func(digits int, v float64) string {
		return fmt.Sprintf("%.*f", digits, v)
	},
	"signed": func(v float64) string {
		return fmt.Sprintf("%+.2f", v)
	},
	"selected": func(a, b string) template.HTMLAttr {
		if a == b {
			return "selected"
		}
		return ""
	},
}

// Load parses dashboard.html and error.html.
func Load() (*template.Template, error) {
	return template.New("pages").Funcs(Funcs).ParseFS(files, "*.html")
}
