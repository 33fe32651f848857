// Package web holds the HTML templates and static assets of the public site
// and the admin.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFiles embed.FS

//go:embed static
var staticFiles embed.FS

// FuncMap returns the helpers available to every template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"formatAverage": FormatAverage,
		"formatTime":    FormatTime,
		"lower":         strings.ToLower,
	}
}

// FormatAverage renders an average rating with one decimal, or "-" when
// there is none.
func FormatAverage(avg *float64) string {
	if avg == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *avg)
}

// FormatTime renders admin log timestamps.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("Jan. 2, 2006, 15:04")
}

// Templates parses the embedded templates, or the *.html files in dir when
// dir is set.
func Templates(dir string) (*template.Template, error) {
	tmpl := template.New("").Funcs(FuncMap())
	if dir != "" {
		return tmpl.ParseGlob(filepath.Join(dir, "*.html"))
	}
	return tmpl.ParseFS(templateFiles, "templates/*.html")
}

// Static serves the embedded assets rooted at static/.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
