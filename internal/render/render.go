// Package render assembles the HTML templates: every view is parsed together
// with the shared layouts, includes and components and registered under its
// path below views/, e.g. "posts/index.html".
package render

import (
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"yatube/internal/utils"

	"github.com/gin-contrib/multitemplate"
)

const (
	templatesDir = "templates"
	viewsDir     = templatesDir + "/views"

	// EmptyValue is displayed for blank cells in the admin listings.
	EmptyValue = "-empty-"
)

func FuncMap() template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add": func(a, b int) int {
			return a + b
		},
		"truncate": Truncate,
		"date": func(t time.Time) string {
			return t.Format("02 January 2006")
		},
		"year": func() int {
			return time.Now().Year()
		},
		"markdown": utils.RenderMarkdown,
		"emptyValue": func() string {
			return EmptyValue
		},
		"deref": func(id *uint) uint {
			if id == nil {
				return 0
			}
			return *id
		},
	}
}

// Truncate shortens s to at most n characters, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "…"
}

// Load parses the templates found in fsys, which must hold a templates/
// directory with layouts, includes, components and views subdirectories.
func Load(fsys fs.FS) (multitemplate.Render, error) {
	var shared []string
	for _, dir := range []string{"layouts", "includes", "components"} {
		files, err := fs.Glob(fsys, path.Join(templatesDir, dir, "*.html"))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", dir, err)
		}
		shared = append(shared, files...)
	}
	if len(shared) == 0 || path.Base(shared[0]) != "base.html" {
		return nil, fmt.Errorf("templates/layouts/base.html not found")
	}

	r := multitemplate.New()
	funcMap := FuncMap()
	err := fs.WalkDir(fsys, viewsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".html" {
			return nil
		}
		files := append(append([]string{}, shared...), p)
		tmpl, err := template.New("base.html").Funcs(funcMap).ParseFS(fsys, files...)
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		r.Add(strings.TrimPrefix(p, viewsDir+"/"), tmpl)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}
