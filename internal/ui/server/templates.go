package server

import (
	"fmt"
	"html/template"
	"path/filepath"
)

// loadTemplates parses the page templates under dir, keyed by page name.
func loadTemplates(dir string) (map[string]*template.Template, error) {
	base := filepath.Join(dir, "base.tmpl")
	home := filepath.Join(dir, "home.tmpl")

	homeTmpl, err := template.New("home").ParseFiles(base, home)
	if err != nil {
		return nil, fmt.Errorf("parse home templates: %w", err)
	}
	return map[string]*template.Template{
		"home": homeTmpl,
	}, nil
}
