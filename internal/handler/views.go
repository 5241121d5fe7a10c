// Package handler contains the vault's HTTP handlers: the JSON API, the
// server-rendered pages and the sign-in flows.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the incoming request (path params, query, form or JSON body)
//  2. Call the service layer
//  3. Write the response (JSON, a rendered page, or a redirect)
//
// Handlers hold no business rules; validation and normalization live in
// internal/service so the terminal client gets the same behaviour.
package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/sakif/project-vault/internal/form"
	"github.com/sakif/project-vault/internal/model"
)

// pageNames are the templates under templates/, each parsed together with
// base.html.
var pageNames = []string{"gallery", "admin", "notes", "login"}

// Views holds one parsed template set per page.
//
// TEMPLATE COMPOSITION:
// base.html defines the shell with a {{template "content" .}} hole; each page
// file fills it with {{define "content"}}. Because every page defines the same
// name, each page gets its own set instead of one shared tree.
type Views struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// NewViews parses the page templates from assets (web.FS in production).
func NewViews(assets fs.FS, logger *slog.Logger) (*Views, error) {
	funcs := template.FuncMap{
		"cardTags": func(p model.Project) []string { return p.VisibleTags(3) },
		"joinTags": form.JoinTags,
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New("base").Funcs(funcs).ParseFS(assets,
			"templates/base.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Views{pages: pages, logger: logger}, nil
}

// render executes page into a buffer first so a template error can still
// become a clean 500 instead of half a page.
func (v *Views) render(w http.ResponseWriter, status int, page string, data any) {
	tmpl, ok := v.pages[page]
	if !ok {
		v.logger.Error("unknown page template", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		v.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// layout is the part of every view model that base.html reads.
type layout struct {
	Title  string
	Active string // nav entry to highlight
	Admin  bool   // signed in: show admin links and the snippet editor
	Flash  *Flash
}
