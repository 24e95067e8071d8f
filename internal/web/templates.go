package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"shift-checklist/internal/checklist"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

var pages = []string{"login", "index", "history"}

func stateClass(s checklist.State) string {
	switch s {
	case checklist.StateOK:
		return "cell-ok"
	case checklist.StateNG:
		return "cell-ng"
	default:
		return "cell-empty"
	}
}

func inc(n int) int { return n + 1 }

// parseTemplates builds one template set per page, each sharing the layout
// and partials.
func parseTemplates() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"stateClass": stateClass,
		"inc":        inc,
	}
	base, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/layout.gohtml", "templates/partials.gohtml")
	if err != nil {
		return nil, err
	}
	out := make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, "templates/"+p+".gohtml"); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		out[p] = t
	}
	return out, nil
}

func (s *Server) render(w http.ResponseWriter, status int, page string, data any) {
	tpl, ok := s.pages[page]
	if !ok {
		s.log.Error("unknown page", zap.String("page", page))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.log.Error("template error", zap.String("page", page), zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
