// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package gate

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templates embed.FS

type templateHandler struct {
	home   *template.Template
	ticket *template.Template
}

func newTemplateHandler() *templateHandler {
	return &templateHandler{
		home:   template.Must(template.ParseFS(templates, "templates/main.html", "templates/home.html")),
		ticket: template.Must(template.ParseFS(templates, "templates/main.html", "templates/ticket.html")),
	}
}
