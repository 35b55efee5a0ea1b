package api

import (
	"embed"
	"html/template"
	"strings"

	"github.com/patcharlton/chamonix-ski-status/internal/models"
)

//go:embed templates/*
var templateFS embed.FS

// newTemplates creates and parses the HTML templates with custom functions.
func newTemplates() *template.Template {
	funcs := template.FuncMap{
		"deref": func(f *float64) float64 {
			if f == nil {
				return 0
			}
			return *f
		},
		"derefInt": func(i *int) int {
			if i == nil {
				return 0
			}
			return *i
		},
		"hasValue": func(f *float64) bool { return f != nil },
		"snowLabel": func(q *string) string {
			if q == nil {
				return ""
			}
			return models.SnowQualityLabel(*q)
		},
		"riskLabel": models.AvalancheRiskLabel,
		"upper":     strings.ToUpper,
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}
