// Package renderer renders folio reports as markdown, HTML and JSON.
package renderer

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.md
var templates embed.FS

// Options holds configuration for rendering a report.
type Options struct {
	Date          date.Date // Date in the title of the report.
	SkipDividends bool      // Do not render the dividends section.
}

// view is the data of the report templates.
type view struct {
	*folio.Report
	Options
}

// RenderReport renders the report to a markdown string.
func RenderReport(r *folio.Report, opts Options) string {
	partials := map[string]string{
		"report_title":     "report_title.md",
		"report_positions": "report_positions.md",
		"report_totals":    "report_totals.md",
		"report_dividends": "report_dividends.md",
	}
	return renderTemplate("report", "report.md", partials, view{r, opts})
}

// RenderDividends renders the dividend attribution detail of the report to a
// markdown string.
func RenderDividends(r *folio.Report) string {
	return renderTemplate("dividends", "dividends.md", nil, view{Report: r})
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data view) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs(data.Currency)).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, "templates/"+file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}

// ToHTML converts a markdown document into a standalone HTML page.
func ToHTML(w io.Writer, title, markdown string) error {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return fmt.Errorf("cannot convert markdown to html: %w", err)
	}
	return page.Execute(w, struct {
		Title string
		Body  string
	}{title, body.String()})
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, r *folio.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
