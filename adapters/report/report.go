// Package report renders the surfaced slices as a Markdown document and as
// standalone HTML.
package report

import (
	"fmt"
	"strings"

	"sliceinsight/internal/drilldown"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Report is the content of one rendered document
type Report struct {
	Title   string
	Summary []string
	Table   *drilldown.Table
}

// Markdown renders the report as GitHub-flavoured Markdown
func (r Report) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	for _, line := range r.Summary {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	if len(r.Summary) > 0 {
		b.WriteString("\n")
	}

	records := r.Table.Records()
	writeRow(&b, records[0])
	sep := make([]string, len(records[0]))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(&b, sep)
	for _, record := range records[1:] {
		writeRow(&b, record)
	}
	if r.Table.Len() == 0 {
		b.WriteString("\n_No segments surfaced._\n")
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, cell := range cells {
		b.WriteString(" ")
		b.WriteString(strings.ReplaceAll(cell, "|", `\|`))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

// HTML renders the report as a complete HTML page
func (r Report) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: r.Title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML([]byte(r.Markdown()), p, renderer)
}
