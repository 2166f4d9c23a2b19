// Package output renders surveillance report documents as text, TSV, HTML
// and PDF.
package output

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/inodb/vibe-amr/internal/report"
)

// Format is a rendered output format.
type Format string

// Supported formats.
const (
	FormatHTML Format = "HTML"
	FormatPDF  Format = "PDF"
	FormatText Format = "TEXT"
	FormatTSV  Format = "TSV"
)

// Renderer writes doc to w in one format.
type Renderer func(w io.Writer, doc *report.Document) error

var (
	renderers  = map[Format]Renderer{}
	extensions = map[Format]string{}
)

// Register adds a renderer for format, replacing any existing one.
func Register(format Format, ext string, fn Renderer) {
	renderers[format] = fn
	extensions[format] = ext
}

func init() {
	Register(FormatHTML, "html", RenderHTML)
	Register(FormatPDF, "pdf", RenderPDF)
	Register(FormatText, "txt", RenderText)
	Register(FormatTSV, "tsv", RenderTSV)
}

// Render writes doc in the given format.
func Render(format Format, w io.Writer, doc *report.Document) error {
	fn, ok := renderers[format]
	if !ok {
		return fmt.Errorf("unknown output format %q (no renderer registered)", format)
	}
	return fn(w, doc)
}

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := renderers[f]; !ok {
		return "", fmt.Errorf("unknown output format %q (valid: %s)", s, strings.Join(FormatNames(), ", "))
	}
	return f, nil
}

// Extension returns the file extension for format, without the dot.
func Extension(format Format) string {
	return extensions[format]
}

// FormatNames lists the registered formats in sorted order.
func FormatNames() []string {
	names := make([]string, 0, len(renderers))
	for f := range renderers {
		names = append(names, string(f))
	}
	slices.Sort(names)
	return names
}
