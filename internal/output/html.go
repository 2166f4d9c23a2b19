package output

import (
	"html/template"
	"io"

	"github.com/inodb/vibe-amr/internal/report"
)

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Doc.Title}} - {{.Doc.SampleID}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 2em; }
h1 { text-align: center; }
table { border-collapse: collapse; margin-bottom: 1em; }
th, td { padding: 2px 12px; text-align: left; }
th { font-weight: bold; }
td.num { text-align: right; }
</style>
</head>
<body>
<h1>{{.Doc.Title}}</h1>
<table class="header">
<tr><td><b>Date:</b> {{.Date}}</td><td><b>Pipeline:</b> {{.Doc.Pipeline.Name}} {{.Doc.Pipeline.Version}}</td></tr>
<tr><td><b>Sample ID:</b> {{.Doc.SampleID}}</td><td><b>Lineage:</b> {{.Doc.Lineage.Code}}({{.Doc.Lineage.Name}})</td></tr>
</table>
{{- range .Coverage}}
{{template "coverage" .}}
{{- end}}
<h3>Deletions:</h3>
{{- if .Doc.Deletions.Loci}}
<table>
<tr><th>gene</th><th>type</th></tr>
{{- range .Doc.Deletions.Loci}}
<tr><td>{{.Name}}</td><td>{{.Type}}</td></tr>
{{- end}}
</table>
{{- else}}
<p>None</p>
{{- end}}
<h3>Resistance List</h3>
<table>
<tr><th>gene</th><th>nucleotide change</th><th>amino acid change</th><th>drug</th><th>confidence</th></tr>
{{- range .Rows}}
<tr><td>{{.Gene}}</td><td>{{.NucChange}}</td><td>{{.AAChange}}</td><td>{{.Drug}}</td><td>{{.Confidence}}</td></tr>
{{- end}}
</table>
<h3>Low Quality Segments</h3>
{{- if .Doc.LowQuality.Segments}}
<table>
<tr><th>position</th><th>ref</th><th>alt</th><th>detail</th></tr>
{{- range .Doc.LowQuality.Segments}}
<tr><td>{{.RefPos}}</td><td>{{.Ref}}</td><td>{{.Alt}}</td><td>{{.QualDetail}}</td></tr>
{{- end}}
</table>
{{- else}}
<p>None</p>
{{- end}}
</body>
</html>
{{define "coverage"}}<h3>{{.Heading}}:</h3>
<table>
<tr><th>gene</th><th>depth</th><th>coverage %</th></tr>
{{- range .Entries}}
<tr><td>{{.Name}}</td><td class="num">{{.Depth}}</td><td class="num">{{.Percent}}</td></tr>
{{- end}}
</table>{{end}}
`))

type coverageTable struct {
	Heading string
	Entries []report.CoverageEntry
}

type htmlData struct {
	Doc      *report.Document
	Date     string
	Coverage []coverageTable
	Rows     []report.MutationRow
}

// RenderHTML writes the report as a standalone HTML page.
func RenderHTML(w io.Writer, doc *report.Document) error {
	return htmlTemplate.Execute(w, htmlData{
		Doc:  doc,
		Date: runDate(doc),
		Coverage: []coverageTable{
			{Heading: "Coverage", Entries: doc.Coverage.Genes},
			{Heading: "Coverage Gaps", Entries: doc.CoverageGaps.Genes},
		},
		Rows: doc.MutationRows(),
	})
}
