package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/inodb/vibe-amr/internal/report"
)

// Letter page layout in points.
const (
	pdfMargin     = 54.0
	pdfLineHeight = 14.0
	pdfFont       = "Helvetica"
)

// runDate returns the report date without fractional seconds.
func runDate(doc *report.Document) string {
	date, _, _ := strings.Cut(doc.Date, ".")
	return date
}

// RenderPDF writes the report as a Letter-sized PDF with page numbers in
// the footer.
func RenderPDF(w io.Writer, doc *report.Document) error {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(doc.Title, true)
	pdf.SetSubject(doc.SampleID, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-36)
		pdf.SetFont(pdfFont, "", 10)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pageWidth, _ := pdf.GetPageSize()
	bodyWidth := pageWidth - 2*pdfMargin

	pdf.SetFont(pdfFont, "B", 18)
	pdf.CellFormat(bodyWidth, 24, tr(doc.Title), "", 1, "C", false, 0, "")
	pdf.Ln(12)

	half := bodyWidth / 2
	labelled := func(label, value string, ln int) {
		pdf.SetFont(pdfFont, "B", 10)
		lw := pdf.GetStringWidth(label) + 4
		pdf.CellFormat(lw, pdfLineHeight, label, "", 0, "L", false, 0, "")
		pdf.SetFont(pdfFont, "", 10)
		pdf.CellFormat(half-lw, pdfLineHeight, tr(value), "", ln, "L", false, 0, "")
	}
	labelled("Date:", runDate(doc), 0)
	labelled("Pipeline:", doc.Pipeline.Name+" "+doc.Pipeline.Version, 1)
	labelled("Sample ID:", doc.SampleID, 0)
	labelled("Lineage:", fmt.Sprintf("%s(%s)", doc.Lineage.Code, doc.Lineage.Name), 1)

	heading := func(text string) {
		pdf.Ln(10)
		pdf.SetFont(pdfFont, "B", 12)
		pdf.CellFormat(bodyWidth, 18, text, "", 1, "L", false, 0, "")
	}
	table := func(widths []float64, header []string, rows [][]string) {
		right := len(widths) - 1
		pdf.SetFont(pdfFont, "B", 10)
		for i, h := range header {
			align := "L"
			if i == right {
				align = "R"
			}
			pdf.CellFormat(widths[i], pdfLineHeight, h, "B", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(pdfFont, "", 10)
		for _, row := range rows {
			for i, v := range row {
				align := "L"
				if i == right {
					align = "R"
				}
				pdf.CellFormat(widths[i], pdfLineHeight, tr(v), "", 0, align, false, 0, "")
			}
			pdf.Ln(-1)
		}
	}
	none := func() {
		pdf.SetFont(pdfFont, "", 10)
		pdf.CellFormat(bodyWidth, pdfLineHeight, "     None", "", 1, "L", false, 0, "")
	}

	covWidths := []float64{bodyWidth * 0.5, bodyWidth * 0.25, bodyWidth * 0.25}
	covHeader := []string{"gene", "depth", "coverage %"}

	heading("Coverage:")
	table(covWidths, covHeader, coverageRows(doc.Coverage.Genes))

	heading("Coverage Gaps:")
	if len(doc.CoverageGaps.Genes) == 0 {
		none()
	} else {
		table(covWidths, covHeader, coverageRows(doc.CoverageGaps.Genes))
	}

	heading("Deletions:")
	if len(doc.Deletions.Loci) == 0 {
		none()
	} else {
		rows := make([][]string, 0, len(doc.Deletions.Loci))
		for _, d := range doc.Deletions.Loci {
			rows = append(rows, []string{d.Name, d.Type})
		}
		table([]float64{bodyWidth * 0.6, bodyWidth * 0.4}, []string{"gene", "type"}, rows)
	}

	heading("Resistance List")
	var mutRows [][]string
	for _, r := range doc.MutationRows() {
		mutRows = append(mutRows, []string{r.Gene, r.NucChange, r.AAChange, r.Drug, r.Confidence})
	}
	table([]float64{bodyWidth * 0.14, bodyWidth * 0.24, bodyWidth * 0.24, bodyWidth * 0.2, bodyWidth * 0.18},
		[]string{"gene", "nucleotide change", "amino acid change", "drug", "confidence"}, mutRows)

	heading("Low Quality Segments")
	if len(doc.LowQuality.Segments) == 0 {
		none()
	} else {
		rows := make([][]string, 0, len(doc.LowQuality.Segments))
		for _, s := range doc.LowQuality.Segments {
			rows = append(rows, []string{s.RefPos, s.Ref, s.Alt, s.QualDetail})
		}
		table([]float64{bodyWidth * 0.25, bodyWidth * 0.15, bodyWidth * 0.15, bodyWidth * 0.45},
			[]string{"position", "ref", "alt", "detail"}, rows)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func coverageRows(entries []report.CoverageEntry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Name, e.Depth, e.Percent})
	}
	return rows
}
