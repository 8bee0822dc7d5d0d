package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/yourorg/pkgaudit/internal/scanner"
)

// pdfPageLimit bounds how many pages a single scanner category's findings
// may occupy before a "+N more findings omitted" footer cuts it off.
// Grounded on the teacher's addReportToPDF pdfPageLimit truncation
// (internal/reporter/reporter.go), narrowed from a whole-report page
// budget to a per-category one since this spec renders one page per
// scanner rather than one page per package.
const pdfPageLimit = 1

var (
	colorDark  = [3]int{36, 41, 46}
	colorGray  = [3]int{106, 115, 125}
	colorRed   = [3]int{215, 58, 73}
	colorGreen = [3]int{40, 167, 69}
)

func renderPDF(w io.Writer, r Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Arial", "I", 8)
		pdf.Cell(0, 10, fmt.Sprintf("pre-install audit: %s", r.Package.Name))
		pdf.Ln(10)
	})

	addCoverPage(pdf, r)

	for _, result := range r.Scanners {
		addScannerPage(pdf, result)
	}

	return pdf.Output(w)
}

func addCoverPage(pdf *fpdf.Fpdf, r Report) {
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(colorDark[0], colorDark[1], colorDark[2])
	pdf.Cell(0, 12, fmt.Sprintf("%s@%s", r.Package.Name, r.Package.Version))
	pdf.Ln(14)

	pdf.SetFillColor(246, 248, 250)
	pdf.Rect(10, pdf.GetY(), 190, 26, "F")
	pdf.SetY(pdf.GetY() + 4)
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(95, 6, "  license: "+valueOr(r.Package.License, "unknown"))
	pdf.Cell(95, 6, fmt.Sprintf("dependencies: %d direct", len(r.Package.Dependencies)))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, "  repository: "+valueOr(r.Package.RepositoryURL, "none declared"))
	pdf.Ln(14)

	pdf.SetFont("Arial", "B", 14)
	scoreColor := colorGreen
	if r.Score < 60 {
		scoreColor = colorRed
	} else if r.Score < 90 {
		scoreColor = [3]int{227, 98, 9}
	}
	pdf.SetTextColor(scoreColor[0], scoreColor[1], scoreColor[2])
	pdf.Cell(0, 10, fmt.Sprintf("Score %d/100 — Grade %s — %s", r.Score, r.Grade, r.Verdict))
	pdf.SetTextColor(colorDark[0], colorDark[1], colorDark[2])
	pdf.Ln(14)

	if r.GitHub != nil && r.GitHub.Found {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(0, 6, "Repository health")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 9)
		pdf.Cell(0, 5, fmt.Sprintf("%s/%s — %d stars, archived: %v, publisher matches owner: %v", r.GitHub.Owner, r.GitHub.Name, r.GitHub.Stars, r.GitHub.Archived, r.GitHub.PublisherMatchesOwner))
		pdf.Ln(10)
	}

	if r.PolicyPassed != nil {
		pdf.SetFont("Arial", "B", 11)
		if *r.PolicyPassed {
			pdf.SetTextColor(colorGreen[0], colorGreen[1], colorGreen[2])
			pdf.Cell(0, 6, "Policy gate: passed")
		} else {
			pdf.SetTextColor(colorRed[0], colorRed[1], colorRed[2])
			pdf.Cell(0, 6, "Policy gate: failed")
		}
		pdf.SetTextColor(colorDark[0], colorDark[1], colorDark[2])
	}
}

func addScannerPage(pdf *fpdf.Fpdf, result scanner.Result) {
	pdf.AddPage()
	startPage := pdf.PageNo()

	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(colorDark[0], colorDark[1], colorDark[2])
	pdf.Cell(0, 10, result.Scanner)
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(colorGray[0], colorGray[1], colorGray[2])
	pdf.Cell(0, 6, result.Summary)
	pdf.SetTextColor(colorDark[0], colorDark[1], colorDark[2])
	pdf.Ln(10)

	if len(result.Findings) == 0 {
		return
	}

	displayed := 0
	truncated := false
	for _, f := range result.Findings {
		currentPage := pdf.PageNo()
		if currentPage-startPage >= pdfPageLimit && pdf.GetY() > 240 {
			truncated = true
			break
		}

		displayed++

		pdf.SetFont("Arial", "B", 10)
		switch f.Severity {
		case scanner.SeverityCritical:
			pdf.SetTextColor(colorRed[0], colorRed[1], colorRed[2])
		case scanner.SeverityWarning:
			pdf.SetTextColor(227, 98, 9)
		default:
			pdf.SetTextColor(colorGray[0], colorGray[1], colorGray[2])
		}
		pdf.Cell(0, 6, fmt.Sprintf("[%s] %s", severityLabel(f.Severity), f.Message))
		pdf.Ln(5)

		if f.File != "" {
			pdf.SetFont("Arial", "I", 8)
			pdf.SetTextColor(colorGray[0], colorGray[1], colorGray[2])
			loc := f.File
			if f.Line > 0 {
				loc = fmt.Sprintf("%s:%d", f.File, f.Line)
			}
			pdf.Cell(0, 4, loc)
			pdf.Ln(4)
		}

		pdf.SetTextColor(colorDark[0], colorDark[1], colorDark[2])
		pdf.Ln(2)
		pdf.SetDrawColor(234, 236, 239)
		pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
		pdf.Ln(3)
	}

	if truncated {
		remaining := len(result.Findings) - displayed
		pdf.SetFont("Arial", "I", 9)
		pdf.SetTextColor(colorGray[0], colorGray[1], colorGray[2])
		pdf.Cell(0, 6, fmt.Sprintf("+%d more findings omitted", remaining))
	}
}
