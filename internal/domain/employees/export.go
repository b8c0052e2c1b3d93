package employees

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// WriteDirectoryPDF renders rows as a one-table A4 document.
func WriteDirectoryPDF(w io.Writer, rows []Row, generatedAt time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Employee directory", true)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Employee directory")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s, %d employees", generatedAt.Format("2006-01-02 15:04"), len(rows)))
	pdf.Ln(10)

	widths := []float64{55, 40, 35, 60}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, header := range []string{"Name", "Username", "Role", "Department"} {
		pdf.CellFormat(widths[i], 7, header, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		cells := []string{
			row.Personal.FullName(),
			row.Personal.Username,
			row.Job.Role.Label(),
			row.Job.Department.Label(),
		}
		for i, value := range cells {
			pdf.CellFormat(widths[i], 7, tr(value), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}
