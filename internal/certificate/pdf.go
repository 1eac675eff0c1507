package certificate

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/kingrea/secureaware/internal/catalog"
)

const issueDateLayout = "January 2, 2006"

// Recipient names the learner a certificate is awarded to.
type Recipient struct {
	Name       string
	Role       string
	Department string
}

// Detail is everything the certificate view and the PDF export render.
type Detail struct {
	Certificate Certificate
	Module      catalog.Module
	Recipient   Recipient
}

// FormatIssueDate renders an issue date the way certificates display it.
func FormatIssueDate(c Certificate) string {
	return c.IssueDate.Format(issueDateLayout)
}

// ExportPDF renders d as a one-page landscape certificate into w.
func ExportPDF(w io.Writer, d Detail) error {
	pdf := render(d)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("certificate: render pdf: %w", err)
	}
	return nil
}

// ExportFile writes the certificate PDF to path.
func ExportFile(path string, d Detail) error {
	pdf := render(d)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("certificate: write %s: %w", path, err)
	}
	return nil
}

// FileName suggests a file name for an exported certificate.
func FileName(c Certificate) string {
	return c.ID + ".pdf"
}

func render(d Detail) *gofpdf.Fpdf {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Certificate of Completion", true)
	pdf.SetAuthor("SecureAware", true)
	pdf.AddPage()

	width, height := pdf.GetPageSize()
	pdf.SetLineWidth(1.5)
	pdf.SetDrawColor(37, 99, 235)
	pdf.Rect(10, 10, width-20, height-20, "D")
	pdf.SetLineWidth(0.4)
	pdf.Rect(14, 14, width-28, height-28, "D")

	pdf.SetY(34)
	pdf.SetFont("Arial", "B", 30)
	pdf.SetTextColor(30, 41, 59)
	pdf.CellFormat(0, 14, "Certificate of Completion", "", 1, "C", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont("Arial", "", 14)
	pdf.SetTextColor(71, 85, 105)
	pdf.CellFormat(0, 8, "This certifies that", "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(30, 41, 59)
	pdf.CellFormat(0, 12, d.Recipient.Name, "", 1, "C", false, 0, "")
	if sub := recipientLine(d.Recipient); sub != "" {
		pdf.SetFont("Arial", "I", 12)
		pdf.SetTextColor(100, 116, 139)
		pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "", 14)
	pdf.SetTextColor(71, 85, 105)
	pdf.CellFormat(0, 8, "has successfully completed the security awareness module", "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 20)
	pdf.SetTextColor(37, 99, 235)
	pdf.CellFormat(0, 10, d.Certificate.ModuleName, "", 1, "C", false, 0, "")
	if desc := strings.TrimSpace(d.Module.Description); desc != "" {
		pdf.SetFont("Arial", "", 11)
		pdf.SetTextColor(100, 116, 139)
		pdf.SetX(40)
		pdf.MultiCell(width-80, 6, desc, "", "C", false)
	}

	pdf.SetY(height - 48)
	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(71, 85, 105)
	half := (width - 40) / 2
	pdf.SetX(20)
	pdf.CellFormat(half, 6, "Issue date: "+FormatIssueDate(d.Certificate), "", 0, "C", false, 0, "")
	pdf.CellFormat(half, 6, "Certificate no. "+d.Certificate.CertificateNumber, "", 1, "C", false, 0, "")
	if d.Module.Level != "" {
		pdf.SetX(20)
		pdf.CellFormat(half, 6, "Level: "+string(d.Module.Level), "", 0, "C", false, 0, "")
		pdf.CellFormat(half, 6, fmt.Sprintf("Duration: %d minutes", d.Module.Duration), "", 1, "C", false, 0, "")
	}
	return pdf
}

func recipientLine(r Recipient) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{r.Role, r.Department} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
