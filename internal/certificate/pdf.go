// Package certificate renders completion certificates as PDF documents.
package certificate

import (
	"fmt"
	"io"
	"os"

	"github.com/signintech/gopdf"
	"github.com/smsi-platform/smsi-backend/internal/model"
)

const fontFamily = "certificate"

// A4 portrait layout, expressed in millimetres and converted to points.
const pageWidthMM = 210.0

type rgb struct{ r, g, b uint8 }

var (
	colorBlue      = rgb{59, 130, 246}
	colorLightBlue = rgb{147, 197, 253}
	colorDark      = rgb{31, 41, 55}
	colorGray      = rgb{107, 114, 128}
	colorGreen     = rgb{16, 185, 129}
	colorPaper     = rgb{248, 250, 252}
)

// PDFRenderer draws certificates with gopdf using a TrueType font.
type PDFRenderer struct {
	fontPath string
}

// NewPDFRenderer creates a renderer that loads its font from fontPath.
func NewPDFRenderer(fontPath string) *PDFRenderer {
	return &PDFRenderer{fontPath: fontPath}
}

// Check reports whether the font file is readable.
func (r *PDFRenderer) Check() error {
	if _, err := os.Stat(r.fontPath); err != nil {
		return fmt.Errorf("certificate font: %w", err)
	}
	return nil
}

// ContentType implements service.CertificateRenderer.
func (r *PDFRenderer) ContentType() string { return "application/pdf" }

// Extension implements service.CertificateRenderer.
func (r *PDFRenderer) Extension() string { return "pdf" }

func mm(v float64) float64 { return v * 72 / 25.4 }

// Render writes a one-page certificate to w.
func (r *PDFRenderer) Render(w io.Writer, data *model.CertificateData) error {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	if err := pdf.AddTTFFont(fontFamily, r.fontPath); err != nil {
		return fmt.Errorf("load font: %w", err)
	}

	d := &drawer{pdf: pdf}
	d.background()
	d.text(24, colorDark, 58, "SMSI Platform")
	d.text(12, colorGray, 68, "Cybersecurity Awareness Training")
	d.text(36, colorBlue, 92, "CERTIFICATE")
	d.text(18, colorDark, 108, "OF COMPLETION")
	d.line(colorBlue, 1, 60, 125, 150, 125)

	d.text(14, colorDark, 140, "This is to certify that")
	d.text(28, colorBlue, 158, data.UserName)
	d.text(14, colorDark, 180, "has successfully completed the cybersecurity training module")
	d.text(20, colorGreen, 198, fmt.Sprintf("%q", data.ModuleTitle))
	d.text(12, colorDark, 220, fmt.Sprintf("with a score of %.1f%% on %s",
		data.Score, data.CompletedAt.Format("January 2, 2006")))
	d.text(10, colorGray, 235, "This training is compliant with ISO 27001, ISO 27002, ISO 27005, and RGPD regulations")

	d.line(colorGray, 0.5, 130, 260, 180, 260)
	d.textAt(10, colorGray, 130, 263, 50, "Authorized Signature")
	d.textAt(10, colorGray, 30, 263, 80, "Date: "+data.CompletedAt.Format("2006-01-02"))
	d.textAt(8, colorGray, 30, 274, 120, "Certificate ID: "+data.CertificateID)

	d.text(8, colorGray, 284, "This certificate verifies completion of cybersecurity awareness training")
	d.text(8, colorGray, 289, "and demonstrates commitment to information security best practices.")

	if d.err != nil {
		return d.err
	}
	_, err := pdf.WriteTo(w)
	return err
}

// drawer keeps the first drawing error so the layout code reads linearly.
type drawer struct {
	pdf *gopdf.GoPdf
	err error
}

func (d *drawer) background() {
	if d.err != nil {
		return
	}
	p := d.pdf
	p.SetFillColor(colorPaper.r, colorPaper.g, colorPaper.b)
	p.RectFromUpperLeftWithStyle(0, 0, mm(pageWidthMM), mm(297), "F")

	p.SetStrokeColor(colorBlue.r, colorBlue.g, colorBlue.b)
	p.SetLineWidth(mm(2))
	p.RectFromUpperLeftWithStyle(mm(10), mm(10), mm(190), mm(277), "D")

	p.SetStrokeColor(colorLightBlue.r, colorLightBlue.g, colorLightBlue.b)
	p.SetLineWidth(mm(0.5))
	p.RectFromUpperLeftWithStyle(mm(15), mm(15), mm(180), mm(267), "D")
}

func (d *drawer) line(c rgb, width, x1, y1, x2, y2 float64) {
	if d.err != nil {
		return
	}
	d.pdf.SetStrokeColor(c.r, c.g, c.b)
	d.pdf.SetLineWidth(mm(width))
	d.pdf.Line(mm(x1), mm(y1), mm(x2), mm(y2))
}

// text draws a line centred across the page at y millimetres.
func (d *drawer) text(size float64, c rgb, y float64, s string) {
	d.textAt(size, c, 15, y, pageWidthMM-30, s)
}

func (d *drawer) textAt(size float64, c rgb, x, y, width float64, s string) {
	if d.err != nil {
		return
	}
	if d.err = d.pdf.SetFont(fontFamily, "", size); d.err != nil {
		return
	}
	d.pdf.SetTextColor(c.r, c.g, c.b)
	d.pdf.SetXY(mm(x), mm(y))
	d.err = d.pdf.CellWithOption(&gopdf.Rect{W: mm(width), H: size * 1.4}, s, gopdf.CellOption{Align: gopdf.Center | gopdf.Middle})
}
