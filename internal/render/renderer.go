package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/giftflow/certgen-backend/internal/application/errs"
	"github.com/giftflow/certgen-backend/internal/infra/db"
	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"
	"github.com/shopspring/decimal"
)

// CertificateData carries the dynamic values drawn onto a template page.
type CertificateData struct {
	CertificateID   string
	FirstName       string
	LastName        string
	Amount          decimal.Decimal
	IssueDate       time.Time
	ExpiresAt       time.Time
	Message         string
	FromName        string
	CertificateCode string
}

// Wrapped message lines advance by a fixed 20pt per line.
const lineHeight = 20.0

// importMu serializes template imports: the gofpdf bridge in gofpdi goes
// through a package-level importer that is not safe for concurrent use.
var importMu sync.Mutex

type Renderer struct {
	outputDir string
}

func NewRenderer(outputDir string) *Renderer {
	return &Renderer{outputDir: outputDir}
}

// Render overlays certificate fields onto page one of the template document
// and writes exactly one file, <certificate id>.pdf, into the output dir.
// Output is buffered and staged through a temp file so a failed render never
// leaves a partial artifact behind.
func (r *Renderer) Render(template *db.Template, data CertificateData) (string, error) {
	if _, err := os.Stat(template.FilePath); err != nil {
		return "", errs.RenderError{Err: fmt.Errorf("template file not found: %w", err)}
	}

	importMu.Lock()
	pdf, pageWidth, pageHeight, err := overlayTemplatePage(template.FilePath)
	importMu.Unlock()
	if err != nil {
		return "", errs.RenderError{Err: err}
	}

	mapping, err := ParseMapping(template.FieldMapping)
	if err != nil {
		mapping = DefaultMapping(pageWidth, pageHeight)
	}

	r.drawFields(pdf, mapping, data)
	if err := pdf.Error(); err != nil {
		return "", errs.RenderError{Err: err}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return "", errs.RenderError{Err: err}
	}
	path, err := r.writeAtomic(data.CertificateID, buf.Bytes())
	if err != nil {
		return "", errs.RenderError{Err: err}
	}
	return path, nil
}

// overlayTemplatePage imports page one of the source document as the page
// background. gofpdi panics on unreadable documents, so the import runs
// behind a recover boundary and surfaces a plain error.
func overlayTemplatePage(path string) (pdf *gofpdf.Fpdf, w, h float64, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pdf, w, h = nil, 0, 0
			err = fmt.Errorf("can't import template page, %v", rec)
		}
	}()

	pdf = gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: gofpdf.SizeType{Wd: 595.28, Ht: 841.89}})
	tpl := gofpdi.ImportPage(pdf, path, 1, "/MediaBox")
	box := gofpdi.GetPageSizes()[1]["/MediaBox"]
	w, h = box["w"], box["h"]
	if w <= 0 || h <= 0 {
		return nil, 0, 0, fmt.Errorf("template page has no size")
	}

	orientation := "P"
	if w > h {
		orientation = "L"
	}
	pdf.AddPageFormat(orientation, gofpdf.SizeType{Wd: w, Ht: h})
	gofpdi.UseImportedTemplate(pdf, tpl, 0, 0, w, h)
	if importErr := pdf.Error(); importErr != nil {
		return nil, 0, 0, importErr
	}
	return pdf, w, h, nil
}

func (r *Renderer) drawFields(pdf *gofpdf.Fpdf, mapping FieldMapping, data CertificateData) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if style, ok := mapping["first_name"]; ok {
		drawText(pdf, tr, data.FirstName, style, true)
	}
	if style, ok := mapping["last_name"]; ok {
		drawText(pdf, tr, data.LastName, style, true)
	}
	if style, ok := mapping["amount"]; ok && !data.Amount.IsZero() {
		drawText(pdf, tr, fmt.Sprintf("%s RUB", data.Amount.String()), style, true)
	}
	if style, ok := mapping["issue_date"]; ok && !data.IssueDate.IsZero() {
		drawText(pdf, tr, formatDate(data.IssueDate), style, false)
	}
	if style, ok := mapping["expires_at"]; ok && !data.ExpiresAt.IsZero() {
		drawText(pdf, tr, "Valid until: "+formatDate(data.ExpiresAt), style, false)
	}
	if style, ok := mapping["certificate_code"]; ok {
		drawText(pdf, tr, data.CertificateCode, style, false)
	}
	if style, ok := mapping["message"]; ok && data.Message != "" {
		maxWidth := style.MaxWidth
		if maxWidth == 0 {
			maxWidth = 400
		}
		fontSize := style.FontSize
		if fontSize == 0 {
			fontSize = 14
		}
		baseY := style.Y
		if baseY == 0 {
			baseY = 200
		}
		for i, line := range WrapText(data.Message, maxWidth, fontSize) {
			lineStyle := style
			lineStyle.Y = baseY + float64(i)*lineHeight
			drawText(pdf, tr, line, lineStyle, false)
		}
	}
	if style, ok := mapping["from_name"]; ok {
		drawText(pdf, tr, data.FromName, style, false)
	}
}

// drawText places the text baseline at the mapping's top-down y. gofpdf user
// space shares that convention; the flip into PDF's bottom-up coordinates
// happens when the content stream is emitted.
func drawText(pdf *gofpdf.Fpdf, tr func(string) string, text string, style FieldStyle, bold bool) {
	if text == "" {
		return
	}
	fontStyle := ""
	if bold {
		fontStyle = "B"
	}
	fontSize := style.FontSize
	if fontSize == 0 {
		fontSize = 16
	}
	pdf.SetFont("Helvetica", fontStyle, fontSize)

	red, green, blue, ok := ParseHexColor(style.Color)
	if !ok {
		red, green, blue = 0, 0, 0
	}
	pdf.SetTextColor(red, green, blue)

	x := style.X
	if x == 0 {
		x = 100
	}
	y := style.Y
	if y == 0 {
		y = 100
	}
	pdf.Text(x, y, tr(text))
}

func (r *Renderer) writeAtomic(certificateID string, content []byte) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("can't create output dir, %v", err)
	}
	tmp, err := os.CreateTemp(r.outputDir, "render-*.pdf")
	if err != nil {
		return "", fmt.Errorf("can't create temp file, %v", err)
	}
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("can't write pdf, %v", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("can't close pdf, %v", err)
	}
	outputPath := filepath.Join(r.outputDir, certificateID+".pdf")
	if err := os.Rename(tmp.Name(), outputPath); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("can't move pdf into place, %v", err)
	}
	return outputPath, nil
}

func formatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}
