package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"coursegen-backend/internal/models"
)

const (
	pageMarginX  = 20.0
	textWidth    = 170.0
	footerY      = 287.0
	fontFamily   = "Helvetica"
	footerFontSz = 9.0
)

type fontSpec struct {
	style string
	size  float64
	gray  int
}

var fonts = map[Style]fontSpec{
	StyleTitle:      {"B", 20, 17},
	StyleMeta:       {"I", 10, 90},
	StyleHeading:    {"B", 15, 17},
	StyleSubheading: {"B", 12, 40},
	StyleBody:       {"", 11, 17},
	StyleBullet:     {"", 11, 40},
}

// ExportPDF lays out a document or full-course record as an A4 PDF with a
// "Page N of T" footer on every page.
func ExportPDF(rec *models.CourseRecord) ([]byte, error) {
	content, err := checkContent(rec)
	if err != nil {
		return nil, err
	}

	blocks := headerBlocks(rec)
	switch c := content.(type) {
	case *models.Document:
		blocks = append(blocks, documentBlocks(c)...)
	case *models.Course:
		blocks = append(blocks, courseBlocks(c)...)
	default:
		return nil, ErrExportNotSupported
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(rec.Title, true)
	pdf.SetCreator("coursegen", false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	setFont := func(s Style) {
		f := fonts[s]
		pdf.SetFont(fontFamily, f.style, f.size)
		pdf.SetTextColor(f.gray, f.gray, f.gray)
	}
	wrap := func(text string, s Style) []string {
		setFont(s)
		return wrapWords(tr(text), func(line string) bool {
			return pdf.GetStringWidth(line) <= textWidth
		})
	}

	pages := Paginate(blocks, wrap, DefaultLayout)
	for _, page := range pages {
		pdf.AddPage()
		for _, line := range page.Lines {
			setFont(line.Style)
			pdf.Text(pageMarginX, line.Y, line.Text)
		}
		pdf.SetFont(fontFamily, "", footerFontSz)
		pdf.SetTextColor(120, 120, 120)
		footer := FooterText(page.Number, len(pages))
		pdf.Text(pageMarginX+textWidth-pdf.GetStringWidth(footer), footerY, footer)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
