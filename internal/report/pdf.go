package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/signintech/gopdf"

	"wellness-agent/internal/assessment"
)

// DefaultFontPaths are the usual DejaVu locations on Debian and Alpine images.
var DefaultFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
}

var ErrNoFont = errors.New("no usable TTF font for PDF export")

const (
	fontFamily   = "DejaVu"
	pageMargin   = 40.0
	textWidth    = 515.0
	lineHeight   = 13.0
	headingSize  = 16
	bodySize     = 10
	pageBottom   = 800.0
	headingGapPt = 24.0
)

// PDFBuilder lays rendered report text onto A4 pages.
type PDFBuilder struct {
	fontPaths []string
	renderer  *Renderer
}

func NewPDFBuilder(fontPaths []string) *PDFBuilder {
	if len(fontPaths) == 0 {
		fontPaths = DefaultFontPaths
	}
	return &PDFBuilder{fontPaths: fontPaths, renderer: NewRenderer()}
}

func (b *PDFBuilder) Build(s assessment.Session) ([]byte, error) {
	text := s.ReportText
	if text == "" {
		text = b.renderer.Render(&s)
	}

	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.SetMargins(pageMargin, pageMargin, pageMargin, pageMargin)

	if err := b.loadFont(&pdf); err != nil {
		return nil, err
	}

	pdf.AddPage()
	if err := pdf.SetFont(fontFamily, "", headingSize); err != nil {
		return nil, err
	}
	pdf.SetXY(pageMargin, pageMargin)
	if err := pdf.Cell(nil, fmt.Sprintf("Assessment report: %s", s.PatientName)); err != nil {
		return nil, err
	}
	pdf.Br(headingGapPt)

	if err := pdf.SetFont(fontFamily, "", bodySize); err != nil {
		return nil, err
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			pdf.Br(lineHeight / 2)
			continue
		}
		wrapped, err := pdf.SplitText(line, textWidth)
		if err != nil {
			return nil, fmt.Errorf("wrap report line: %w", err)
		}
		for _, l := range wrapped {
			if pdf.GetY() > pageBottom {
				pdf.AddPage()
				pdf.SetXY(pageMargin, pageMargin)
			}
			pdf.SetX(pageMargin)
			if err := pdf.Cell(nil, l); err != nil {
				return nil, err
			}
			pdf.Br(lineHeight)
		}
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (b *PDFBuilder) loadFont(pdf *gopdf.GoPdf) error {
	var lastErr error
	for _, path := range b.fontPaths {
		err := pdf.AddTTFFont(fontFamily, path)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("%w: last error: %v", ErrNoFont, lastErr)
}
