package services

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	FormatTXT = "txt"
	FormatPDF = "pdf"
)

// Export is a rendered download: the payload plus the headers it is served with.
type Export struct {
	Data        []byte
	ContentType string
	Filename    string
}

type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

// Render converts summary text into format. The base name is used for the
// suggested download filename.
func (e *Exporter) Render(text, format, baseName string) (*Export, error) {
	switch format {
	case FormatTXT:
		return &Export{
			Data:        []byte(text),
			ContentType: "text/plain; charset=utf-8",
			Filename:    baseName + ".txt",
		}, nil
	case FormatPDF:
		data, err := renderPDF(text)
		if err != nil {
			return nil, fmt.Errorf("failed to render pdf: %w", err)
		}
		return &Export{
			Data:        data,
			ContentType: "application/pdf",
			Filename:    baseName + ".pdf",
		}, nil
	default:
		return nil, &ValidationError{
			Message: "Unsupported export format",
			Fields:  map[string]string{"format": "Format must be txt or pdf"},
		}
	}
}

// renderPDF lays text out as a single wrapped paragraph on A4 portrait pages.
// The core Helvetica font covers cp1252 only, so text is translated first and
// any rune outside cp1252 (CJK, Cyrillic, emoji) is printed as '.'. The txt
// export keeps the text intact.
func renderPDF(text string) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Summary", true)
	doc.AddPage()
	doc.SetFont("Helvetica", "", 11)

	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.MultiCell(0, 5, tr(text), "", "L", false)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
