package services

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extractor turns an uploaded document into plain text.
type Extractor interface {
	Extract(filename, contentType string, data []byte) (string, error)
}

type FileExtractService struct{}

func NewFileExtractService() *FileExtractService {
	return &FileExtractService{}
}

const (
	docKindPDF   = "pdf"
	docKindDOCX  = "docx"
	docKindPlain = "plain"
)

func documentKind(filename, contentType string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return docKindPDF
	case ".docx":
		return docKindDOCX
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return docKindPlain
	}
	switch mediaType {
	case "application/pdf":
		return docKindPDF
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return docKindDOCX
	default:
		return docKindPlain
	}
}

// Extract dispatches on the file extension, falling back to the declared
// content type. Unknown kinds are decoded as UTF-8 with invalid bytes dropped.
// Parse failures are returned as *ExtractionError.
func (s *FileExtractService) Extract(filename, contentType string, data []byte) (text string, err error) {
	switch documentKind(filename, contentType) {
	case docKindPDF:
		text, err = extractPDF(data)
	case docKindDOCX:
		text, err = extractDOCX(data)
	default:
		text = strings.ToValidUTF8(string(data), "")
	}
	if err != nil {
		return "", &ExtractionError{Err: err}
	}
	return text, nil
}

func extractPDF(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	totalPage := reader.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", pageIndex, err)
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	return b.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	for _, f := range r.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()

		documentXML, err := io.ReadAll(rc)
		if err != nil {
			return "", err
		}
		return stripDOCXML(documentXML), nil
	}

	return "", errors.New("docx document.xml not found")
}

var xmlTagPattern = regexp.MustCompile(`<[^>]+>`)

func stripDOCXML(src []byte) string {
	s := string(src)

	// DOCX paragraphs and line breaks
	s = strings.ReplaceAll(s, "</w:p>", "\n")
	s = strings.ReplaceAll(s, "<w:br/>", "\n")
	s = strings.ReplaceAll(s, "<w:br />", "\n")
	s = strings.ReplaceAll(s, "<w:tab/>", "\t")

	s = xmlTagPattern.ReplaceAllString(s, "")

	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
	return replacer.Replace(s)
}
