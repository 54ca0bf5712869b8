package services

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDocumentKind(t *testing.T) {
	tests := []struct {
		filename    string
		contentType string
		want        string
	}{
		{"book.pdf", "", docKindPDF},
		{"BOOK.PDF", "application/octet-stream", docKindPDF},
		{"upload", "application/pdf", docKindPDF},
		{"notes.docx", "", docKindDOCX},
		{"notes", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", docKindDOCX},
		{"notes.txt", "text/plain; charset=utf-8", docKindPlain},
		{"data.csv", "", docKindPlain},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, documentKind(tc.filename, tc.contentType), tc.filename)
	}
}

func TestExtractPlainDropsInvalidUTF8(t *testing.T) {
	svc := NewFileExtractService()

	text, err := svc.Extract("notes.txt", "text/plain", []byte("caf\xc3\xa9 \xff\xfebytes"))
	require.NoError(t, err)
	assert.Equal(t, "café bytes", text)
}

func TestExtractDOCX(t *testing.T) {
	svc := NewFileExtractService()
	doc := buildDOCX(t, `<w:document><w:body>`+
		`<w:p><w:r><w:t>Chapter &amp; One</w:t></w:r></w:p>`+
		`<w:p><w:r><w:t>Second</w:t><w:br/><w:t>line</w:t></w:r></w:p>`+
		`</w:body></w:document>`)

	text, err := svc.Extract("book.docx", "", doc)
	require.NoError(t, err)
	assert.Equal(t, "Chapter & One Second line", CleanText(text))
}

func TestExtractMalformedDocuments(t *testing.T) {
	svc := NewFileExtractService()

	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{"pdf header missing", "book.pdf", []byte("this is not a pdf")},
		{"docx not a zip", "book.docx", []byte("plain bytes")},
		{"empty pdf upload", "book.pdf", []byte{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Extract(tc.filename, "", tc.data)
			var extErr *ExtractionError
			require.ErrorAs(t, err, &extErr)
			assert.NotNil(t, extErr.Unwrap())
		})
	}
}

func TestExtractDOCXMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = NewFileExtractService().Extract("book.docx", "", buf.Bytes())
	var extErr *ExtractionError
	assert.ErrorAs(t, err, &extErr)
}
