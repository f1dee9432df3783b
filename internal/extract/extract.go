// Package extract pulls a short plain-text excerpt out of uploaded
// documents, used to auto-fill an empty file description.
package extract

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const mimePDF = "application/pdf"

// ExcerptLimit caps the number of characters kept from a document.
const ExcerptLimit = 280

// Excerpt extracts a short text excerpt from a document payload. Only
// PDFs are supported; other types return an error the caller is
// expected to swallow.
func Excerpt(data []byte, mimeType, fileName string) (string, error) {
	if !isPDF(mimeType, fileName, data) {
		return "", errors.New("unsupported document type")
	}
	text, err := extractPDF(data)
	if err != nil {
		return "", err
	}
	return truncate(collapseWhitespace(text), ExcerptLimit), nil
}

func isPDF(mimeType, fileName string, data []byte) bool {
	if strings.EqualFold(strings.TrimSpace(mimeType), mimePDF) {
		return true
	}
	if strings.EqualFold(filepath.Ext(fileName), ".pdf") {
		return true
	}
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := s[:limit]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut
}
