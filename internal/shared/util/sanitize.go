package util

import (
	"errors"
	"strings"
)

// maxFileNameLen caps stored names; longer names keep their extension.
const maxFileNameLen = 255

// SanitizeFileName normalizes an uploaded file name for storage and for
// Content-Disposition headers: path separators become underscores,
// traversal patterns are rejected, and control characters and quotes
// are stripped.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '"' {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return "", errors.New("invalid file name")
	}
	if len(s) > maxFileNameLen {
		if dot := strings.LastIndex(s, "."); dot > 0 && len(s)-dot <= 16 {
			ext := s[dot:]
			s = s[:maxFileNameLen-len(ext)] + ext
		} else {
			s = s[:maxFileNameLen]
		}
	}
	return s, nil
}
