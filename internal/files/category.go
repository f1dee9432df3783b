package files

import (
	"path/filepath"
	"strings"
)

var documentHints = []string{"pdf", "document", "word", "excel", "powerpoint", "text"}

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {}, ".bmp": {}, ".heic": {},
}

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".mov": {}, ".avi": {}, ".mkv": {}, ".webm": {}, ".m4v": {},
}

// CategoryFor classifies a declared media type into a Category. When the
// type is absent or generic, the filename extension is sniffed for
// common image/video formats before falling back to OTHER. Pure; always
// returns a category.
func CategoryFor(mediaType, fileName string) Category {
	mt := strings.ToLower(strings.TrimSpace(mediaType))

	switch {
	case strings.HasPrefix(mt, "image/"):
		return CategoryImage
	case strings.HasPrefix(mt, "video/"):
		return CategoryVideo
	case strings.HasPrefix(mt, "audio/"):
		return CategoryAudio
	}
	for _, hint := range documentHints {
		if strings.Contains(mt, hint) {
			return CategoryDocument
		}
	}

	if mt == "" || mt == "application/octet-stream" {
		ext := strings.ToLower(filepath.Ext(fileName))
		if _, ok := imageExtensions[ext]; ok {
			return CategoryImage
		}
		if _, ok := videoExtensions[ext]; ok {
			return CategoryVideo
		}
	}

	return CategoryOther
}
