package imaging

import (
	"bytes"
	"image"
	"image/jpeg"

	_ "image/gif" // register decoders for stored image payloads
	_ "image/png"

	"golang.org/x/image/draw"

	"mediavault-backend/internal/shared/telemetry"
)

// ThumbnailWidth is the fixed width of the persisted thumbnail artifact.
const ThumbnailWidth = 200

// presetSizes maps named presets to a target long-edge size in pixels.
var presetSizes = map[string]int{
	"thumbnail": 150,
	"preview":   400,
	"medium":    800,
}

// Thumbnail renders the fixed-width thumbnail stored alongside an image
// upload. Returns nil when the payload cannot be decoded.
func Thumbnail(data []byte) []byte {
	img, _, err := image.Decode(bytes.NewReader(Normalize(data)))
	if err != nil {
		telemetry.Warn("imaging.thumbnail.decode_failed", map[string]any{"err": err.Error()})
		return nil
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil
	}
	height := b.Dy() * ThumbnailWidth / b.Dx()
	if height < 1 {
		height = 1
	}
	return scale(img, ThumbnailWidth, height)
}

// Resize scales an image payload to a named preset, preserving aspect
// ratio: the longer edge becomes the preset size, the other follows
// proportionally. "full" and unknown presets return the input unchanged,
// as does any decode failure. The second return reports whether a
// resized JPEG was actually produced.
func Resize(data []byte, size string) ([]byte, bool) {
	target, ok := presetSizes[size]
	if !ok {
		return data, false
	}

	// Resize must act on the correctly-oriented pixels.
	normalized := Normalize(data)

	img, _, err := image.Decode(bytes.NewReader(normalized))
	if err != nil {
		telemetry.Warn("imaging.resize.decode_failed", map[string]any{"err": err.Error()})
		return data, false
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return data, false
	}

	var newW, newH int
	if w > h {
		newW = target
		newH = h * target / w
	} else {
		newH = target
		newW = w * target / h
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	out := scale(img, newW, newH)
	if out == nil {
		return data, false
	}
	return out, true
}

// scale renders src into a newW×newH JPEG with a quality interpolation
// kernel.
func scale(src image.Image, newW, newH int) []byte {
	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		telemetry.Warn("imaging.scale.encode_failed", map[string]any{"err": err.Error()})
		return nil
	}
	return buf.Bytes()
}
