// Package imaging holds the cosmetic image transforms applied to stored
// payloads: EXIF orientation normalization and aspect-preserving resize.
// Every entry point degrades to its input on failure; a broken transform
// must never block delivery of the underlying bytes.
package imaging

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/rwcarlsen/goexif/exif"

	"mediavault-backend/internal/shared/telemetry"
)

const jpegQuality = 85

// Orientation values acted on. Everything else (mirrored variants
// included) is served as-is.
const (
	orientationUpright = 1
	orientationDown    = 3 // 180°
	orientationRight   = 6 // 90° clockwise
	orientationLeft    = 8 // 90° counter-clockwise
)

// Normalize rotates the pixels of an image so they match the display
// orientation declared in its EXIF metadata, consuming the tag. The
// input is returned unchanged when the image carries no actionable
// orientation or cannot be decoded.
func Normalize(data []byte) []byte {
	orientation := exifOrientation(data)
	if orientation != orientationDown && orientation != orientationRight && orientation != orientationLeft {
		return data
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		telemetry.Warn("imaging.normalize.decode_failed", map[string]any{"err": err.Error()})
		return data
	}

	rotated := rotate(img, orientation)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rotated, &jpeg.Options{Quality: jpegQuality}); err != nil {
		telemetry.Warn("imaging.normalize.encode_failed", map[string]any{"err": err.Error()})
		return data
	}
	return buf.Bytes()
}

// exifOrientation returns the EXIF orientation tag as a flat lookup,
// defaulting to upright when the tag is missing or unreadable.
func exifOrientation(data []byte) int {
	meta, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return orientationUpright
	}
	tag, err := meta.Get(exif.Orientation)
	if err != nil {
		return orientationUpright
	}
	value, err := tag.Int(0)
	if err != nil {
		return orientationUpright
	}
	return value
}

// rotate paints src onto a freshly allocated raster under the affine
// mapping for the given orientation. Dimensions swap for 6 and 8.
func rotate(src image.Image, orientation int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	var dst *image.RGBA
	switch orientation {
	case orientationDown:
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dst.Set(w-1-x, h-1-y, src.At(b.Min.X+x, b.Min.Y+y))
			}
		}
	case orientationRight:
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dst.Set(h-1-y, x, src.At(b.Min.X+x, b.Min.Y+y))
			}
		}
	case orientationLeft:
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dst.Set(y, w-1-x, src.At(b.Min.X+x, b.Min.Y+y))
			}
		}
	default:
		return src
	}
	return dst
}
