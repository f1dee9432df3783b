package shares

import (
	qrcode "github.com/skip2/go-qrcode"

	"mediavault-backend/internal/shared/telemetry"
)

const qrSizePx = 300

// renderQR renders a PNG QR code for a share URL. QR generation is
// best-effort: a failure logs and returns nil, and the grant is served
// without one.
func renderQR(shareURL string) []byte {
	png, err := qrcode.Encode(shareURL, qrcode.Medium, qrSizePx)
	if err != nil {
		telemetry.Warn("shares.qr.render_failed", map[string]any{
			"url": shareURL,
			"err": err.Error(),
		})
		return nil
	}
	return png
}
