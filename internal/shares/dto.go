package shares

import "time"

// CreateRequest is the POST /shares body.
type CreateRequest struct {
	FileID         string     `json:"fileId" binding:"required"`
	ExpiresAt      *time.Time `json:"expiresAt"`
	MaxAccessCount *int       `json:"maxAccessCount"`
}

// ShareResponse is the grant shape returned to the owner. The QR itself
// is fetched from the public QR endpoint; HasQR only signals presence.
type ShareResponse struct {
	ID             string     `json:"id"`
	FileID         string     `json:"fileId"`
	ShareToken     string     `json:"shareToken"`
	ShareURL       string     `json:"shareUrl"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	MaxAccessCount *int       `json:"maxAccessCount,omitempty"`
	AccessCount    int        `json:"accessCount"`
	Active         bool       `json:"active"`
	HasQR          bool       `json:"hasQr"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func ToResponse(g ShareGrant, shareURL string) ShareResponse {
	return ShareResponse{
		ID:             g.ID,
		FileID:         g.FileID,
		ShareToken:     g.ShareToken,
		ShareURL:       shareURL,
		ExpiresAt:      g.ExpiresAt,
		MaxAccessCount: g.MaxAccessCount,
		AccessCount:    g.AccessCount,
		Active:         g.Active,
		HasQR:          len(g.QRCode) > 0,
		CreatedAt:      g.CreatedAt,
	}
}
