package files

import "time"

// FileResponse is the metadata shape returned by the API. Binary
// columns never appear here; payloads travel through the delivery
// endpoints.
type FileResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	FileName     string    `json:"fileName"`
	FileType     string    `json:"fileType"`
	FileSize     int64     `json:"fileSize"`
	Category     string    `json:"category"`
	Description  string    `json:"description,omitempty"`
	UploaderName string    `json:"uploaderName,omitempty"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

func ToResponse(f File, uploaderName string) FileResponse {
	return FileResponse{
		ID:           f.ID,
		UserID:       f.UserID,
		FileName:     f.FileName,
		FileType:     f.FileType,
		FileSize:     f.FileSize,
		Category:     string(f.Category),
		Description:  f.Description,
		UploaderName: uploaderName,
		UploadedAt:   f.UploadedAt,
	}
}

func ToResponseList(items []File, uploaderName string) []FileResponse {
	out := make([]FileResponse, 0, len(items))
	for _, f := range items {
		out = append(out, ToResponse(f, uploaderName))
	}
	return out
}
