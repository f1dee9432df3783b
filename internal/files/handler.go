package files

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mediavault-backend/internal/imaging"
	"mediavault-backend/internal/shared/metrics"
	"mediavault-backend/internal/shared/server/middleware"
	"mediavault-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/files", h.upload)
	rg.GET("/files", h.list)
	rg.GET("/files/:id", h.meta)
	rg.GET("/files/:id/download", h.download)
	rg.GET("/files/:id/preview", h.preview)
	rg.GET("/files/:id/thumbnail", h.thumbnail)
	rg.GET("/files/:id/public-preview", h.publicPreview)
	rg.DELETE("/files/:id", h.remove)
	rg.GET("/video/:id/stream", h.stream)
}

func (h *Handler) caller(c *gin.Context) Caller {
	return Caller{
		UserID: middleware.UserIDFromContext(c),
		Admin:  middleware.IsAdmin(c),
	}
}

func (h *Handler) upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "multipart field 'file' is required", nil)
		return
	}
	src, err := header.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "failed to read uploaded file", nil)
		return
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "failed to read uploaded file", nil)
		return
	}

	f, err := h.Svc.Upload(c.Request.Context(), UploadInput{
		OwnerID:     middleware.UserIDFromContext(c),
		OwnerEmail:  middleware.UserEmailFromContext(c),
		OwnerName:   middleware.UserNameFromContext(c),
		FileName:    header.Filename,
		FileType:    header.Header.Get("Content-Type"),
		Description: c.PostForm("description"),
		Data:        data,
	})
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.Set("fileId", f.ID)
	metrics.IncUpload(f.FileSize)
	respond.JSON(c, http.StatusCreated, ToResponse(f, middleware.UserNameFromContext(c)))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	items, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, ToResponseList(items, middleware.UserNameFromContext(c)))
}

func (h *Handler) meta(c *gin.Context) {
	id := c.Param("id")
	c.Set("fileId", id)
	f, err := h.Svc.Meta(c.Request.Context(), id)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	if Authorize(h.caller(c), f) == AccessDenied {
		respond.Error(c, http.StatusForbidden, "forbidden", "not allowed to access this file", nil)
		return
	}
	respond.JSON(c, http.StatusOK, ToResponse(f, ""))
}

func (h *Handler) download(c *gin.Context) {
	id := c.Param("id")
	c.Set("fileId", id)
	f, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	if Authorize(h.caller(c), f) == AccessDenied {
		respond.Error(c, http.StatusForbidden, "forbidden", "not allowed to access this file", nil)
		return
	}
	metrics.IncDownload()
	c.Header("Cache-Control", "private, no-store")
	c.Header("Content-Disposition", `attachment; filename="`+f.FileName+`"`)
	c.Data(http.StatusOK, contentTypeFor(f), f.Data)
}

// preview serves the payload scaled to a named preset. "full" or an
// unknown preset returns the original bytes under the original type;
// a successful resize is always a JPEG.
func (h *Handler) preview(c *gin.Context) {
	id := c.Param("id")
	c.Set("fileId", id)
	f, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	if Authorize(h.caller(c), f) == AccessDenied {
		respond.Error(c, http.StatusForbidden, "forbidden", "not allowed to access this file", nil)
		return
	}
	h.servePreview(c, f, c.DefaultQuery("size", "preview"))
}

// publicPreview is the unauthenticated delivery path for media embedded
// in publicly visible content. Images get the preview rendition, never
// the original bytes; everything else streams with range semantics so
// embedded video players can scrub.
func (h *Handler) publicPreview(c *gin.Context) {
	id := c.Param("id")
	c.Set("fileId", id)
	f, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	if f.Category == CategoryImage {
		h.servePreview(c, f, "preview")
		return
	}
	h.serveRanged(c, f)
}

func (h *Handler) servePreview(c *gin.Context, f File, size string) {
	data, changed := f.Data, false
	if f.Category == CategoryImage {
		data, changed = imaging.Resize(f.Data, size)
	}
	contentType := contentTypeFor(f)
	if changed {
		contentType = "image/jpeg"
	}
	c.Header("Cache-Control", "public, max-age=86400")
	h.serveRangedBytes(c, data, contentType)
}

func (h *Handler) thumbnail(c *gin.Context) {
	id := c.Param("id")
	c.Set("fileId", id)
	f, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	if Authorize(h.caller(c), f) == AccessDenied {
		respond.Error(c, http.StatusForbidden, "forbidden", "not allowed to access this file", nil)
		return
	}
	if len(f.Thumbnail) == 0 {
		respond.Error(c, http.StatusNotFound, "not_found", "no thumbnail for this file", nil)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/jpeg", f.Thumbnail)
}

func (h *Handler) remove(c *gin.Context) {
	id := c.Param("id")
	c.Set("fileId", id)
	_, err := h.Svc.Delete(c.Request.Context(), id, middleware.UserIDFromContext(c))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	metrics.IncDelete()
	respond.JSON(c, http.StatusOK, gin.H{"deleted": true, "id": id})
}

// stream serves a payload with HTTP range semantics. Any authenticated
// viewer may stream: videos surface in shared feeds, so reachability,
// not ownership, gates this path. A missing Range header yields the
// whole payload; a malformed or unsatisfiable one yields 416 with the
// total length.
func (h *Handler) stream(c *gin.Context) {
	id := c.Param("id")
	c.Set("fileId", id)
	f, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.serveRanged(c, f)
}

func (h *Handler) serveRanged(c *gin.Context, f File) {
	h.serveRangedBytes(c, f.Data, contentTypeFor(f))
}

func (h *Handler) serveRangedBytes(c *gin.Context, data []byte, contentType string) {
	c.Header("Accept-Ranges", "bytes")

	rng, err := ParseRange(c.GetHeader("Range"), int64(len(data)))
	if err != nil {
		var re *RangeError
		if errors.As(err, &re) {
			c.Header("Content-Range", "bytes */"+strconv.FormatInt(re.Length, 10))
			respond.Error(c, http.StatusRequestedRangeNotSatisfiable, "range_not_satisfiable", "requested range cannot be satisfied", gin.H{"length": re.Length})
			return
		}
		h.respondErr(c, err)
		return
	}

	metrics.IncDownload()
	if rng == nil {
		c.Data(http.StatusOK, contentType, data)
		return
	}
	c.Header("Content-Range", rng.ContentRange())
	c.Data(http.StatusPartialContent, contentType, rng.Slice(data))
}

func contentTypeFor(f File) string {
	if f.FileType != "" {
		return f.FileType
	}
	return "application/octet-stream"
}

func (h *Handler) respondErr(c *gin.Context, err error) {
	var limitErr *StorageLimitError
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "file not found", nil)
	case errors.Is(err, ErrGone):
		respond.Error(c, http.StatusGone, "gone", "file has been deleted", nil)
	case errors.Is(err, ErrUnauthorized):
		respond.Error(c, http.StatusForbidden, "forbidden", "not allowed to access this file", nil)
	case errors.Is(err, ErrQuotaExceeded):
		metrics.IncQuotaReject()
		respond.Error(c, http.StatusBadRequest, "quota_exceeded", "storage quota exceeded; free up space or raise the quota", nil)
	case errors.Is(err, ErrFileTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file size exceeds the maximum limit", nil)
	case errors.As(err, &limitErr):
		respond.Error(c, http.StatusInternalServerError, "storage_limit", limitErr.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "file operation failed", nil)
	}
}
