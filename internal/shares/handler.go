package shares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mediavault-backend/internal/files"
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
	rg.POST("/shares", h.create)
	rg.DELETE("/shares/:id", h.deactivate)
}

// RegisterPublicRoutes mounts the anonymous share endpoints; callers
// attach throttling to the group.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/share/:token", h.info)
	rg.GET("/share/:token/download", h.download)
	rg.GET("/share/:token/qr", h.qr)
}

func (h *Handler) create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "fileId is required", nil)
		return
	}
	if req.MaxAccessCount != nil && *req.MaxAccessCount < 1 {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "maxAccessCount must be at least 1", nil)
		return
	}
	g, err := h.Svc.CreateGrant(c.Request.Context(), CreateInput{
		FileID:         req.FileID,
		CallerID:       middleware.UserIDFromContext(c),
		CallerAdmin:    middleware.IsAdmin(c),
		ExpiresAt:      req.ExpiresAt,
		MaxAccessCount: req.MaxAccessCount,
	})
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.Set("shareId", g.ID)
	respond.JSON(c, http.StatusCreated, ToResponse(g, h.Svc.ShareURL(g.ShareToken)))
}

func (h *Handler) deactivate(c *gin.Context) {
	id := c.Param("id")
	c.Set("shareId", id)
	err := h.Svc.Deactivate(c.Request.Context(), id, middleware.UserIDFromContext(c), middleware.IsAdmin(c))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"deactivated": true, "id": id})
}

func (h *Handler) info(c *gin.Context) {
	g, f, err := h.Svc.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.Set("shareId", g.ID)
	respond.JSON(c, http.StatusOK, gin.H{
		"fileName":    f.FileName,
		"fileType":    f.FileType,
		"fileSize":    f.FileSize,
		"category":    string(f.Category),
		"description": f.Description,
		"expiresAt":   g.ExpiresAt,
		"downloadUrl": h.Svc.ShareURL(g.ShareToken) + "/download",
	})
}

func (h *Handler) download(c *gin.Context) {
	f, g, err := h.Svc.AccessAndServe(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.Set("shareId", g.ID)
	c.Set("fileId", f.ID)
	metrics.IncShareAccess()
	c.Header("Cache-Control", "private, no-store")
	contentType := f.FileType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", `attachment; filename="`+f.FileName+`"`)
	c.Data(http.StatusOK, contentType, f.Data)
}

func (h *Handler) qr(c *gin.Context) {
	qr, err := h.Svc.QRFor(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", qr)
}

func (h *Handler) respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, files.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "share not found", nil)
	case errors.Is(err, ErrShareInactive):
		respond.Error(c, http.StatusGone, "share_inactive", "share is no longer active", nil)
	case errors.Is(err, ErrShareExpired):
		respond.Error(c, http.StatusGone, "share_expired", "share has expired", nil)
	case errors.Is(err, ErrShareLimitReached):
		respond.Error(c, http.StatusGone, "share_limit_reached", "share access limit reached", nil)
	case errors.Is(err, files.ErrGone):
		respond.Error(c, http.StatusGone, "gone", "shared file has been deleted", nil)
	case errors.Is(err, files.ErrUnauthorized):
		respond.Error(c, http.StatusForbidden, "forbidden", "not allowed to manage shares for this file", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "share operation failed", nil)
	}
}
