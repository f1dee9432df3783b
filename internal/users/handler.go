package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

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
	rg.GET("/me", h.me)
}

func (h *Handler) me(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	user, err := h.Svc.ResolveOwner(c.Request.Context(), userID, middleware.UserEmailFromContext(c), middleware.UserNameFromContext(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"id":           user.ID,
		"email":        user.Email,
		"displayName":  user.DisplayName,
		"role":         user.Role,
		"storageQuota": user.StorageQuota,
		"storageUsed":  user.StorageUsed,
	})
}
