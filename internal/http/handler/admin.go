package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"parley.app/server/internal/http/middleware"
	"parley.app/server/internal/service"
)

type AdminHandler struct {
	adminService service.AdminService
}

func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	scope := middleware.GetScope(ctx)
	if !scope.IsUser() {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	stats, err := h.adminService.Stats(ctx, scope.UserID)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		slog.ErrorContext(ctx, "failed to load usage stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
