package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"parley.app/server/internal/service"
)

type ProxyHandler struct {
	proxyService service.ProxyService
}

func NewProxyHandler(proxyService service.ProxyService) *ProxyHandler {
	return &ProxyHandler{proxyService: proxyService}
}

func (h *ProxyHandler) Weather(c *gin.Context) {
	ctx := c.Request.Context()

	lat := c.Query("lat")
	lon := c.Query("lon")
	if lat == "" || lon == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon are required"})
		return
	}

	payload, err := h.proxyService.Weather(ctx, lat, lon)
	if err != nil {
		if errors.Is(err, service.ErrUpstream) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "weather service unavailable"})
			return
		}
		slog.ErrorContext(ctx, "weather proxy failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	c.Data(http.StatusOK, "application/json", payload)
}

func (h *ProxyHandler) News(c *gin.Context) {
	ctx := c.Request.Context()

	category := c.DefaultQuery("category", "general")
	country := c.DefaultQuery("country", "us")

	payload, err := h.proxyService.News(ctx, category, country)
	if err != nil {
		if errors.Is(err, service.ErrUpstream) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "news service unavailable"})
			return
		}
		slog.ErrorContext(ctx, "news proxy failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	c.Data(http.StatusOK, "application/json", payload)
}
