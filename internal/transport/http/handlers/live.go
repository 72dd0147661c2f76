package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/port"
)

// LiveHandler answers whether a lesson is streaming right now.
type LiveHandler struct {
	live port.LiveStatusProvider
}

// NewLiveHandler constructs LiveHandler.
func NewLiveHandler(live port.LiveStatusProvider) *LiveHandler {
	return &LiveHandler{live: live}
}

// RegisterRoutes binds the live status endpoint.
func (h *LiveHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/live-status", h.status)
}

func (h *LiveHandler) status(c *gin.Context) {
	c.JSON(http.StatusOK, h.live.LiveStatus(c.Request.Context()))
}
