package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/transport/http/middleware"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/usecase"
)

// NotificationsHandler serves the "new lessons since your last visit" bell.
type NotificationsHandler struct {
	notifications *usecase.NotificationService
}

// NewNotificationsHandler constructs NotificationsHandler.
func NewNotificationsHandler(notifications *usecase.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// RegisterRoutes binds the notification endpoints.
func (h *NotificationsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/notifications", h.list)
	r.POST("/notifications/mark-visited", h.markVisited)
}

func (h *NotificationsHandler) list(c *gin.Context) {
	student, ok := middleware.CurrentStudent(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "Sessione non valida, effettua di nuovo il login"))
		return
	}

	videos, err := h.notifications.Unseen(c.Request.Context(), *student)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Errore interno, riprova più tardi"))
		return
	}

	items := newNotificationItems(videos)

	c.JSON(http.StatusOK, NotificationsResponse{
		Notifications: items,
		Count:         len(items),
	})
}

func (h *NotificationsHandler) markVisited(c *gin.Context) {
	student, ok := middleware.CurrentStudent(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "Sessione non valida, effettua di nuovo il login"))
		return
	}

	if err := h.notifications.MarkVisited(c.Request.Context(), student.ID); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Errore interno, riprova più tardi"))
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
