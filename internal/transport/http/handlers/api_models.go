package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/domain"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/transport/http/middleware"
)

// ErrorResponse carries the user-facing message plus the correlation
// identifier students can quote to support.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// NewErrorResponse builds an error payload tagged with the request's
// correlation identifier.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:     errorMsg,
		RequestID: middleware.GetRequestID(c),
	}
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Success bool   `json:"success"`
	Nome    string `json:"nome"`
}

// SessionResponse answers the "who am I" probe. Nome is null when no
// valid session accompanies the request.
type SessionResponse struct {
	Nome *string `json:"nome"`
}

// NotificationItem is one entry of the bell dropdown.
type NotificationItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	PublishedAt string `json:"publishedAt"`
	WatchURL    string `json:"watchUrl"`
	Year        int    `json:"year"`
	Month       int    `json:"month"`
}

// NotificationsResponse lists lessons published since the last visit.
type NotificationsResponse struct {
	Notifications []NotificationItem `json:"notifications"`
	Count         int                `json:"count"`
}

func newNotificationItems(videos []domain.Video) []NotificationItem {
	items := make([]NotificationItem, 0, len(videos))
	for _, v := range videos {
		items = append(items, NotificationItem{
			ID:          v.ID,
			Title:       v.Title,
			PublishedAt: v.PublishedAt,
			WatchURL:    v.WatchURL,
			Year:        v.Year,
			Month:       v.Month,
		})
	}
	return items
}

// ProfileResponse is the student's own profile view.
type ProfileResponse struct {
	Nome      string  `json:"nome"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar_url"`
}

// AvatarResponse is returned after an avatar upload.
type AvatarResponse struct {
	Success   bool   `json:"success"`
	AvatarURL string `json:"avatar_url"`
}

// SuccessResponse is the minimal acknowledgement payload.
type SuccessResponse struct {
	Success bool `json:"success"`
}
