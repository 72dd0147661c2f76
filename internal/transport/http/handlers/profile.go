package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/transport/http/middleware"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/usecase"
)

// ProfileHandler serves the student's profile and avatar management.
type ProfileHandler struct {
	profile *usecase.ProfileService
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(profile *usecase.ProfileService) *ProfileHandler {
	return &ProfileHandler{profile: profile}
}

// RegisterRoutes binds the avatar endpoints.
func (h *ProfileHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/profile/avatar", h.showAvatar)
	r.POST("/profile/avatar", h.uploadAvatar)
	r.DELETE("/profile/avatar", h.deleteAvatar)
}

func (h *ProfileHandler) showAvatar(c *gin.Context) {
	student, ok := middleware.CurrentStudent(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "Sessione non valida, effettua di nuovo il login"))
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{
		Nome:      student.Nome,
		Email:     student.Email,
		AvatarURL: student.AvatarURL,
	})
}

func (h *ProfileHandler) uploadAvatar(c *gin.Context) {
	student, ok := middleware.CurrentStudent(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "Sessione non valida, effettua di nuovo il login"))
		return
	}

	header, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Nessun file selezionato"))
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Impossibile leggere il file"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")

	url, err := h.profile.UploadAvatar(c.Request.Context(), *student, header.Filename, contentType, header.Size, file)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrAvatarNotImage):
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Il file deve essere un'immagine"))
		case errors.Is(err, usecase.ErrAvatarTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, NewErrorResponse(c, "L'immagine non può superare i 5 MB"))
		default:
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Errore interno, riprova più tardi"))
		}
		return
	}

	c.JSON(http.StatusOK, AvatarResponse{Success: true, AvatarURL: url})
}

func (h *ProfileHandler) deleteAvatar(c *gin.Context) {
	student, ok := middleware.CurrentStudent(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "Sessione non valida, effettua di nuovo il login"))
		return
	}

	if err := h.profile.DeleteAvatar(c.Request.Context(), *student); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Errore interno, riprova più tardi"))
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
