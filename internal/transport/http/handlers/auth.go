package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/transport/http/middleware"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/usecase"
)

const (
	maxEmailLength    = 254
	maxPasswordLength = 128
)

// AuthHandler exposes the session endpoints: login, session probe, logout.
type AuthHandler struct {
	auth          *usecase.AuthService
	limiter       *usecase.LoginRateLimiter
	metrics       *middleware.HTTPMetrics
	cookieMaxAge  int
	secureCookies bool
}

// NewAuthHandler constructs AuthHandler. metrics may be nil.
func NewAuthHandler(auth *usecase.AuthService, limiter *usecase.LoginRateLimiter, metrics *middleware.HTTPMetrics, cookieMaxAge int, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		auth:          auth,
		limiter:       limiter,
		metrics:       metrics,
		cookieMaxAge:  cookieMaxAge,
		secureCookies: secureCookies,
	}
}

// RegisterRoutes binds the auth endpoints.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/auth/login", h.login)
	r.GET("/auth/me", h.session)
	r.POST("/auth/logout", h.logout)
}

// login validates credentials and sets the session cookie. The rate
// limiter is consulted before the request body is even parsed so
// malformed floods burn window slots too.
func (h *AuthHandler) login(c *gin.Context) {
	if h.limiter != nil {
		result := h.limiter.Check(c.Request.Context(), c.ClientIP())
		c.Header("X-RateLimit-Limit", strconv.Itoa(h.limiter.MaxAttempts()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.RemainingAttempts))

		if !result.Allowed {
			h.metrics.ObserveLogin(middleware.LoginOutcomeRateLimited)
			c.Header("Retry-After", strconv.Itoa(result.RetryAfterSeconds))
			c.JSON(http.StatusTooManyRequests, NewErrorResponse(c,
				fmt.Sprintf("Troppi tentativi di accesso. Riprova tra %d secondi.", result.RetryAfterSeconds)))
			return
		}
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Email e password sono obbligatorie"))
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Email e password sono obbligatorie"))
		return
	}
	if len(req.Email) > maxEmailLength || !strings.Contains(req.Email, "@") {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Email non valida"))
		return
	}
	if len(req.Password) > maxPasswordLength {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Password non valida"))
		return
	}

	token, student, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.ObserveLogin(middleware.LoginOutcomeFailed)
		h.respondLoginError(c, err)
		return
	}

	h.metrics.ObserveLogin(middleware.LoginOutcomeSuccess)
	h.setSessionCookie(c, token, h.cookieMaxAge)

	c.JSON(http.StatusOK, LoginResponse{Success: true, Nome: student.Nome})
}

func (h *AuthHandler) respondLoginError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "Credenziali non valide"))
	case errors.Is(err, usecase.ErrInactiveAccount):
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "Account non attivo. Contatta la scuola guida."))
	case errors.Is(err, usecase.ErrExamAlreadyPassed):
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "Hai già superato l'esame di teoria: l'archivio non è più accessibile."))
	default:
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Errore interno, riprova più tardi"))
	}
}

// session reports who the cookie belongs to. The route is public, so
// validation happens here rather than in the gateway.
func (h *AuthHandler) session(c *gin.Context) {
	token, err := c.Cookie(middleware.CookieName)
	if err != nil || token == "" {
		c.JSON(http.StatusUnauthorized, SessionResponse{Nome: nil})
		return
	}

	student, _, err := h.auth.ValidateSession(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, usecase.ErrSessionInvalid) {
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Errore interno, riprova più tardi"))
			return
		}
		h.setSessionCookie(c, "", -1)
		c.JSON(http.StatusUnauthorized, SessionResponse{Nome: nil})
		return
	}

	c.JSON(http.StatusOK, SessionResponse{Nome: &student.Nome})
}

// logout deletes the session cookie. The token is stateless, so there is
// nothing server-side to revoke.
func (h *AuthHandler) logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieName, token, maxAge, "/", "", h.secureCookies, true)
}
