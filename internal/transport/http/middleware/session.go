package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/domain"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/usecase"
)

// CookieName is the session cookie carried by every portal request.
const CookieName = "aba-session"

// loginPath is where unauthenticated browser navigation lands.
const loginPath = "/login"

// publicPaths are reachable without a session.
var publicPaths = map[string]bool{
	loginPath:      true,
	"/healthz":     true,
	"/readyz":      true,
	"/metrics":     true,
	"/favicon.ico": true,
}

// publicPrefix covers the auth endpoints themselves: login must be
// reachable without a session, and the identity probe does its own
// cookie handling.
const publicPrefix = "/api/auth"

// assetSuffixes let static resources through so the login page renders.
var assetSuffixes = []string{".png", ".jpg", ".jpeg", ".svg", ".ico", ".webp", ".css", ".js"}

// SessionValidator resolves a raw session token to the live student record.
type SessionValidator interface {
	ValidateSession(ctx context.Context, rawToken string) (*domain.Student, *domain.SessionClaims, error)
}

// SessionGatewayOptions configure the gateway middleware.
type SessionGatewayOptions struct {
	Auth          SessionValidator
	SecureCookies bool
	Logger        *zap.Logger
}

// SessionGateway gates every non-public route behind a valid session
// cookie. Browser navigation is redirected to the login page; API calls
// get a JSON 401. An invalid or stale cookie is deleted on the way out
// so the client does not retry a dead token forever.
func SessionGateway(opts SessionGatewayOptions) gin.HandlerFunc {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		if isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		token, err := c.Cookie(CookieName)
		if err != nil || token == "" {
			deny(c, false, opts.SecureCookies)
			return
		}

		student, claims, err := opts.Auth.ValidateSession(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, usecase.ErrSessionInvalid) {
				log.Error("session validation failed", zap.Error(err))
				abortUnavailable(c)
				return
			}
			deny(c, true, opts.SecureCookies)
			return
		}

		c.Set(studentKey, student)
		c.Set(claimsKey, claims)

		c.Next()
	}
}

func isPublicPath(path string) bool {
	if publicPaths[path] || strings.HasPrefix(path, publicPrefix) {
		return true
	}
	for _, suffix := range assetSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// deny rejects the request, clearing the cookie when one was presented.
func deny(c *gin.Context, clearCookie, secure bool) {
	if clearCookie {
		c.SetCookie(CookieName, "", -1, "/", "", secure, true)
	}

	if isAPIPath(c.Request.URL.Path) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "Sessione non valida, effettua di nuovo il login",
		})
		return
	}

	c.Redirect(http.StatusFound, loginPath)
	c.Abort()
}

func abortUnavailable(c *gin.Context) {
	if isAPIPath(c.Request.URL.Path) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "Errore interno, riprova più tardi",
		})
		return
	}

	c.Redirect(http.StatusFound, loginPath)
	c.Abort()
}

func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/")
}
