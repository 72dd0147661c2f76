package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/domain"
)

const (
	studentKey = "session_student"
	claimsKey  = "session_claims"
)

// CurrentStudent returns the student resolved by the session gateway.
func CurrentStudent(c *gin.Context) (*domain.Student, bool) {
	raw, exists := c.Get(studentKey)
	if !exists {
		return nil, false
	}
	student, ok := raw.(*domain.Student)
	return student, ok
}

// CurrentClaims returns the session claims resolved by the session gateway.
func CurrentClaims(c *gin.Context) (*domain.SessionClaims, bool) {
	raw, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := raw.(*domain.SessionClaims)
	return claims, ok
}
