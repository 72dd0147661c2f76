package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/domain"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/port"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/infra/logger"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/infra/security"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/repository"
)

var (
	// ErrInvalidCredentials covers unknown account and wrong password
	// alike; the two must stay indistinguishable to the client.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInactiveAccount indicates the account was disabled by the school.
	ErrInactiveAccount = errors.New("account is not active")
	// ErrExamAlreadyPassed indicates the student finished the theory exam
	// and no longer has access to the archive.
	ErrExamAlreadyPassed = errors.New("theory exam already passed")
	// ErrSessionInvalid covers every way a session can fail validation:
	// missing/expired/forged token, incomplete claims, deleted account,
	// stale password fingerprint.
	ErrSessionInvalid = errors.New("session invalid")
)

// AuthService coordinates login and per-request session validation.
type AuthService struct {
	students     port.StudentRepository
	codec        *security.SessionCodec
	failureDelay time.Duration
	now          port.Clock
	logger       *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(students port.StudentRepository, codec *security.SessionCodec, failureDelay time.Duration, clock port.Clock, log *zap.Logger) (*AuthService, error) {
	if students == nil {
		return nil, fmt.Errorf("student repository is required")
	}
	if codec == nil {
		return nil, security.ErrMissingSecret
	}
	if clock == nil {
		clock = port.SystemClock()
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &AuthService{
		students:     students,
		codec:        codec,
		failureDelay: failureDelay,
		now:          clock,
		logger:       log,
	}, nil
}

// Login validates credentials and mints a session token. Every
// credential-related failure takes the same artificial delay so "unknown
// account", "inactive" and "wrong password" are indistinguishable by
// timing.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, domain.Student, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))

	student, err := s.students.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.delay(ctx)
			return "", domain.Student{}, ErrInvalidCredentials
		}
		return "", domain.Student{}, fmt.Errorf("lookup student: %w", err)
	}

	if !student.Attivo {
		s.delay(ctx)
		return "", domain.Student{}, ErrInactiveAccount
	}

	if student.TheoryExamPassed {
		s.delay(ctx)
		return "", domain.Student{}, ErrExamAlreadyPassed
	}

	if !security.VerifyPassword(password, student.PasswordHash) {
		s.delay(ctx)
		return "", domain.Student{}, ErrInvalidCredentials
	}

	token, err := s.codec.CreateToken(*student)
	if err != nil {
		return "", domain.Student{}, fmt.Errorf("create session token: %w", err)
	}

	s.touchLastLogin(student.ID, normalized)

	return token, student.Sanitized(), nil
}

// touchLastLogin stamps last_login without blocking the login response.
func (s *AuthService) touchLastLogin(id, email string) {
	at := s.now()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.students.UpdateLastLogin(ctx, id, at); err != nil {
			s.logger.Warn("update last_login failed",
				zap.String("email", logger.MaskEmail(email)),
				zap.Error(err),
			)
		}
	}()
}

// ValidateSession resolves a raw token to the live student record. It
// re-derives the password fingerprint from the current row and re-checks
// account state on every call, so password changes and deactivation take
// effect immediately rather than at token expiry.
func (s *AuthService) ValidateSession(ctx context.Context, rawToken string) (*domain.Student, *domain.SessionClaims, error) {
	claims, err := s.codec.VerifyToken(rawToken)
	if err != nil {
		return nil, nil, ErrSessionInvalid
	}

	// Tokens issued by earlier portal versions miss essential claims.
	if !claims.Complete() {
		return nil, nil, ErrSessionInvalid
	}

	student, err := s.students.GetByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrSessionInvalid
		}
		return nil, nil, fmt.Errorf("lookup student: %w", err)
	}

	if !student.Attivo || student.TheoryExamPassed {
		return nil, nil, ErrSessionInvalid
	}

	expected := s.codec.Fingerprint(student.PasswordHash)
	if expected == "" || claims.PasswordFingerprint == "" || claims.PasswordFingerprint != expected {
		return nil, nil, ErrSessionInvalid
	}

	return student, claims, nil
}

func (s *AuthService) delay(ctx context.Context) {
	if s.failureDelay <= 0 {
		return
	}

	timer := time.NewTimer(s.failureDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
