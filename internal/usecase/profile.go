package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/domain"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/port"
)

// MaxAvatarSize bounds avatar uploads to 5 MB.
const MaxAvatarSize = 5 << 20

var (
	// ErrAvatarNotImage indicates the uploaded file is not an image.
	ErrAvatarNotImage = errors.New("avatar must be an image")
	// ErrAvatarTooLarge indicates the upload exceeds MaxAvatarSize.
	ErrAvatarTooLarge = errors.New("avatar exceeds maximum size")
)

// ProfileService manages the student's avatar against object storage.
type ProfileService struct {
	students port.StudentRepository
	avatars  port.AvatarStore
	now      port.Clock
	logger   *zap.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(students port.StudentRepository, avatars port.AvatarStore, clock port.Clock, log *zap.Logger) *ProfileService {
	if clock == nil {
		clock = port.SystemClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileService{students: students, avatars: avatars, now: clock, logger: log}
}

// UploadAvatar validates, stores and records a new avatar, removing the
// previous object best-effort. Returns the public URL.
func (s *ProfileService) UploadAvatar(ctx context.Context, student domain.Student, filename, contentType string, size int64, body io.Reader) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrAvatarNotImage
	}
	if size > MaxAvatarSize {
		return "", ErrAvatarTooLarge
	}

	s.removeExisting(ctx, student)

	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		ext = "jpg"
	}
	key := fmt.Sprintf("%s/%d.%s", student.ID, s.now().UnixMilli(), ext)

	url, err := s.avatars.Put(ctx, key, contentType, io.LimitReader(body, MaxAvatarSize))
	if err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}

	if err := s.students.UpdateAvatarURL(ctx, student.ID, &url); err != nil {
		return "", fmt.Errorf("record avatar url: %w", err)
	}

	return url, nil
}

// DeleteAvatar removes the stored object and clears the column.
func (s *ProfileService) DeleteAvatar(ctx context.Context, student domain.Student) error {
	s.removeExisting(ctx, student)

	if err := s.students.UpdateAvatarURL(ctx, student.ID, nil); err != nil {
		return fmt.Errorf("clear avatar url: %w", err)
	}
	return nil
}

// removeExisting deletes the current object, if any. Failures are logged
// and swallowed: a dangling blob must not block the profile operation.
func (s *ProfileService) removeExisting(ctx context.Context, student domain.Student) {
	if student.AvatarURL == nil || *student.AvatarURL == "" {
		return
	}

	key, ok := s.avatars.KeyFromURL(*student.AvatarURL)
	if !ok {
		return
	}

	if err := s.avatars.Delete(ctx, key); err != nil {
		s.logger.Warn("delete previous avatar failed",
			zap.String("student_id", student.ID),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
