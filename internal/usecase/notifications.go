package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/domain"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/port"
)

// maxNotifications caps the bell dropdown.
const maxNotifications = 10

// NotificationService derives the unseen-video feed from the student's
// last_visit marker and the cached catalog.
type NotificationService struct {
	students port.StudentRepository
	catalog  port.CatalogProvider
	now      port.Clock
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(students port.StudentRepository, catalog port.CatalogProvider, clock port.Clock) *NotificationService {
	if clock == nil {
		clock = port.SystemClock()
	}
	return &NotificationService{students: students, catalog: catalog, now: clock}
}

// Unseen returns the newest videos published after the student's last
// visit, capped at maxNotifications. A student who never visited gets an
// empty feed rather than the whole archive.
func (s *NotificationService) Unseen(ctx context.Context, student domain.Student) ([]domain.Video, error) {
	if student.LastVisit == nil {
		return []domain.Video{}, nil
	}

	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	lastVisit := *student.LastVisit

	var unseen []domain.Video
	for _, video := range catalog.Videos {
		publishedAt, err := time.Parse(time.RFC3339, video.PublishedAt)
		if err != nil {
			continue
		}
		if publishedAt.After(lastVisit) {
			unseen = append(unseen, video)
		}
	}

	sort.Slice(unseen, func(i, j int) bool {
		return unseen[i].PublishedAt > unseen[j].PublishedAt
	})

	if len(unseen) > maxNotifications {
		unseen = unseen[:maxNotifications]
	}
	if unseen == nil {
		unseen = []domain.Video{}
	}

	return unseen, nil
}

// MarkVisited moves the freshness marker to now.
func (s *NotificationService) MarkVisited(ctx context.Context, studentID string) error {
	if err := s.students.UpdateLastVisit(ctx, studentID, s.now()); err != nil {
		return fmt.Errorf("update last_visit: %w", err)
	}
	return nil
}
