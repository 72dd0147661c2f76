package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/domain"
)

type fakeCatalog struct {
	catalog *domain.Catalog
	err     error
}

func (f *fakeCatalog) Catalog(context.Context) (*domain.Catalog, error) {
	return f.catalog, f.err
}

func testCatalog() *domain.Catalog {
	return &domain.Catalog{
		LastUpdated: "2025-11-03T08:00:00Z",
		TotalVideos: 3,
		Videos: []domain.Video{
			{ID: "v1", Title: "Segnali di pericolo", PublishedAt: "2025-10-01T18:00:00Z", Year: 2025, Month: 10},
			{ID: "v2", Title: "Precedenze", PublishedAt: "2025-10-20T18:00:00Z", Year: 2025, Month: 10},
			{ID: "v3", Title: "Limiti di velocità", PublishedAt: "2025-11-02T18:00:00Z", Year: 2025, Month: 11},
		},
	}
}

func TestUnseenFirstVisitIsEmpty(t *testing.T) {
	svc := NewNotificationService(newFakeStudentRepo(), &fakeCatalog{catalog: testCatalog()}, nil)

	videos, err := svc.Unseen(context.Background(), domain.Student{ID: "id-1"})
	if err != nil {
		t.Fatalf("Unseen returned error: %v", err)
	}
	if len(videos) != 0 {
		t.Fatalf("Unseen for first visit = %d videos, want 0", len(videos))
	}
}

func TestUnseenFiltersAndSortsNewestFirst(t *testing.T) {
	svc := NewNotificationService(newFakeStudentRepo(), &fakeCatalog{catalog: testCatalog()}, nil)

	lastVisit := time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC)
	videos, err := svc.Unseen(context.Background(), domain.Student{ID: "id-1", LastVisit: &lastVisit})
	if err != nil {
		t.Fatalf("Unseen returned error: %v", err)
	}

	if len(videos) != 2 {
		t.Fatalf("Unseen = %d videos, want 2", len(videos))
	}
	if videos[0].ID != "v3" || videos[1].ID != "v2" {
		t.Fatalf("Unseen order = [%s %s], want [v3 v2]", videos[0].ID, videos[1].ID)
	}
}

func TestUnseenCapped(t *testing.T) {
	catalog := &domain.Catalog{Videos: make([]domain.Video, 0, 25)}
	base := time.Date(2025, 10, 1, 18, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		catalog.Videos = append(catalog.Videos, domain.Video{
			ID:          string(rune('a' + i)),
			PublishedAt: base.Add(time.Duration(i) * 24 * time.Hour).Format(time.RFC3339),
		})
	}

	svc := NewNotificationService(newFakeStudentRepo(), &fakeCatalog{catalog: catalog}, nil)

	lastVisit := base.Add(-time.Hour)
	videos, err := svc.Unseen(context.Background(), domain.Student{ID: "id-1", LastVisit: &lastVisit})
	if err != nil {
		t.Fatalf("Unseen returned error: %v", err)
	}
	if len(videos) != maxNotifications {
		t.Fatalf("Unseen = %d videos, want %d", len(videos), maxNotifications)
	}
}

func TestUnseenPropagatesCatalogFailure(t *testing.T) {
	svc := NewNotificationService(newFakeStudentRepo(), &fakeCatalog{err: errors.New("cache missing")}, nil)

	lastVisit := time.Now()
	if _, err := svc.Unseen(context.Background(), domain.Student{ID: "id-1", LastVisit: &lastVisit}); err == nil {
		t.Fatal("Unseen did not propagate catalog failure")
	}
}

func TestMarkVisitedStampsNow(t *testing.T) {
	repo := newFakeStudentRepo()
	now := time.Date(2025, 11, 3, 9, 30, 0, 0, time.UTC)
	svc := NewNotificationService(repo, &fakeCatalog{catalog: testCatalog()}, func() time.Time { return now })

	if err := svc.MarkVisited(context.Background(), "id-1"); err != nil {
		t.Fatalf("MarkVisited returned error: %v", err)
	}
	if repo.lastVisitID != "id-1" || !repo.lastVisitAt.Equal(now) {
		t.Fatalf("MarkVisited stamped %q at %v", repo.lastVisitID, repo.lastVisitAt)
	}
}
