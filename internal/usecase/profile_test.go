package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/domain"
)

type fakeAvatarStore struct {
	putKey      string
	putType     string
	deletedKeys []string
	putErr      error
}

func (f *fakeAvatarStore) Put(_ context.Context, key, contentType string, body io.Reader) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.putKey = key
	f.putType = contentType
	_, _ = io.Copy(io.Discard, body)
	return "https://cdn.example.com/avatars/" + key, nil
}

func (f *fakeAvatarStore) Delete(_ context.Context, key string) error {
	f.deletedKeys = append(f.deletedKeys, key)
	return nil
}

func (f *fakeAvatarStore) KeyFromURL(url string) (string, bool) {
	const prefix = "https://cdn.example.com/avatars/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

func TestUploadAvatarStoresAndRecords(t *testing.T) {
	repo := newFakeStudentRepo()
	store := &fakeAvatarStore{}
	svc := NewProfileService(repo, store, nil, zaptest.NewLogger(t))

	student := domain.Student{ID: "id-1", Email: "mario.rossi@example.com"}
	url, err := svc.UploadAvatar(context.Background(), student, "foto.png", "image/png", 1024, strings.NewReader("fake-bytes"))
	if err != nil {
		t.Fatalf("UploadAvatar returned error: %v", err)
	}

	if !strings.HasPrefix(store.putKey, "id-1/") || !strings.HasSuffix(store.putKey, ".png") {
		t.Fatalf("object key = %q, want id-1/<millis>.png", store.putKey)
	}
	if store.putType != "image/png" {
		t.Fatalf("content type = %q", store.putType)
	}
	if repo.avatarURL == nil || *repo.avatarURL != url {
		t.Fatalf("recorded avatar url = %v, want %q", repo.avatarURL, url)
	}
}

func TestUploadAvatarReplacesPrevious(t *testing.T) {
	repo := newFakeStudentRepo()
	store := &fakeAvatarStore{}
	svc := NewProfileService(repo, store, nil, zaptest.NewLogger(t))

	old := "https://cdn.example.com/avatars/id-1/100.jpg"
	student := domain.Student{ID: "id-1", AvatarURL: &old}

	if _, err := svc.UploadAvatar(context.Background(), student, "nuova.jpg", "image/jpeg", 2048, strings.NewReader("x")); err != nil {
		t.Fatalf("UploadAvatar returned error: %v", err)
	}

	if len(store.deletedKeys) != 1 || store.deletedKeys[0] != "id-1/100.jpg" {
		t.Fatalf("deleted keys = %v, want [id-1/100.jpg]", store.deletedKeys)
	}
}

func TestUploadAvatarRejectsNonImage(t *testing.T) {
	svc := NewProfileService(newFakeStudentRepo(), &fakeAvatarStore{}, nil, zaptest.NewLogger(t))

	_, err := svc.UploadAvatar(context.Background(), domain.Student{ID: "id-1"}, "doc.pdf", "application/pdf", 100, strings.NewReader("x"))
	if !errors.Is(err, ErrAvatarNotImage) {
		t.Fatalf("UploadAvatar = %v, want ErrAvatarNotImage", err)
	}
}

func TestUploadAvatarRejectsOversize(t *testing.T) {
	svc := NewProfileService(newFakeStudentRepo(), &fakeAvatarStore{}, nil, zaptest.NewLogger(t))

	_, err := svc.UploadAvatar(context.Background(), domain.Student{ID: "id-1"}, "foto.png", "image/png", MaxAvatarSize+1, strings.NewReader("x"))
	if !errors.Is(err, ErrAvatarTooLarge) {
		t.Fatalf("UploadAvatar = %v, want ErrAvatarTooLarge", err)
	}
}

func TestDeleteAvatarClearsColumnAndObject(t *testing.T) {
	repo := newFakeStudentRepo()
	store := &fakeAvatarStore{}
	svc := NewProfileService(repo, store, nil, zaptest.NewLogger(t))

	old := "https://cdn.example.com/avatars/id-1/100.jpg"
	student := domain.Student{ID: "id-1", AvatarURL: &old}

	if err := svc.DeleteAvatar(context.Background(), student); err != nil {
		t.Fatalf("DeleteAvatar returned error: %v", err)
	}

	if len(store.deletedKeys) != 1 {
		t.Fatalf("deleted keys = %v, want one entry", store.deletedKeys)
	}
	if repo.avatarID != "id-1" || repo.avatarURL != nil {
		t.Fatalf("avatar column update = (%q, %v), want (id-1, nil)", repo.avatarID, repo.avatarURL)
	}
}
