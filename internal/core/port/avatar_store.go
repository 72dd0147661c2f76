package port

import (
	"context"
	"io"
)

// AvatarStore persists avatar blobs in object storage.
type AvatarStore interface {
	// Put uploads the object and returns its public URL.
	Put(ctx context.Context, key string, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	// KeyFromURL recovers the object key from a previously returned public
	// URL, so stale avatars can be removed on replace.
	KeyFromURL(url string) (string, bool)
}
