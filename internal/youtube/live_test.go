package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

const liveSearchPayload = `{
	"items": [
		{
			"id": {"videoId": "abc123"},
			"snippet": {
				"title": "Lezione di teoria in diretta",
				"thumbnails": {"high": {"url": "https://i.ytimg.com/vi/abc123/hqdefault_live.jpg"}}
			}
		}
	]
}`

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient("test-key", "UC18Pm8LKXwtK2uUSoif5RVw", time.Minute, zaptest.NewLogger(t),
		WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client, srv
}

func TestLiveStatusActiveBroadcast(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("eventType"); got != "live" {
			t.Errorf("eventType = %q, want live", got)
		}
		if got := r.URL.Query().Get("channelId"); got != "UC18Pm8LKXwtK2uUSoif5RVw" {
			t.Errorf("channelId = %q", got)
		}
		if got := r.URL.Query().Get("maxResults"); got != "1" {
			t.Errorf("maxResults = %q, want 1", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(liveSearchPayload))
	}))

	status := client.LiveStatus(context.Background())
	if !status.IsLive {
		t.Fatal("IsLive = false, want true")
	}
	if status.VideoID != "abc123" {
		t.Fatalf("VideoID = %q", status.VideoID)
	}
	if status.Title != "Lezione di teoria in diretta" {
		t.Fatalf("Title = %q", status.Title)
	}
}

func TestLiveStatusNoBroadcast(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items": []}`))
	}))

	if status := client.LiveStatus(context.Background()); status.IsLive {
		t.Fatal("IsLive = true, want false")
	}
}

func TestLiveStatusDegradesOnAPIError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	if status := client.LiveStatus(context.Background()); status.IsLive {
		t.Fatal("IsLive = true on API error, want false")
	}
}

func TestLiveStatusMemoized(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(liveSearchPayload))
	}))

	client.LiveStatus(context.Background())
	client.LiveStatus(context.Background())

	if got := calls.Load(); got != 1 {
		t.Fatalf("upstream calls = %d, want 1", got)
	}
}

func TestLiveStatusWithoutAPIKey(t *testing.T) {
	client, err := NewClient("", "UC18Pm8LKXwtK2uUSoif5RVw", time.Minute, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	if status := client.LiveStatus(context.Background()); status.IsLive {
		t.Fatal("IsLive = true without API key, want false")
	}
}
