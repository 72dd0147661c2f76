// Package youtube answers whether the school is streaming right now by
// querying the YouTube Data API search endpoint for an active broadcast.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/allegro/bigcache/v3"
	"go.uber.org/zap"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/domain"
)

const (
	defaultBaseURL = "https://www.googleapis.com/youtube/v3"
	liveCacheKey   = "live"
)

// Client polls the live search endpoint and memoizes the answer for a
// short TTL so page loads do not burn API quota. Every failure degrades
// to "not live": the banner is decorative, never load-bearing.
type Client struct {
	apiKey    string
	channelID string
	baseURL   string
	http      *http.Client
	cache     *bigcache.BigCache
	logger    *zap.Logger
}

// Option adjusts Client construction.
type Option func(*Client)

// WithBaseURL overrides the API origin.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = base
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient constructs the live-status client. ttl bounds how stale a
// cached answer may be.
func NewClient(apiKey, channelID string, ttl time.Duration, log *zap.Logger, opts ...Option) (*Client, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}

	cache, err := bigcache.New(context.Background(), bigcache.DefaultConfig(ttl))
	if err != nil {
		return nil, fmt.Errorf("youtube: init cache: %w", err)
	}

	client := &Client{
		apiKey:    apiKey,
		channelID: channelID,
		baseURL:   defaultBaseURL,
		http:      &http.Client{Timeout: 10 * time.Second},
		cache:     cache,
		logger:    log,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// searchResponse mirrors the slice of the search payload we consume.
type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			Thumbnails struct {
				High struct {
					URL string `json:"url"`
				} `json:"high"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// LiveStatus reports the current broadcast, serving the memoized answer
// when fresh enough.
func (c *Client) LiveStatus(ctx context.Context) domain.LiveStatus {
	if raw, err := c.cache.Get(liveCacheKey); err == nil {
		var status domain.LiveStatus
		if err := json.Unmarshal(raw, &status); err == nil {
			return status
		}
	}

	status := c.fetch(ctx)

	if raw, err := json.Marshal(status); err == nil {
		if err := c.cache.Set(liveCacheKey, raw); err != nil {
			c.logger.Warn("live status cache set failed", zap.Error(err))
		}
	}

	return status
}

func (c *Client) fetch(ctx context.Context) domain.LiveStatus {
	offline := domain.LiveStatus{IsLive: false}

	if c.apiKey == "" || c.channelID == "" {
		return offline
	}

	query := url.Values{}
	query.Set("part", "snippet")
	query.Set("channelId", c.channelID)
	query.Set("eventType", "live")
	query.Set("type", "video")
	// One broadcast at a time; a single result keeps the quota cost down.
	query.Set("maxResults", "1")
	query.Set("key", c.apiKey)

	endpoint := c.baseURL + "/search?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Warn("live status request build failed", zap.Error(err))
		return offline
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("live status request failed", zap.Error(err))
		return offline
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("live status request rejected", zap.Int("status", resp.StatusCode))
		return offline
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warn("live status decode failed", zap.Error(err))
		return offline
	}

	if len(payload.Items) == 0 {
		return offline
	}

	item := payload.Items[0]
	return domain.LiveStatus{
		IsLive:    true,
		VideoID:   item.ID.VideoID,
		Title:     item.Snippet.Title,
		Thumbnail: item.Snippet.Thumbnails.High.URL,
	}
}
