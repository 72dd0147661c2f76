package domain

// Video describes a single archived lesson as stored in the catalog
// artifact produced by the fetch job.
type Video struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	PublishedAt       string `json:"published_at"`
	Year              int    `json:"year"`
	Month             int    `json:"month"`
	DurationSeconds   int    `json:"duration_seconds"`
	DurationFormatted string `json:"duration_formatted"`
	ThumbnailURL      string `json:"thumbnail_url"`
	WatchURL          string `json:"watch_url"`
}

// MonthData groups a month's lessons.
type MonthData struct {
	Month     int     `json:"month"`
	MonthName string  `json:"month_name"`
	Total     int     `json:"total"`
	Videos    []Video `json:"videos"`
}

// YearData groups a school year's lessons.
type YearData struct {
	Year   int         `json:"year"`
	Total  int         `json:"total"`
	Months []MonthData `json:"months"`
}

// Catalog is the full cached archive.
type Catalog struct {
	LastUpdated string     `json:"last_updated"`
	TotalVideos int        `json:"total_videos"`
	Videos      []Video    `json:"videos"`
	Years       []YearData `json:"years,omitempty"`
}

// CatalogStats carries the aggregate numbers shown on the stats bar.
type CatalogStats struct {
	TotalVideos    int     `json:"total_videos"`
	TotalHours     int     `json:"total_hours"`
	FirstVideoDate *string `json:"first_video_date"`
	LastVideoDate  *string `json:"last_video_date"`
	LastUpdated    string  `json:"last_updated"`
}

// LiveStatus is the answer to "is the school streaming right now".
type LiveStatus struct {
	IsLive    bool   `json:"isLive"`
	VideoID   string `json:"videoId,omitempty"`
	Title     string `json:"title,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}
