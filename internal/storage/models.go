package storage

import (
	"time"
)

// MediaType classifies the primary media attached to an article.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Article is the normalized record every view and the search layer work on.
// DateTime is nil when the payload carried no parseable timestamp.
type Article struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Description  string     `json:"description"`
	URL          string     `json:"url"`
	MediaURL     string     `json:"media_url"`
	MediaType    MediaType  `json:"media_type"`
	ThumbnailURL string     `json:"thumbnail_url"`
	Category     string     `json:"category"`
	ReadMinutes  int        `json:"read_minutes"`
	DateTime     *time.Time `json:"date_time,omitempty"`
	Featured     bool       `json:"featured"`
}

// IsVideo reports whether the article's primary media is a video.
func (a *Article) IsVideo() bool {
	return a.MediaType == MediaVideo
}

type Bookmark struct {
	Article Article   `json:"article"`
	SavedAt time.Time `json:"saved_at"`
}

// Session is the locally persisted login. Claims are copied out of the token
// when it is stored so views can show them without reparsing.
type Session struct {
	Token   string    `json:"token"`
	UserID  string    `json:"user_id"`
	Subject string    `json:"subject"`
	Name    string    `json:"name"`
	Role    string    `json:"role"`
	SavedAt time.Time `json:"saved_at"`
}
