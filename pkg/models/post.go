package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type Platform string

const (
	PlatformX         Platform = "x"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
)

// KnownPlatforms returns every platform the pipeline can ingest, in the
// order runs are processed.
func KnownPlatforms() []Platform {
	return []Platform{PlatformX, PlatformInstagram, PlatformFacebook}
}

// ParsePlatform validates a user-supplied platform name.
func ParsePlatform(name string) (Platform, error) {
	switch Platform(name) {
	case PlatformX, PlatformInstagram, PlatformFacebook:
		return Platform(name), nil
	}
	return "", fmt.Errorf("unknown platform: %q", name)
}

type MediaType string

const (
	MediaTypeText     MediaType = "text"
	MediaTypeImage    MediaType = "image"
	MediaTypeVideo    MediaType = "video"
	MediaTypeCarousel MediaType = "carousel"
)

// StringArray stores an ordered list of strings as a JSON column.
type StringArray []string

func (sa StringArray) Value() (driver.Value, error) {
	if len(sa) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(sa)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (sa *StringArray) Scan(value interface{}) error {
	if value == nil {
		*sa = StringArray{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("unsupported type for StringArray")
	}
	if len(bytes) == 0 {
		*sa = StringArray{}
		return nil
	}
	return json.Unmarshal(bytes, sa)
}

// Post is the canonical record every platform adapter produces. The
// pair (platform, platform_post_id) is the natural key: re-ingesting a
// post overwrites the existing row instead of duplicating it.
type Post struct {
	ID                uint        `gorm:"primaryKey" json:"-"`
	Platform          Platform    `gorm:"type:varchar(20);not null;uniqueIndex:idx_posts_natural_key" json:"platform"`
	PlatformPostID    string      `gorm:"column:platform_post_id;type:varchar(128);not null;uniqueIndex:idx_posts_natural_key" json:"platform_post_id"`
	AuthorUsername    string      `gorm:"type:varchar(255)" json:"author_username"`
	AuthorDisplayName string      `gorm:"type:varchar(255)" json:"author_display_name"`
	Content           string      `json:"content"`
	PublishedAt       time.Time   `json:"published_at"`
	MediaURLs         StringArray `gorm:"column:media_urls;type:text" json:"media_urls"`
	MediaType         MediaType   `gorm:"type:varchar(20);default:'text'" json:"media_type"`
	Likes             int         `gorm:"default:0" json:"likes"`
	Shares            int         `gorm:"default:0" json:"shares"`
	Comments          int         `gorm:"default:0" json:"comments"`
	OriginalURL       string      `json:"original_url"`
	Tags              StringArray `gorm:"type:text" json:"tags"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}

// Validate rejects records that cannot participate in deduplication.
func (p *Post) Validate() error {
	if p.Platform == "" {
		return errors.New("post is missing platform")
	}
	if p.PlatformPostID == "" {
		return errors.New("post is missing platform_post_id")
	}
	return nil
}
