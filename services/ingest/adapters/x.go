package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"crowdpulse/pkg/logger"
	"crowdpulse/pkg/models"
)

const XActorID = "apidojo/tweet-scraper"

type XAdapter struct {
	backend  Backend
	username string
	logger   *logger.Logger
}

func NewXAdapter(backend Backend, username string, log *logger.Logger) *XAdapter {
	return &XAdapter{backend: backend, username: username, logger: log}
}

func (a *XAdapter) Platform() models.Platform {
	return models.PlatformX
}

type xMediaEntity struct {
	URL           string `json:"url"`
	MediaURLHTTPS string `json:"media_url_https"`
	Type          string `json:"type"`
}

type xRawItem struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
	Author    struct {
		UserName string `json:"userName"`
		Name     string `json:"name"`
	} `json:"author"`
	Media        []xMediaEntity `json:"media"`
	LikeCount    flexCount      `json:"likeCount"`
	RetweetCount flexCount      `json:"retweetCount"`
	ReplyCount   flexCount      `json:"replyCount"`
	Entities     struct {
		Hashtags []struct {
			Text string `json:"text"`
		} `json:"hashtags"`
	} `json:"entities"`
}

func (a *XAdapter) Fetch(ctx context.Context, limit int) ([]models.Post, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	run, err := a.backend.RunActor(ctx, XActorID, map[string]interface{}{
		"searchTerms":   []string{fmt.Sprintf("from:%s", a.username)},
		"sort":          "Latest",
		"maxItems":      limit,
		"tweetLanguage": "en",
	})
	if err != nil {
		return nil, fmt.Errorf("x actor run failed: %w", err)
	}

	items, err := a.backend.ListItems(ctx, run.DefaultDatasetID)
	if err != nil {
		return nil, fmt.Errorf("x dataset listing failed: %w", err)
	}

	posts := make([]models.Post, 0, len(items))
	for _, item := range items {
		var raw xRawItem
		if err := json.Unmarshal(item, &raw); err != nil {
			a.logger.Warn("Dropping malformed x item: %v", err)
			continue
		}
		if raw.ID == "" {
			// No identity, no dedup key
			continue
		}
		posts = append(posts, a.mapItem(raw))
	}

	return posts, nil
}

func (a *XAdapter) mapItem(raw xRawItem) models.Post {
	username := raw.Author.UserName
	if username == "" {
		username = a.username
	}

	mediaURLs := make(models.StringArray, 0, len(raw.Media))
	for _, m := range raw.Media {
		if m.URL != "" {
			mediaURLs = append(mediaURLs, m.URL)
		} else if m.MediaURLHTTPS != "" {
			mediaURLs = append(mediaURLs, m.MediaURLHTTPS)
		}
	}

	tags := make(models.StringArray, 0, len(raw.Entities.Hashtags))
	for _, h := range raw.Entities.Hashtags {
		if h.Text != "" {
			tags = append(tags, h.Text)
		}
	}

	originalURL := raw.URL
	if originalURL == "" {
		originalURL = fmt.Sprintf("https://x.com/%s/status/%s", username, raw.ID)
	}

	return models.Post{
		Platform:          models.PlatformX,
		PlatformPostID:    raw.ID,
		AuthorUsername:    username,
		AuthorDisplayName: raw.Author.Name,
		Content:           raw.Text,
		PublishedAt:       parseTimestamp(raw.CreatedAt),
		MediaURLs:         mediaURLs,
		MediaType:         xMediaType(raw.Media),
		Likes:             int(raw.LikeCount),
		Shares:            int(raw.RetweetCount),
		Comments:          int(raw.ReplyCount),
		OriginalURL:       originalURL,
		Tags:              tags,
	}
}

func xMediaType(media []xMediaEntity) models.MediaType {
	for _, m := range media {
		if m.Type == "video" || m.Type == "animated_gif" {
			return models.MediaTypeVideo
		}
	}
	switch {
	case len(media) > 1:
		return models.MediaTypeCarousel
	case len(media) == 1:
		return models.MediaTypeImage
	default:
		return models.MediaTypeText
	}
}
