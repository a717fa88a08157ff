package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"crowdpulse/pkg/logger"
	"crowdpulse/pkg/models"
)

const InstagramActorID = "apify/instagram-scraper"

type InstagramAdapter struct {
	backend  Backend
	username string
	logger   *logger.Logger
}

func NewInstagramAdapter(backend Backend, username string, log *logger.Logger) *InstagramAdapter {
	return &InstagramAdapter{backend: backend, username: username, logger: log}
}

func (a *InstagramAdapter) Platform() models.Platform {
	return models.PlatformInstagram
}

type instagramRawItem struct {
	ID            string    `json:"id"`
	OwnerUsername string    `json:"ownerUsername"`
	OwnerFullName string    `json:"ownerFullName"`
	Caption       string    `json:"caption"`
	Timestamp     string    `json:"timestamp"`
	VideoURL      string    `json:"videoUrl"`
	Images        []string  `json:"images"`
	LikesCount    flexCount `json:"likesCount"`
	CommentsCount flexCount `json:"commentsCount"`
	URL           string    `json:"url"`
	Hashtags      []string  `json:"hashtags"`
	ShortCode     string    `json:"shortCode"`
}

func (a *InstagramAdapter) Fetch(ctx context.Context, limit int) ([]models.Post, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	run, err := a.backend.RunActor(ctx, InstagramActorID, map[string]interface{}{
		"usernames":    []string{a.username},
		"resultsType":  "posts",
		"resultsLimit": limit,
	})
	if err != nil {
		return nil, fmt.Errorf("instagram actor run failed: %w", err)
	}

	items, err := a.backend.ListItems(ctx, run.DefaultDatasetID)
	if err != nil {
		return nil, fmt.Errorf("instagram dataset listing failed: %w", err)
	}

	posts := make([]models.Post, 0, len(items))
	for _, item := range items {
		var raw instagramRawItem
		if err := json.Unmarshal(item, &raw); err != nil {
			a.logger.Warn("Dropping malformed instagram item: %v", err)
			continue
		}
		if raw.ID == "" {
			continue
		}
		posts = append(posts, a.mapItem(raw))
	}

	return posts, nil
}

func (a *InstagramAdapter) mapItem(raw instagramRawItem) models.Post {
	username := raw.OwnerUsername
	if username == "" {
		username = a.username
	}

	var mediaURLs models.StringArray
	if raw.VideoURL != "" {
		mediaURLs = models.StringArray{raw.VideoURL}
	} else {
		mediaURLs = models.StringArray(raw.Images)
	}

	originalURL := raw.URL
	if originalURL == "" && raw.ShortCode != "" {
		originalURL = fmt.Sprintf("https://www.instagram.com/p/%s/", raw.ShortCode)
	}

	return models.Post{
		Platform:          models.PlatformInstagram,
		PlatformPostID:    raw.ID,
		AuthorUsername:    username,
		AuthorDisplayName: raw.OwnerFullName,
		Content:           raw.Caption,
		PublishedAt:       parseTimestamp(raw.Timestamp),
		MediaURLs:         mediaURLs,
		MediaType:         instagramMediaType(raw),
		Likes:             int(raw.LikesCount),
		Shares:            0, // not exposed by the source
		Comments:          int(raw.CommentsCount),
		OriginalURL:       originalURL,
		Tags:              models.StringArray(raw.Hashtags),
	}
}

func instagramMediaType(raw instagramRawItem) models.MediaType {
	switch {
	case raw.VideoURL != "":
		return models.MediaTypeVideo
	case len(raw.Images) > 1:
		return models.MediaTypeCarousel
	case len(raw.Images) == 1:
		return models.MediaTypeImage
	default:
		return models.MediaTypeText
	}
}
