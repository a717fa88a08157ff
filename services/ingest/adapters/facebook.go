package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"crowdpulse/pkg/logger"
	"crowdpulse/pkg/models"
)

const FacebookActorID = "apify/facebook-posts-scraper"

type FacebookAdapter struct {
	backend  Backend
	username string
	logger   *logger.Logger
}

func NewFacebookAdapter(backend Backend, username string, log *logger.Logger) *FacebookAdapter {
	return &FacebookAdapter{backend: backend, username: username, logger: log}
}

func (a *FacebookAdapter) Platform() models.Platform {
	return models.PlatformFacebook
}

func (a *FacebookAdapter) pageURL() string {
	return fmt.Sprintf("https://www.facebook.com/%s", a.username)
}

type facebookRawItem struct {
	PostID        string    `json:"postId"`
	ID            string    `json:"id"`
	PageName      string    `json:"pageName"`
	Text          string    `json:"text"`
	Caption       string    `json:"caption"`
	Time          string    `json:"time"`
	Media         string    `json:"media"`
	Images        []string  `json:"images"`
	Video         string    `json:"video"`
	LikesCount    flexCount `json:"likesCount"`
	LikeCount     flexCount `json:"likeCount"`
	SharesCount   flexCount `json:"sharesCount"`
	CommentsCount flexCount `json:"commentsCount"`
	URL           string    `json:"url"`
}

func (a *FacebookAdapter) Fetch(ctx context.Context, limit int) ([]models.Post, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	run, err := a.backend.RunActor(ctx, FacebookActorID, map[string]interface{}{
		"startUrls":             []map[string]string{{"url": a.pageURL()}},
		"resultsLimit":          limit,
		"includeNestedComments": false,
	})
	if err != nil {
		return nil, fmt.Errorf("facebook actor run failed: %w", err)
	}

	items, err := a.backend.ListItems(ctx, run.DefaultDatasetID)
	if err != nil {
		return nil, fmt.Errorf("facebook dataset listing failed: %w", err)
	}

	posts := make([]models.Post, 0, len(items))
	for _, item := range items {
		var raw facebookRawItem
		if err := json.Unmarshal(item, &raw); err != nil {
			a.logger.Warn("Dropping malformed facebook item: %v", err)
			continue
		}
		// The actor exposes the id under postId or id depending on version
		if raw.PostID == "" && raw.ID == "" {
			continue
		}
		posts = append(posts, a.mapItem(raw))
	}

	return posts, nil
}

func (a *FacebookAdapter) mapItem(raw facebookRawItem) models.Post {
	postID := raw.PostID
	if postID == "" {
		postID = raw.ID
	}

	content := raw.Text
	if content == "" {
		content = raw.Caption
	}

	var mediaURLs models.StringArray
	if raw.Media != "" {
		mediaURLs = models.StringArray{raw.Media}
	} else {
		mediaURLs = models.StringArray(raw.Images)
	}

	likes := int(raw.LikesCount)
	if likes == 0 {
		likes = int(raw.LikeCount)
	}

	originalURL := raw.URL
	if originalURL == "" {
		originalURL = fmt.Sprintf("%s/posts/%s", a.pageURL(), postID)
	}

	return models.Post{
		Platform:          models.PlatformFacebook,
		PlatformPostID:    postID,
		AuthorUsername:    a.username,
		AuthorDisplayName: raw.PageName,
		Content:           content,
		PublishedAt:       parseTimestamp(raw.Time),
		MediaURLs:         mediaURLs,
		MediaType:         facebookMediaType(raw),
		Likes:             likes,
		Shares:            int(raw.SharesCount),
		Comments:          int(raw.CommentsCount),
		OriginalURL:       originalURL,
		Tags:              models.StringArray{}, // hashtags are not exposed by the source
	}
}

func facebookMediaType(raw facebookRawItem) models.MediaType {
	switch {
	case raw.Video != "":
		return models.MediaTypeVideo
	case len(raw.Images) > 1:
		return models.MediaTypeCarousel
	case raw.Media != "" || len(raw.Images) == 1:
		return models.MediaTypeImage
	default:
		return models.MediaTypeText
	}
}
