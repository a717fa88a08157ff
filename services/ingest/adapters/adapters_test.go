package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"crowdpulse/pkg/apify"
	"crowdpulse/pkg/logger"
	"crowdpulse/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend replays canned dataset items and records actor inputs.
type fakeBackend struct {
	items      []string
	runErr     error
	listErr    error
	gotActorID string
	gotInput   interface{}
}

func (f *fakeBackend) RunActor(ctx context.Context, actorID string, input interface{}) (*apify.ActorRun, error) {
	f.gotActorID = actorID
	f.gotInput = input
	if f.runErr != nil {
		return nil, f.runErr
	}
	return &apify.ActorRun{ID: "run-1", Status: "SUCCEEDED", DefaultDatasetID: "dataset-1"}, nil
}

func (f *fakeBackend) ListItems(ctx context.Context, datasetID string) ([]json.RawMessage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]json.RawMessage, 0, len(f.items))
	for _, item := range f.items {
		out = append(out, json.RawMessage(item))
	}
	return out, nil
}

func TestXAdapter_Fetch(t *testing.T) {
	backend := &fakeBackend{items: []string{
		`{
			"id": "1845000000000000001",
			"text": "A big announcement",
			"createdAt": "2025-08-01T12:30:00.000Z",
			"author": {"userName": "some_account", "name": "Some Account"},
			"media": [{"url": "https://pbs.example.com/a.jpg", "type": "photo"}],
			"likeCount": 120,
			"retweetCount": 45,
			"replyCount": 9,
			"entities": {"hashtags": [{"text": "news"}]}
		}`,
	}}

	adapter := NewXAdapter(backend, "some_account", logger.New())
	posts, err := adapter.Fetch(context.Background(), 50)

	require.NoError(t, err)
	require.Len(t, posts, 1)

	post := posts[0]
	assert.Equal(t, models.PlatformX, post.Platform)
	assert.Equal(t, "1845000000000000001", post.PlatformPostID)
	assert.Equal(t, "some_account", post.AuthorUsername)
	assert.Equal(t, "A big announcement", post.Content)
	assert.Equal(t, models.MediaTypeImage, post.MediaType)
	assert.Equal(t, 120, post.Likes)
	assert.Equal(t, 45, post.Shares)
	assert.Equal(t, 9, post.Comments)
	assert.Equal(t, models.StringArray{"news"}, post.Tags)
	assert.Equal(t, "https://x.com/some_account/status/1845000000000000001", post.OriginalURL)
	assert.Equal(t, time.Date(2025, 8, 1, 12, 30, 0, 0, time.UTC), post.PublishedAt)

	assert.Equal(t, XActorID, backend.gotActorID)
	input := backend.gotInput.(map[string]interface{})
	assert.Equal(t, []string{"from:some_account"}, input["searchTerms"])
	assert.Equal(t, 50, input["maxItems"])
}

func TestXAdapter_MediaTypeCarousel(t *testing.T) {
	backend := &fakeBackend{items: []string{
		`{"id": "2", "media": [{"url": "https://m/1.jpg", "type": "photo"}, {"url": "https://m/2.jpg", "type": "photo"}]}`,
	}}

	adapter := NewXAdapter(backend, "some_account", logger.New())
	posts, err := adapter.Fetch(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, models.MediaTypeCarousel, posts[0].MediaType)
	assert.Equal(t, models.StringArray{"https://m/1.jpg", "https://m/2.jpg"}, posts[0].MediaURLs)
}

func TestXAdapter_MediaTypeText(t *testing.T) {
	backend := &fakeBackend{items: []string{
		`{"id": "3", "text": "plain words only"}`,
	}}

	adapter := NewXAdapter(backend, "some_account", logger.New())
	posts, err := adapter.Fetch(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, models.MediaTypeText, posts[0].MediaType)
	assert.Empty(t, posts[0].MediaURLs)
}

func TestXAdapter_MediaTypeVideo(t *testing.T) {
	backend := &fakeBackend{items: []string{
		`{"id": "4", "media": [{"url": "https://m/v.mp4", "type": "video"}]}`,
	}}

	adapter := NewXAdapter(backend, "some_account", logger.New())
	posts, err := adapter.Fetch(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, models.MediaTypeVideo, posts[0].MediaType)
}

func TestXAdapter_MissingEngagementDefaultsToZero(t *testing.T) {
	backend := &fakeBackend{items: []string{
		`{"id": "5", "text": "no counters here"}`,
		`{"id": "6", "likeCount": "not-a-number"}`,
	}}

	adapter := NewXAdapter(backend, "some_account", logger.New())
	posts, err := adapter.Fetch(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, posts, 2)
	for _, post := range posts {
		assert.Equal(t, 0, post.Likes)
		assert.Equal(t, 0, post.Shares)
		assert.Equal(t, 0, post.Comments)
	}
}

func TestXAdapter_DropsItemsWithoutIdentity(t *testing.T) {
	backend := &fakeBackend{items: []string{
		`{"text": "no id at all"}`,
		`{"id": "7", "text": "kept"}`,
	}}

	adapter := NewXAdapter(backend, "some_account", logger.New())
	posts, err := adapter.Fetch(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "7", posts[0].PlatformPostID)
}

func TestXAdapter_BackendError(t *testing.T) {
	backend := &fakeBackend{runErr: errors.New("backend unreachable")}

	adapter := NewXAdapter(backend, "some_account", logger.New())
	posts, err := adapter.Fetch(context.Background(), 10)

	assert.Error(t, err)
	assert.Nil(t, posts)
}

func TestInstagramAdapter_Fetch(t *testing.T) {
	backend := &fakeBackend{items: []string{
		`{
			"id": "ig-100",
			"ownerUsername": "some_account",
			"ownerFullName": "Some Account",
			"caption": "sunset #evening",
			"timestamp": "2025-08-02T19:00:00Z",
			"images": ["https://ig/1.jpg"],
			"likesCount": 300,
			"commentsCount": 12,
			"url": "https://www.instagram.com/p/abc/",
			"hashtags": ["evening"]
		}`,
	}}

	adapter := NewInstagramAdapter(backend, "some_account", logger.New())
	posts, err := adapter.Fetch(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, posts, 1)

	post := posts[0]
	assert.Equal(t, models.PlatformInstagram, post.Platform)
	assert.Equal(t, "ig-100", post.PlatformPostID)
	assert.Equal(t, models.MediaTypeImage, post.MediaType)
	assert.Equal(t, 300, post.Likes)
	assert.Equal(t, 0, post.Shares)
	assert.Equal(t, 12, post.Comments)
	assert.Equal(t, "https://www.instagram.com/p/abc/", post.OriginalURL)
	assert.Equal(t, models.StringArray{"evening"}, post.Tags)

	assert.Equal(t, InstagramActorID, backend.gotActorID)
	input := backend.gotInput.(map[string]interface{})
	assert.Equal(t, []string{"some_account"}, input["usernames"])
}

func TestInstagramAdapter_VideoWinsOverImages(t *testing.T) {
	backend := &fakeBackend{items: []string{
		`{"id": "ig-101", "videoUrl": "https://ig/v.mp4", "images": ["https://ig/1.jpg", "https://ig/2.jpg"]}`,
	}}

	adapter := NewInstagramAdapter(backend, "some_account", logger.New())
	posts, err := adapter.Fetch(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, models.MediaTypeVideo, posts[0].MediaType)
	assert.Equal(t, models.StringArray{"https://ig/v.mp4"}, posts[0].MediaURLs)
}

func TestInstagramAdapter_Carousel(t *testing.T) {
	backend := &fakeBackend{items: []string{
		`{"id": "ig-102", "images": ["https://ig/1.jpg", "https://ig/2.jpg", "https://ig/3.jpg"]}`,
	}}

	adapter := NewInstagramAdapter(backend, "some_account", logger.New())
	posts, err := adapter.Fetch(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, models.MediaTypeCarousel, posts[0].MediaType)
	assert.Len(t, posts[0].MediaURLs, 3)
}

func TestFacebookAdapter_Fetch(t *testing.T) {
	backend := &fakeBackend{items: []string{
		`{
			"postId": "fb-1",
			"pageName": "Some Page",
			"text": "an update",
			"time": "2025-08-03T08:00:00Z",
			"likesCount": 50,
			"sharesCount": 5,
			"commentsCount": 2,
			"url": "https://www.facebook.com/some_page/posts/fb-1"
		}`,
	}}

	adapter := NewFacebookAdapter(backend, "some_page", logger.New())
	posts, err := adapter.Fetch(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, posts, 1)

	post := posts[0]
	assert.Equal(t, models.PlatformFacebook, post.Platform)
	assert.Equal(t, "fb-1", post.PlatformPostID)
	assert.Equal(t, "some_page", post.AuthorUsername)
	assert.Equal(t, "Some Page", post.AuthorDisplayName)
	assert.Equal(t, models.MediaTypeText, post.MediaType)
	assert.Equal(t, 50, post.Likes)
	assert.Equal(t, 5, post.Shares)
	assert.Empty(t, post.Tags)

	assert.Equal(t, FacebookActorID, backend.gotActorID)
}

func TestFacebookAdapter_IDFallbackChain(t *testing.T) {
	backend := &fakeBackend{items: []string{
		`{"id": "fallback-id", "text": "postId missing"}`,
	}}

	adapter := NewFacebookAdapter(backend, "some_page", logger.New())
	posts, err := adapter.Fetch(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "fallback-id", posts[0].PlatformPostID)
}

func TestFacebookAdapter_LikeCountFallback(t *testing.T) {
	backend := &fakeBackend{items: []string{
		`{"postId": "fb-2", "likeCount": 33}`,
	}}

	adapter := NewFacebookAdapter(backend, "some_page", logger.New())
	posts, err := adapter.Fetch(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, 33, posts[0].Likes)
}

func TestFacebookAdapter_SingleMediaIsImage(t *testing.T) {
	backend := &fakeBackend{items: []string{
		`{"postId": "fb-3", "media": "https://fb/1.jpg"}`,
	}}

	adapter := NewFacebookAdapter(backend, "some_page", logger.New())
	posts, err := adapter.Fetch(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, models.MediaTypeImage, posts[0].MediaType)
	assert.Equal(t, models.StringArray{"https://fb/1.jpg"}, posts[0].MediaURLs)
}

func TestFacebookAdapter_ListError(t *testing.T) {
	backend := &fakeBackend{listErr: errors.New("dataset gone")}

	adapter := NewFacebookAdapter(backend, "some_page", logger.New())
	posts, err := adapter.Fetch(context.Background(), 10)

	assert.Error(t, err)
	assert.Nil(t, posts)
}

func TestParseTimestamp_Formats(t *testing.T) {
	cases := map[string]bool{
		"2025-08-01T12:30:00Z":           true,
		"2025-08-01T12:30:00.000Z":       true,
		"2025-08-01 12:30:00":            true,
		"Mon Aug 04 10:00:00 +0000 2025": true,
		"1754042400":                     true,
		"not a timestamp":                false,
		"":                               false,
	}
	for input, valid := range cases {
		got := parseTimestamp(input)
		if valid {
			assert.False(t, got.IsZero(), "expected %q to parse", input)
		} else {
			assert.True(t, got.IsZero(), "expected %q to be zero", input)
		}
	}
}
