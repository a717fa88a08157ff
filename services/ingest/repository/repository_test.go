package repository

import (
	"testing"
	"time"

	"crowdpulse/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Post{}, &models.FetchLog{}))
	return db
}

func samplePost(platform models.Platform, postID string) models.Post {
	return models.Post{
		Platform:          platform,
		PlatformPostID:    postID,
		AuthorUsername:    "some_account",
		AuthorDisplayName: "Some Account",
		Content:           "original content",
		PublishedAt:       time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC),
		MediaURLs:         models.StringArray{},
		MediaType:         models.MediaTypeText,
		Likes:             10,
		OriginalURL:       "https://x.com/some_account/status/" + postID,
		Tags:              models.StringArray{},
	}
}

func TestUpsertPosts_EmptyBatchIsNoOp(t *testing.T) {
	repo := NewPostRepository(setupTestDB(t))

	saved, err := repo.UpsertPosts(nil)

	assert.NoError(t, err)
	assert.Equal(t, int64(0), saved)
}

func TestUpsertPosts_Insert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)

	saved, err := repo.UpsertPosts([]models.Post{
		samplePost(models.PlatformX, "1"),
		samplePost(models.PlatformX, "2"),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2), saved)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestUpsertPosts_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)

	first := samplePost(models.PlatformX, "42")
	_, err := repo.UpsertPosts([]models.Post{first})
	require.NoError(t, err)

	// Second ingestion of the same post with refreshed engagement
	second := samplePost(models.PlatformX, "42")
	second.Content = "edited content"
	second.Likes = 999
	_, err = repo.UpsertPosts([]models.Post{second})
	require.NoError(t, err)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "upsert must not duplicate the natural key")

	stored, err := repo.GetByNaturalKey(models.PlatformX, "42")
	require.NoError(t, err)
	assert.Equal(t, "edited content", stored.Content)
	assert.Equal(t, 999, stored.Likes, "second write's field values win")
}

func TestUpsertPosts_SameKeyDifferentPlatforms(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)

	// The key is partitioned by platform: same post id on two
	// platforms is two rows
	_, err := repo.UpsertPosts([]models.Post{
		samplePost(models.PlatformX, "7"),
		samplePost(models.PlatformFacebook, "7"),
	})
	require.NoError(t, err)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestUpsertPosts_SkipsRecordsWithoutNaturalKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)

	invalid := samplePost(models.PlatformX, "")
	valid := samplePost(models.PlatformX, "9")

	saved, err := repo.UpsertPosts([]models.Post{invalid, valid})

	require.NoError(t, err)
	assert.Equal(t, int64(1), saved)
}

func TestUpsertPosts_PreservesMediaAndTags(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)

	post := samplePost(models.PlatformInstagram, "ig-1")
	post.MediaURLs = models.StringArray{"https://ig/1.jpg", "https://ig/2.jpg"}
	post.MediaType = models.MediaTypeCarousel
	post.Tags = models.StringArray{"sunset", "evening"}

	_, err := repo.UpsertPosts([]models.Post{post})
	require.NoError(t, err)

	stored, err := repo.GetByNaturalKey(models.PlatformInstagram, "ig-1")
	require.NoError(t, err)
	assert.Equal(t, models.StringArray{"https://ig/1.jpg", "https://ig/2.jpg"}, stored.MediaURLs)
	assert.Equal(t, models.MediaTypeCarousel, stored.MediaType)
	assert.Equal(t, models.StringArray{"sunset", "evening"}, stored.Tags)
}

func TestList_FiltersByPlatform(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)

	_, err := repo.UpsertPosts([]models.Post{
		samplePost(models.PlatformX, "1"),
		samplePost(models.PlatformInstagram, "2"),
	})
	require.NoError(t, err)

	posts, err := repo.List("x", 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, models.PlatformX, posts[0].Platform)

	all, err := repo.List("", 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestFetchLogRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFetchLogRepository(db)

	errMsg := "backend unreachable"
	err := repo.Create(&models.FetchLog{
		Platform:     models.PlatformInstagram,
		Status:       models.FetchStatusError,
		ItemsFetched: 0,
		ErrorMessage: &errMsg,
		CompletedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)

	logs, err := repo.Recent(10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.NotEmpty(t, logs[0].ID, "BeforeCreate must assign a uuid")
	assert.Equal(t, models.FetchStatusError, logs[0].Status)
	require.NotNil(t, logs[0].ErrorMessage)
	assert.Equal(t, "backend unreachable", *logs[0].ErrorMessage)
}

func TestFetchLogRepository_AppendOnlyOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFetchLogRepository(db)

	base := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, platform := range models.KnownPlatforms() {
		err := repo.Create(&models.FetchLog{
			Platform:     platform,
			Status:       models.FetchStatusSuccess,
			ItemsFetched: i,
			CompletedAt:  base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	logs, err := repo.Recent(2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.PlatformFacebook, logs[0].Platform, "newest first")
}
