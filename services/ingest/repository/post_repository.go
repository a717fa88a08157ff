package repository

import (
	"crowdpulse/pkg/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepository interface {
	// UpsertPosts performs one batched upsert keyed on
	// (platform, platform_post_id). Existing rows get their mutable
	// fields overwritten so re-fetching refreshes engagement counts
	// without creating duplicates. An empty batch is a no-op.
	UpsertPosts(posts []models.Post) (int64, error)
	GetByNaturalKey(platform models.Platform, platformPostID string) (*models.Post, error)
	List(platform string, limit, offset int) ([]*models.Post, error)
	GetByPostIDs(platform string, postIDs []string) ([]*models.Post, error)
	Count() (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// upsertColumns are the mutable fields a re-ingested post overwrites.
var upsertColumns = []string{
	"author_username",
	"author_display_name",
	"content",
	"published_at",
	"media_urls",
	"media_type",
	"likes",
	"shares",
	"comments",
	"original_url",
	"tags",
	"updated_at",
}

func (r *postRepository) UpsertPosts(posts []models.Post) (int64, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	// Records without a dedup key cannot be stored safely
	valid := make([]models.Post, 0, len(posts))
	for _, post := range posts {
		if err := post.Validate(); err != nil {
			continue
		}
		valid = append(valid, post)
	}
	if len(valid) == 0 {
		return 0, nil
	}

	result := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "platform"},
			{Name: "platform_post_id"},
		},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(&valid)
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (r *postRepository) GetByNaturalKey(platform models.Platform, platformPostID string) (*models.Post, error) {
	var post models.Post
	err := r.db.Where("platform = ? AND platform_post_id = ?", platform, platformPostID).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(platform string, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	query := r.db.Order("published_at DESC")
	if platform != "" {
		query = query.Where("platform = ?", platform)
	}
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) GetByPostIDs(platform string, postIDs []string) ([]*models.Post, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var posts []*models.Post
	err := r.db.
		Where("platform = ? AND platform_post_id IN ?", platform, postIDs).
		Order("published_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Post{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
