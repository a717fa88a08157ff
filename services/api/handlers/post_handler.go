package handlers

import (
	"net/http"
	"strconv"

	"crowdpulse/pkg/cache"
	"crowdpulse/pkg/logger"
	"crowdpulse/pkg/models"
	"crowdpulse/services/ingest/repository"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postRepo repository.PostRepository
	feed     *cache.Feed
	logger   *logger.Logger
}

func NewPostHandler(postRepo repository.PostRepository, feed *cache.Feed, log *logger.Logger) *PostHandler {
	return &PostHandler{
		postRepo: postRepo,
		feed:     feed,
		logger:   log,
	}
}

func paging(c *gin.Context) (limit, offset int) {
	limit = 20
	offset = 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}
	return limit, offset
}

// GetPosts godoc
// @Summary      List ingested posts
// @Description  Returns canonical posts across platforms, newest first. Filtering by platform uses the redis feed cache when warm.
// @Tags         posts
// @Produce      json
// @Param        platform query string false "Platform filter (x, instagram, facebook)"
// @Param        limit query int false "Number of posts to return (max 100)"
// @Param        offset query int false "Offset for pagination"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /posts [get]
func (h *PostHandler) GetPosts(c *gin.Context) {
	limit, offset := paging(c)

	platformName := c.Query("platform")
	if platformName != "" {
		if _, err := models.ParsePlatform(platformName); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	// Serve platform feeds from cache when it is warm
	if platformName != "" && h.feed != nil {
		ids, err := h.feed.Recent(c.Request.Context(), platformName, limit, offset)
		if err != nil {
			h.logger.Warn("Feed cache read failed: %v", err)
		} else if len(ids) > 0 {
			posts, err := h.postRepo.GetByPostIDs(platformName, ids)
			if err == nil {
				c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts), "source": "cache"})
				return
			}
			h.logger.Warn("Failed to load cached feed posts: %v", err)
		}
	}

	posts, err := h.postRepo.List(platformName, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list posts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts), "source": "db"})
}
