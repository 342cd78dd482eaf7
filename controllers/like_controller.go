package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pingpost/pingpost-backend/models"
	"github.com/pingpost/pingpost-backend/utils"
)

// LikeController manages like/unlike actions and like reads for blogs.
type LikeController struct {
	db *gorm.DB
}

// NewLikeController creates a new LikeController instance.
func NewLikeController(db *gorm.DB) *LikeController {
	return &LikeController{db: db}
}

func (l *LikeController) loadBlog(ctx *gin.Context) (models.Blog, bool) {
	var blog models.Blog
	if err := l.db.First(&blog, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "blog not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to load blog")
		}
		return models.Blog{}, false
	}
	return blog, true
}

// LikeBlog records a like for the caller. Liking twice is a silent no-op;
// the insert goes through the unique (user, blog) index so concurrent
// requests cannot produce duplicate rows. Authors cannot like their own blog.
func (l *LikeController) LikeBlog(ctx *gin.Context) {
	blog, ok := l.loadBlog(ctx)
	if !ok {
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40117, "unauthorized")
		return
	}
	if blog.UserID == userID {
		utils.Error(ctx, http.StatusUnprocessableEntity, 42201, "you cannot like your own blog")
		return
	}

	like := models.Like{UserID: userID, BlogID: blog.ID}
	if err := l.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to like blog")
		return
	}

	invalidateBlogProjections(blog.ID)

	utils.Success(ctx, gin.H{"message": "liked"})
}

// UnlikeBlog removes the caller's like if present. Absence is not an error.
func (l *LikeController) UnlikeBlog(ctx *gin.Context) {
	blog, ok := l.loadBlog(ctx)
	if !ok {
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40118, "unauthorized")
		return
	}

	if err := l.db.Where("user_id = ? AND blog_id = ?", userID, blog.ID).Delete(&models.Like{}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to unlike blog")
		return
	}

	invalidateBlogProjections(blog.ID)

	utils.Success(ctx, gin.H{"message": "unliked"})
}

// LikeCount returns the number of likes of a blog.
func (l *LikeController) LikeCount(ctx *gin.Context) {
	blog, ok := l.loadBlog(ctx)
	if !ok {
		return
	}

	var count int64
	if err := l.db.Model(&models.Like{}).Where("blog_id = ?", blog.ID).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to count likes")
		return
	}
	utils.Success(ctx, gin.H{"count": count})
}

// IsLiked reports whether the caller has liked the blog.
func (l *LikeController) IsLiked(ctx *gin.Context) {
	blog, ok := l.loadBlog(ctx)
	if !ok {
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40119, "unauthorized")
		return
	}

	var count int64
	if err := l.db.Model(&models.Like{}).
		Where("user_id = ? AND blog_id = ?", userID, blog.ID).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to check like")
		return
	}
	utils.Success(ctx, gin.H{"liked": count > 0})
}
