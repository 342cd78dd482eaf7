package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pingpost/pingpost-backend/config"
	"github.com/pingpost/pingpost-backend/models"
	"github.com/pingpost/pingpost-backend/utils"
)

// BlogController manages the blog lifecycle: publish, read, update, delete,
// hashtag search and image upload.
type BlogController struct {
	db *gorm.DB
}

// NewBlogController creates a new BlogController instance.
func NewBlogController(db *gorm.DB) *BlogController {
	return &BlogController{db: db}
}

type blogRequest struct {
	Title    string `json:"title" binding:"required,min=1"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
}

// PublishBlog creates a new blog owned by the authenticated user.
// Hashtags are extracted from the content at publish time.
func (b *BlogController) PublishBlog(ctx *gin.Context) {
	var req blogRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	title := utils.SanitizePlain(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
		return
	}
	content := utils.Sanitize(req.Content)

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var author models.User
	if err := b.db.First(&author, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load user")
		return
	}

	blog := models.Blog{
		UserID:   author.ID,
		Title:    title,
		Content:  content,
		ImageURL: req.ImageURL,
	}

	tags := utils.ExtractHashtags(content)
	err := b.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&blog).Error; err != nil {
			return err
		}
		return replaceHashtags(tx, blog.ID, tags)
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to create blog")
		return
	}
	blog.User = author

	utils.InvalidateByPrefix("cache:blogs:list:")

	utils.Success(ctx, gin.H{"blog": toBlogResponse(b.db, blog)})
}

// ListBlogs returns every blog, newest first, each individually assembled.
func (b *BlogController) ListBlogs(ctx *gin.Context) {
	var blogs []models.Blog
	if err := b.db.Preload("User").Order("created_at DESC").Find(&blogs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list blogs")
		return
	}
	utils.Success(ctx, gin.H{"items": toBlogResponses(b.db, blogs)})
}

// ListBlogsPaginated returns one page of blogs with pagination totals.
func (b *BlogController) ListBlogsPaginated(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("size"))

	cacheKey := fmt.Sprintf("cache:blogs:list:page=%d:size=%d", page, pageSize)
	if cached, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(200, "application/json", cached)
		return
	}

	var total int64
	if err := b.db.Model(&models.Blog{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to count blogs")
		return
	}

	var blogs []models.Blog
	if err := b.db.Preload("User").Order("created_at DESC").
		Offset(page * pageSize).Limit(pageSize).Find(&blogs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to list blogs")
		return
	}

	payload := PaginatedResponse{
		Items:         toBlogResponses(b.db, blogs),
		TotalPages:    (total + int64(pageSize) - 1) / int64(pageSize),
		TotalElements: total,
		PageSize:      pageSize,
		Page:          page,
	}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// GetBlog returns a single assembled blog.
func (b *BlogController) GetBlog(ctx *gin.Context) {
	blogID := ctx.Param("id")

	if cached, ok := utils.CacheGetBytes("cache:blog:detail:" + blogID); ok {
		ctx.Data(200, "application/json", cached)
		return
	}

	var blog models.Blog
	if err := b.db.Preload("User").First(&blog, "id = ?", blogID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "blog not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to load blog")
		return
	}

	payload := gin.H{"blog": toBlogResponse(b.db, blog)}
	utils.CacheSetJSON("cache:blog:detail:"+blogID, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// ListUserBlogs returns all blogs written by the given username.
// An unknown username yields an empty list, matching the list-filter shape.
func (b *BlogController) ListUserBlogs(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.Param("username"))
	var blogs []models.Blog
	if err := b.db.Preload("User").
		Joins("JOIN users ON users.id = blogs.user_id").
		Where("users.username = ?", username).
		Order("blogs.created_at DESC").Find(&blogs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to list user blogs")
		return
	}
	utils.Success(ctx, gin.H{"items": toBlogResponses(b.db, blogs)})
}

// UpdateBlog allows the author to replace title, content, image and hashtags.
// The hashtag set is recomputed from the new content, fully replacing the old one.
func (b *BlogController) UpdateBlog(ctx *gin.Context) {
	var req blogRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid request payload")
		return
	}

	title := utils.SanitizePlain(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40023, "title cannot be empty")
		return
	}
	content := utils.Sanitize(req.Content)

	blogID := ctx.Param("id")
	var blog models.Blog
	if err := b.db.Preload("User").First(&blog, "id = ?", blogID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "blog not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to load blog")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}
	if blog.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40301, "you are not the author of this blog")
		return
	}

	blog.Title = title
	blog.Content = content
	blog.ImageURL = req.ImageURL

	tags := utils.ExtractHashtags(content)
	err := b.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&blog).Error; err != nil {
			return err
		}
		return replaceHashtags(tx, blog.ID, tags)
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to update blog")
		return
	}

	utils.InvalidateByPrefix("cache:blogs:list:")
	utils.InvalidateByPrefix("cache:blog:detail:" + blogID)

	utils.Success(ctx, gin.H{"blog": toBlogResponse(b.db, blog)})
}

// DeleteBlog removes a blog and, in the same transaction, every like,
// comment and hashtag row referencing it, so no orphans survive.
func (b *BlogController) DeleteBlog(ctx *gin.Context) {
	blogID := ctx.Param("id")
	var blog models.Blog
	if err := b.db.First(&blog, "id = ?", blogID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "blog not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to load blog")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "unauthorized")
		return
	}
	if blog.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40302, "you are not the author of this blog")
		return
	}

	err := b.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blog_id = ?", blog.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("blog_id = ?", blog.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("blog_id = ?", blog.ID).Delete(&models.BlogHashtag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&blog).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to delete blog")
		return
	}

	utils.InvalidateByPrefix("cache:blogs:list:")
	utils.InvalidateByPrefix("cache:blog:detail:" + blogID)

	utils.Success(ctx, gin.H{"message": "blog deleted"})
}

// SearchByHashtag returns blogs carrying the given hashtag, exact
// case-insensitive match against the stored lowercase tags.
func (b *BlogController) SearchByHashtag(ctx *gin.Context) {
	tag := strings.ToLower(strings.TrimSpace(ctx.Query("hashtag")))
	if tag == "" {
		utils.Success(ctx, gin.H{"items": []BlogResponse{}})
		return
	}

	var blogs []models.Blog
	if err := b.db.Preload("User").
		Joins("JOIN blog_hashtags ON blog_hashtags.blog_id = blogs.id").
		Where("blog_hashtags.tag = ?", tag).
		Order("blogs.created_at DESC").Find(&blogs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to search blogs")
		return
	}
	utils.Success(ctx, gin.H{"items": toBlogResponses(b.db, blogs)})
}

// HashtagSuggestions returns the distinct stored hashtags starting with the
// given prefix. An empty prefix yields an empty list, not all tags.
func (b *BlogController) HashtagSuggestions(ctx *gin.Context) {
	prefix := strings.ToLower(strings.TrimSpace(ctx.Query("q")))
	tags := make([]string, 0)
	if prefix == "" {
		utils.Success(ctx, gin.H{"hashtags": tags})
		return
	}

	if err := b.db.Model(&models.BlogHashtag{}).Distinct("tag").
		Where("tag LIKE ?", prefix+"%").
		Order("tag").Pluck("tag", &tags).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to load hashtags")
		return
	}
	utils.Success(ctx, gin.H{"hashtags": tags})
}

// UploadImage stores a blog image under the upload directory and returns its URL.
func (b *BlogController) UploadImage(ctx *gin.Context) {
	if _, ok := getUserID(ctx); !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "unauthorized")
		return
	}

	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "no file uploaded")
		return
	}
	defer file.Close()

	const maxSize = 10 * 1024 * 1024
	if header.Size > maxSize {
		utils.Error(ctx, http.StatusBadRequest, 40025, "file size exceeds 10MB")
		return
	}

	now := time.Now()
	baseDir := filepath.Join(config.Get().UploadDir, now.Format("2006"), now.Format("01"), now.Format("02"))
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to create upload directory")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	name := uuid.NewString() + ext
	dstPath := filepath.Join(baseDir, name)
	if err := ctx.SaveUploadedFile(header, dstPath); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to save file")
		return
	}

	url := fmt.Sprintf("/static/uploads/%s/%s/%s/%s", now.Format("2006"), now.Format("01"), now.Format("02"), name)
	utils.Success(ctx, gin.H{"url": url})
}

// replaceHashtags swaps the stored tag set of a blog for the given one.
func replaceHashtags(tx *gorm.DB, blogID uint, tags []string) error {
	if err := tx.Where("blog_id = ?", blogID).Delete(&models.BlogHashtag{}).Error; err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}
	rows := make([]models.BlogHashtag, 0, len(tags))
	for _, tag := range tags {
		rows = append(rows, models.BlogHashtag{BlogID: blogID, Tag: tag})
	}
	return tx.Create(&rows).Error
}
