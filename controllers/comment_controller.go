package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pingpost/pingpost-backend/models"
	"github.com/pingpost/pingpost-backend/utils"
)

// CommentController manages comments attached to blogs.
type CommentController struct {
	db *gorm.DB
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{db: db}
}

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

// AddComment creates a comment on the given blog.
func (c *CommentController) AddComment(ctx *gin.Context) {
	var req commentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	content := utils.Sanitize(req.Content)
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40041, "content cannot be empty")
		return
	}

	blogID := ctx.Param("id")
	var blog models.Blog
	if err := c.db.First(&blog, "id = ?", blogID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "blog not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load blog")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40114, "unauthorized")
		return
	}

	comment := models.Comment{
		BlogID:  blog.ID,
		UserID:  userID,
		Content: content,
	}
	if err := c.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to create comment")
		return
	}
	if err := c.db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load comment")
		return
	}

	invalidateBlogProjections(blog.ID)

	utils.Success(ctx, gin.H{"comment": toCommentResponse(comment)})
}

// ListComments returns all comments of a blog in store iteration order.
func (c *CommentController) ListComments(ctx *gin.Context) {
	blogID := ctx.Param("id")
	var comments []models.Comment
	if err := c.db.Preload("User").Where("blog_id = ?", blogID).Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to list comments")
		return
	}
	utils.Success(ctx, gin.H{"items": toCommentResponses(comments)})
}

// UpdateComment lets the author edit a comment. The parent blog id from the
// path must match the comment's blog; a mismatch reads as not-found rather
// than forbidden, and authorship is checked before that match.
func (c *CommentController) UpdateComment(ctx *gin.Context) {
	var req commentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid request payload")
		return
	}

	content := utils.Sanitize(req.Content)
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40043, "content cannot be empty")
		return
	}

	commentID := ctx.Param("commentId")
	var comment models.Comment
	if err := c.db.Preload("User").First(&comment, "id = ?", commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40403, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to load comment")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40115, "unauthorized")
		return
	}
	if comment.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40303, "you are not the author of this comment")
		return
	}

	if strconv.FormatUint(uint64(comment.BlogID), 10) != ctx.Param("id") {
		utils.Error(ctx, http.StatusNotFound, 40404, "comment not found in this blog")
		return
	}

	comment.Content = content
	if err := c.db.Save(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50045, "failed to update comment")
		return
	}

	invalidateBlogProjections(comment.BlogID)

	utils.Success(ctx, gin.H{"comment": toCommentResponse(comment)})
}

// DeleteComment removes a comment if the caller authored it.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	commentID := ctx.Param("commentId")
	var comment models.Comment
	if err := c.db.First(&comment, "id = ?", commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40403, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50046, "failed to load comment")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40116, "unauthorized")
		return
	}
	if comment.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40304, "you are not the author of this comment")
		return
	}

	if err := c.db.Delete(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50047, "failed to delete comment")
		return
	}

	invalidateBlogProjections(comment.BlogID)

	utils.Success(ctx, gin.H{"message": "comment deleted"})
}

// invalidateBlogProjections drops cached blog views whose embedded counts
// changed because of an engagement mutation.
func invalidateBlogProjections(blogID uint) {
	utils.InvalidateByPrefix("cache:blog:detail:" + strconv.FormatUint(uint64(blogID), 10))
	utils.InvalidateByPrefix("cache:blogs:list:")
}
