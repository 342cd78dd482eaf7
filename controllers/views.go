package controllers

import (
	"time"

	"gorm.io/gorm"

	"github.com/pingpost/pingpost-backend/models"
)

// AuthorSummary is the minimal public projection of a user embedded in
// content responses. It never exposes email or credentials.
type AuthorSummary struct {
	Username       string `json:"username"`
	FullName       string `json:"full_name"`
	ProfilePicture string `json:"profile_picture"`
}

// PublicProfile is the outward-facing user profile projection.
type PublicProfile struct {
	Username       string `json:"username"`
	FullName       string `json:"full_name"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profile_picture"`
}

// BlogResponse is the outward-facing blog projection. Like and comment counts
// are computed fresh at assembly time, never cached on the blog row.
type BlogResponse struct {
	ID           uint          `json:"id"`
	Title        string        `json:"title"`
	Content      string        `json:"content"`
	ImageURL     string        `json:"image_url"`
	Author       AuthorSummary `json:"author"`
	Hashtags     []string      `json:"hashtags"`
	LikeCount    int64         `json:"like_count"`
	CommentCount int64         `json:"comment_count"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// CommentResponse surfaces the author username as a plain string.
type CommentResponse struct {
	ID             uint      `json:"id"`
	Content        string    `json:"content"`
	AuthorUsername string    `json:"author_username"`
	BlogID         uint      `json:"blog_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// PaginatedResponse wraps one page of items with pagination totals.
type PaginatedResponse struct {
	Items         interface{} `json:"items"`
	TotalPages    int64       `json:"total_pages"`
	TotalElements int64       `json:"total_elements"`
	PageSize      int         `json:"page_size"`
	Page          int         `json:"page"`
}

func toAuthorSummary(u models.User) AuthorSummary {
	return AuthorSummary{
		Username:       u.Username,
		FullName:       u.FullName,
		ProfilePicture: u.ProfilePicture,
	}
}

func toPublicProfile(u models.User) PublicProfile {
	return PublicProfile{
		Username:       u.Username,
		FullName:       u.FullName,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
	}
}

func toPublicProfiles(users []models.User) []PublicProfile {
	out := make([]PublicProfile, 0, len(users))
	for _, u := range users {
		out = append(out, toPublicProfile(u))
	}
	return out
}

// toBlogResponse assembles the blog projection; blog.User must be loaded.
// The sibling stores are queried at assembly time so counts are consistent
// with the engagement store at this moment.
func toBlogResponse(db *gorm.DB, blog models.Blog) BlogResponse {
	var likeCount, commentCount int64
	db.Model(&models.Like{}).Where("blog_id = ?", blog.ID).Count(&likeCount)
	db.Model(&models.Comment{}).Where("blog_id = ?", blog.ID).Count(&commentCount)

	tags := make([]string, 0)
	db.Model(&models.BlogHashtag{}).Where("blog_id = ?", blog.ID).Order("tag").Pluck("tag", &tags)

	return BlogResponse{
		ID:           blog.ID,
		Title:        blog.Title,
		Content:      blog.Content,
		ImageURL:     blog.ImageURL,
		Author:       toAuthorSummary(blog.User),
		Hashtags:     tags,
		LikeCount:    likeCount,
		CommentCount: commentCount,
		CreatedAt:    blog.CreatedAt,
		UpdatedAt:    blog.UpdatedAt,
	}
}

func toBlogResponses(db *gorm.DB, blogs []models.Blog) []BlogResponse {
	out := make([]BlogResponse, 0, len(blogs))
	for _, b := range blogs {
		out = append(out, toBlogResponse(db, b))
	}
	return out
}

// toCommentResponse maps a comment; comment.User must be loaded.
func toCommentResponse(c models.Comment) CommentResponse {
	return CommentResponse{
		ID:             c.ID,
		Content:        c.Content,
		AuthorUsername: c.User.Username,
		BlogID:         c.BlogID,
		CreatedAt:      c.CreatedAt,
	}
}

func toCommentResponses(comments []models.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, toCommentResponse(c))
	}
	return out
}
