package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pingpost/pingpost-backend/models"
	"github.com/pingpost/pingpost-backend/utils"
)

// UserController manages profiles and the follow graph.
type UserController struct {
	db *gorm.DB
}

// NewUserController creates a new UserController instance.
func NewUserController(db *gorm.DB) *UserController {
	return &UserController{db: db}
}

func (u *UserController) findByUsername(ctx *gin.Context, username string) (models.User, bool) {
	var user models.User
	if err := u.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load user")
		}
		return models.User{}, false
	}
	return user, true
}

// UpdateProfile lets the authenticated user change full name, bio and picture.
func (u *UserController) UpdateProfile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}

	var req struct {
		FullName       string `json:"full_name"`
		Bio            string `json:"bio"`
		ProfilePicture string `json:"profile_picture"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}

	var user models.User
	if err := u.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}

	user.FullName = utils.SanitizePlain(strings.TrimSpace(req.FullName))
	user.Bio = utils.SanitizePlain(strings.TrimSpace(req.Bio))
	user.ProfilePicture = strings.TrimSpace(req.ProfilePicture)

	if err := u.db.Save(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to update profile")
		return
	}

	utils.InvalidateByPrefix("cache:user:public:" + user.Username)

	utils.Success(ctx, toPublicProfile(user))
}

// PublicProfile returns the outward profile projection of a user.
func (u *UserController) PublicProfile(ctx *gin.Context) {
	username := ctx.Param("username")

	cacheKey := "cache:user:public:" + username
	if cached, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(200, "application/json", cached)
		return
	}

	user, ok := u.findByUsername(ctx, username)
	if !ok {
		return
	}

	profile := toPublicProfile(user)
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: profile}, time.Hour)
	utils.Success(ctx, profile)
}

// SearchUsers matches usernames and full names containing the query string.
func (u *UserController) SearchUsers(ctx *gin.Context) {
	q := strings.ToLower(strings.TrimSpace(ctx.Query("q")))
	if q == "" {
		utils.Success(ctx, gin.H{"items": []PublicProfile{}})
		return
	}

	var users []models.User
	pattern := "%" + q + "%"
	if err := u.db.Where("LOWER(username) LIKE ? OR LOWER(full_name) LIKE ?", pattern, pattern).
		Limit(50).Find(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to search users")
		return
	}
	utils.Success(ctx, gin.H{"items": toPublicProfiles(users)})
}

// LikedBlogs returns every blog the caller has liked, each assembled.
func (u *UserController) LikedBlogs(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40121, "unauthorized")
		return
	}

	var blogs []models.Blog
	if err := u.db.Preload("User").
		Joins("JOIN likes ON likes.blog_id = blogs.id").
		Where("likes.user_id = ?", userID).Find(&blogs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to list liked blogs")
		return
	}
	utils.Success(ctx, gin.H{"items": toBlogResponses(u.db, blogs)})
}

// MyComments returns every comment the caller has written.
func (u *UserController) MyComments(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40122, "unauthorized")
		return
	}

	var comments []models.Comment
	if err := u.db.Preload("User").Where("user_id = ?", userID).Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to list comments")
		return
	}
	utils.Success(ctx, gin.H{"items": toCommentResponses(comments)})
}

// Follow adds the caller as a follower of the target user. Following
// yourself is a silent no-op; following twice has no additional effect.
func (u *UserController) Follow(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40123, "unauthorized")
		return
	}
	callerName, _ := getUsername(ctx)

	targetName := ctx.Param("username")
	if targetName == callerName {
		utils.Success(ctx, gin.H{"message": "ok"})
		return
	}

	target, ok := u.findByUsername(ctx, targetName)
	if !ok {
		return
	}

	edge := models.Follow{FollowerID: userID, FolloweeID: target.ID}
	if err := u.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50065, "failed to follow user")
		return
	}

	utils.Success(ctx, gin.H{"message": "following"})
}

// Unfollow removes the caller from the target's followers. Self-target and
// unfollow-when-absent are both silent no-ops.
func (u *UserController) Unfollow(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40124, "unauthorized")
		return
	}
	callerName, _ := getUsername(ctx)

	targetName := ctx.Param("username")
	if targetName == callerName {
		utils.Success(ctx, gin.H{"message": "ok"})
		return
	}

	target, ok := u.findByUsername(ctx, targetName)
	if !ok {
		return
	}

	if err := u.db.Where("follower_id = ? AND followee_id = ?", userID, target.ID).
		Delete(&models.Follow{}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50066, "failed to unfollow user")
		return
	}

	utils.Success(ctx, gin.H{"message": "unfollowed"})
}

// FollowersCount returns how many users follow the given user.
func (u *UserController) FollowersCount(ctx *gin.Context) {
	user, ok := u.findByUsername(ctx, ctx.Param("username"))
	if !ok {
		return
	}

	var count int64
	if err := u.db.Model(&models.Follow{}).Where("followee_id = ?", user.ID).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50067, "failed to count followers")
		return
	}
	utils.Success(ctx, gin.H{"count": count})
}

// FollowingCount returns how many users the given user follows.
func (u *UserController) FollowingCount(ctx *gin.Context) {
	user, ok := u.findByUsername(ctx, ctx.Param("username"))
	if !ok {
		return
	}

	var count int64
	if err := u.db.Model(&models.Follow{}).Where("follower_id = ?", user.ID).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50068, "failed to count following")
		return
	}
	utils.Success(ctx, gin.H{"count": count})
}

// IsFollowing reports whether the caller follows the target user.
// Anonymous callers and self-targets read as false without resolving
// the target, so the endpoint works without authentication.
func (u *UserController) IsFollowing(ctx *gin.Context) {
	targetName := ctx.Param("username")

	userID, authed := getUserID(ctx)
	callerName, _ := getUsername(ctx)
	if !authed || callerName == targetName {
		utils.Success(ctx, gin.H{"following": false})
		return
	}

	target, ok := u.findByUsername(ctx, targetName)
	if !ok {
		return
	}

	var count int64
	if err := u.db.Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", userID, target.ID).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50069, "failed to check follow state")
		return
	}
	utils.Success(ctx, gin.H{"following": count > 0})
}

// ListFollowers returns the public profiles of the users following the target.
func (u *UserController) ListFollowers(ctx *gin.Context) {
	user, ok := u.findByUsername(ctx, ctx.Param("username"))
	if !ok {
		return
	}

	var users []models.User
	if err := u.db.
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followee_id = ?", user.ID).Find(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to list followers")
		return
	}
	utils.Success(ctx, gin.H{"items": toPublicProfiles(users)})
}

// ListFollowing returns the public profiles of the users the target follows.
func (u *UserController) ListFollowing(ctx *gin.Context) {
	user, ok := u.findByUsername(ctx, ctx.Param("username"))
	if !ok {
		return
	}

	var users []models.User
	if err := u.db.
		Joins("JOIN follows ON follows.followee_id = users.id").
		Where("follows.follower_id = ?", user.ID).Find(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to list following")
		return
	}
	utils.Success(ctx, gin.H{"items": toPublicProfiles(users)})
}
