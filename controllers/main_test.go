package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pingpost/pingpost-backend/middleware"
	"github.com/pingpost/pingpost-backend/models"
	"github.com/pingpost/pingpost-backend/utils"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("CONFIG_PATH", "testdata/no-such-config.json")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// a single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Blog{},
		&models.BlogHashtag{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
	))
	return db
}

// newTestRouter mirrors the production route table without the logging
// and rate limit middlewares.
func newTestRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()

	auth := NewAuthController(db)
	blog := NewBlogController(db)
	comment := NewCommentController(db)
	like := NewLikeController(db)
	user := NewUserController(db)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", auth.Register)
	authGroup.POST("/login", auth.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), auth.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), auth.Me)

	blogs := api.Group("/blogs")
	blogs.GET("/all", blog.ListBlogs)
	blogs.GET("", blog.ListBlogsPaginated)
	blogs.GET("/search", blog.SearchByHashtag)
	blogs.GET("/hashtags/suggestions", blog.HashtagSuggestions)
	blogs.GET("/user/:username", blog.ListUserBlogs)
	blogs.GET("/:id", blog.GetBlog)
	blogs.GET("/:id/comments", comment.ListComments)
	blogs.GET("/:id/likes/count", like.LikeCount)

	blogsAuth := api.Group("/blogs")
	blogsAuth.Use(middleware.AuthRequired())
	blogsAuth.POST("", blog.PublishBlog)
	blogsAuth.PUT("/:id", blog.UpdateBlog)
	blogsAuth.DELETE("/:id", blog.DeleteBlog)
	blogsAuth.POST("/:id/comments", comment.AddComment)
	blogsAuth.PUT("/:id/comments/:commentId", comment.UpdateComment)
	blogsAuth.DELETE("/:id/comments/:commentId", comment.DeleteComment)
	blogsAuth.POST("/:id/likes", like.LikeBlog)
	blogsAuth.DELETE("/:id/likes", like.UnlikeBlog)
	blogsAuth.GET("/:id/likes/me", like.IsLiked)

	users := api.Group("/users")
	users.GET("/search", user.SearchUsers)
	users.GET("/:username", user.PublicProfile)
	users.GET("/:username/followers/count", user.FollowersCount)
	users.GET("/:username/following/count", user.FollowingCount)
	users.GET("/:username/followers", user.ListFollowers)
	users.GET("/:username/following", user.ListFollowing)
	users.GET("/:username/is-following", middleware.AuthOptional(), user.IsFollowing)

	usersAuth := api.Group("/users")
	usersAuth.Use(middleware.AuthRequired())
	usersAuth.PUT("/me", user.UpdateProfile)
	usersAuth.GET("/me/liked-blogs", user.LikedBlogs)
	usersAuth.GET("/me/comments", user.MyComments)
	usersAuth.POST("/:username/follow", user.Follow)
	usersAuth.DELETE("/:username/follow", user.Unfollow)

	return r
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		FullName:     "Test " + username,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user.ID, user.Username, time.Hour)
	require.NoError(t, err)
	return token
}

func doRequest(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	env := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, out), "data: %s", string(env.Data))
}

func publishBlog(t *testing.T, r *gin.Engine, token, title, content string) BlogResponse {
	t.Helper()
	w := doRequest(r, http.MethodPost, "/api/blogs", token, gin.H{"title": title, "content": content})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Blog BlogResponse `json:"blog"`
	}
	decodeData(t, w, &data)
	return data.Blog
}

func blogPath(id uint, suffix string) string {
	return fmt.Sprintf("/api/blogs/%d%s", id, suffix)
}
