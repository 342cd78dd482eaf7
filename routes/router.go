package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pingpost/pingpost-backend/config"
	"github.com/pingpost/pingpost-backend/controllers"
	"github.com/pingpost/pingpost-backend/middleware"
	"github.com/pingpost/pingpost-backend/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Static("/static/uploads", cfg.UploadDir)

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	blogController := controllers.NewBlogController(db)
	commentController := controllers.NewCommentController(db)
	likeController := controllers.NewLikeController(db)
	userController := controllers.NewUserController(db)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/:provider/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/:provider/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	blogs := api.Group("/blogs")
	blogs.GET("/all", blogController.ListBlogs)
	blogs.GET("", blogController.ListBlogsPaginated)
	blogs.GET("/search", blogController.SearchByHashtag)
	blogs.GET("/hashtags/suggestions", blogController.HashtagSuggestions)
	blogs.GET("/user/:username", blogController.ListUserBlogs)
	blogs.GET("/:id", blogController.GetBlog)
	blogs.GET("/:id/comments", commentController.ListComments)
	blogs.GET("/:id/likes/count", likeController.LikeCount)

	blogsAuth := api.Group("/blogs")
	blogsAuth.Use(middleware.AuthRequired())
	blogsAuth.POST("", blogController.PublishBlog)
	blogsAuth.POST("/upload", blogController.UploadImage)
	blogsAuth.PUT("/:id", blogController.UpdateBlog)
	blogsAuth.DELETE("/:id", blogController.DeleteBlog)
	blogsAuth.POST("/:id/comments", commentController.AddComment)
	blogsAuth.PUT("/:id/comments/:commentId", commentController.UpdateComment)
	blogsAuth.DELETE("/:id/comments/:commentId", commentController.DeleteComment)
	blogsAuth.POST("/:id/likes", likeController.LikeBlog)
	blogsAuth.DELETE("/:id/likes", likeController.UnlikeBlog)
	blogsAuth.GET("/:id/likes/me", likeController.IsLiked)

	users := api.Group("/users")
	users.GET("/search", userController.SearchUsers)
	users.GET("/:username", userController.PublicProfile)
	users.GET("/:username/followers/count", userController.FollowersCount)
	users.GET("/:username/following/count", userController.FollowingCount)
	users.GET("/:username/followers", userController.ListFollowers)
	users.GET("/:username/following", userController.ListFollowing)
	users.GET("/:username/is-following", middleware.AuthOptional(), userController.IsFollowing)

	usersAuth := api.Group("/users")
	usersAuth.Use(middleware.AuthRequired())
	usersAuth.PUT("/me", userController.UpdateProfile)
	usersAuth.GET("/me/liked-blogs", userController.LikedBlogs)
	usersAuth.GET("/me/comments", userController.MyComments)
	usersAuth.POST("/:username/follow", userController.Follow)
	usersAuth.DELETE("/:username/follow", userController.Unfollow)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
