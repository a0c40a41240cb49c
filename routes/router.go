package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vidhyaloan/vidhyaloan/ai"
	"github.com/vidhyaloan/vidhyaloan/composer"
	"github.com/vidhyaloan/vidhyaloan/config"
	"github.com/vidhyaloan/vidhyaloan/controllers"
	"github.com/vidhyaloan/vidhyaloan/middleware"
	"github.com/vidhyaloan/vidhyaloan/models"
	"github.com/vidhyaloan/vidhyaloan/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, logger *zap.Logger) *gin.Engine {
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

	// Record PV after each request
	r.Use(middleware.PageViewRecorder(db))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	gateCfg := composer.Config{
		DuplicateThreshold: cfg.DuplicateThreshold,
		SearchLimit:        cfg.SimilarSearchLimit,
	}
	aiClient := ai.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel)

	authController := controllers.NewAuthController(db)
	forumController := controllers.NewForumController(db, gateCfg)
	communityController := controllers.NewCommunityController(db, logger)
	blogController := controllers.NewBlogController(db)
	aiController := controllers.NewAIController(aiClient, logger)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/google/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/google/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	community := api.Group("/community")
	{
		forum := community.Group("/forum")
		forum.GET("", forumController.ListForumPosts)
		forum.GET("/search", forumController.SearchSimilar)
		forum.POST("/check-duplicate", forumController.CheckDuplicate)
		forum.GET("/:postId", middleware.AuthOptional(), forumController.GetForumPost)

		protected := forum.Group("")
		protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
		protected.POST("", forumController.CreateForumPost)
		protected.POST("/:postId/comment", forumController.CreateForumComment)
		protected.POST("/:postId/like", forumController.LikeForumPost)
		protected.POST("/comments/:commentId/like", forumController.LikeForumComment)
		protected.DELETE("/comments/:commentId", forumController.DeleteForumComment)

		community.GET("/hubs", forumController.GetHubs)
		community.GET("/stats", communityController.GetCommunityStats)

		community.GET("/mentors", communityController.ListMentors)
		community.GET("/mentors/featured", communityController.FeaturedMentors)
		community.GET("/mentors/stats", communityController.GetMentorStats)
		community.GET("/mentors/:mentorId", communityController.GetMentor)
		community.POST("/mentors/apply", communityController.ApplyMentor)
		community.POST("/mentors/:mentorId/book", communityController.BookMentor)

		community.GET("/events", communityController.ListEvents)
		community.GET("/events/:eventId", communityController.GetEvent)
		community.POST("/events/:eventId/register", communityController.RegisterForEvent)

		community.GET("/stories", communityController.ListStories)
		community.GET("/stories/:storyId", communityController.GetStory)
		community.POST("/stories", communityController.SubmitStory)

		community.GET("/resources", communityController.ListResources)
		community.GET("/resources/:resourceId", communityController.GetResource)
		community.POST("/resources/:resourceId/download", communityController.DownloadResource)

		admin := community.Group("")
		admin.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleAdmin))
		admin.POST("/mentors", communityController.CreateMentor)
		admin.PUT("/mentors/:mentorId", communityController.UpdateMentor)
		admin.DELETE("/mentors/:mentorId", communityController.DeleteMentor)
		admin.PATCH("/mentors/:mentorId/review", communityController.ReviewMentor)
		admin.GET("/bookings", communityController.ListBookings)
		admin.POST("/events", communityController.CreateEvent)
		admin.PUT("/events/:eventId", communityController.UpdateEvent)
		admin.DELETE("/events/:eventId", communityController.DeleteEvent)
		admin.GET("/events/:eventId/registrations", communityController.ListRegistrations)
		admin.PATCH("/stories/:storyId/review", communityController.ReviewStory)
	}

	blogs := api.Group("/blogs")
	blogs.GET("", middleware.AuthOptional(), blogController.ListBlogs)
	blogs.GET("/:slug", middleware.AuthOptional(), blogController.GetBlogBySlug)
	blogAdmin := blogs.Group("")
	blogAdmin.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleAdmin))
	blogAdmin.POST("", blogController.CreateBlog)
	blogAdmin.PUT("/:blogId", blogController.UpdateBlog)
	blogAdmin.DELETE("/:blogId", blogController.DeleteBlog)

	aiGroup := api.Group("/ai")
	aiGroup.Use(middleware.RateLimitMiddleware())
	aiGroup.POST("/sop-analysis", aiController.AnalyzeSOP)
	aiGroup.POST("/humanize-sop", aiController.HumanizeSOP)
	aiGroup.POST("/search-universities", aiController.SearchUniversities)
	aiGroup.POST("/search-courses", aiController.SearchCourses)
	aiGroup.POST("/check-relevance", aiController.CheckRelevance)

	api.GET("/stats", statsController.GetStats)
	api.GET("/community/forum/:postId/stats", statsController.GetPostStats)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
