package app

import (
	"iwala99_backend/docs"
	"iwala99_backend/internal/config"
	"iwala99_backend/internal/middleware"
	"iwala99_backend/internal/model"
	"iwala99_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c, repos, cfg)
	a.registerMemberRoutes(router, c, repos, cfg)
	a.registerAdminRoutes(router, c, cfg)
}

// registerPublicRoutes covers everything a visitor can reach. Listing
// endpoints take optional auth so logged-in users get their solve and
// like state folded in.
func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/stats", c.stats.Community)

		public.GET("/challenges", middleware.TryAuthMiddleware(cfg), c.challenge.List)
		public.GET("/challenges/leaderboard", c.challenge.Leaderboard)

		public.GET("/feed/posts", middleware.TryAuthMiddleware(cfg), c.feed.ListPosts)
		public.GET("/feed/posts/:id/comments", c.feed.ListComments)
	}
}

func (a *App) registerMemberRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.PUT("/profile", c.auth.UpdateProfile)
		authGroup.POST("/profile/avatar", c.auth.UploadAvatar)

		authGroup.POST("/challenges/:id/submit", c.challenge.Submit)

		authGroup.GET("/paths/status", c.path.Status)
		authGroup.GET("/recruitment/access", c.path.RecruitmentAccess)
		authGroup.GET("/recruitment/omega", c.path.Omega)

		authGroup.POST("/feed/posts", c.feed.CreatePost)
		authGroup.DELETE("/feed/posts/:id", c.feed.DeletePost)
		authGroup.POST("/feed/posts/:id/comments", c.feed.CreateComment)
		authGroup.DELETE("/feed/comments/:commentId", c.feed.DeleteComment)
		authGroup.POST("/feed/posts/:id/like", c.feed.ToggleLike)

		authGroup.GET("/messages/conversations", c.message.ListConversations)
		authGroup.POST("/messages/conversations", c.message.StartConversation)
		authGroup.GET("/messages/conversations/:id/messages", c.message.Messages)
		authGroup.POST("/messages/conversations/:id/messages", c.message.SendMessage)
		authGroup.POST("/messages/conversations/:id/read", c.message.MarkRead)
		authGroup.GET("/messages/unread-count", c.message.UnreadCount)
		authGroup.GET("/users/search", c.message.SearchUsers)
		authGroup.GET("/ws", c.message.ServeWs)

		// PATCH for a single notification keeps ":id" out of the POST
		// tree, where the static "read-all" segment lives.
		authGroup.GET("/notifications", c.notification.List)
		authGroup.PATCH("/notifications/:id", c.notification.MarkRead)
		authGroup.POST("/notifications/read-all", c.notification.MarkAllRead)
		authGroup.DELETE("/notifications/:id", c.notification.Delete)

		authGroup.POST("/chat/completions", c.chat.Completions)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.RoleAdmin))
	{
		admin.GET("/challenges", c.challenge.AdminList)
		admin.POST("/challenges", c.challenge.AdminCreate)
		admin.PUT("/challenges/:id", c.challenge.AdminUpdate)
		admin.DELETE("/challenges/:id", c.challenge.AdminDelete)
	}
}
