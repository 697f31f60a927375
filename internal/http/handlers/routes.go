package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/yassinema02/vestiaire-sub000/internal/app"
	"github.com/yassinema02/vestiaire-sub000/internal/http/middleware"
)

// SetupRoutes sets up all API routes
func SetupRoutes(api *echo.Group, services *app.Services) {
	// Auth routes (no authentication required)
	authHandler := NewAuthHandler(services.DB, services.AuthService)
	auth := api.Group("/auth")
	auth.POST("/token", authHandler.IssueDevToken)

	// WebSocket endpoint (handles authentication manually via query parameter)
	wsHandler := NewWebSocketHandler(services.AuthService, services.PipelineManager)
	api.GET("/ws/extraction", wsHandler.HandleExtractionProgress)

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.JWTAuth(services.AuthService))

	protected.GET("/auth/me", authHandler.Me)

	// Extraction pipeline
	extractionHandler := NewExtractionHandler(services.DB, services.PipelineManager)
	extractions := protected.Group("/extractions")
	extractions.POST("", extractionHandler.Start)
	extractions.GET("/current", extractionHandler.Current)
	extractions.POST("/retry", extractionHandler.Retry)
	extractions.POST("/skip", extractionHandler.SkipFailed)
	extractions.POST("/background", extractionHandler.Background)
	extractions.POST("/foreground", extractionHandler.Foreground)
	extractions.GET("/review", extractionHandler.ListReview)
	extractions.PATCH("/review/:index", extractionHandler.EditReviewItem)
	extractions.POST("/review/:index/toggle", extractionHandler.ToggleReviewItem)
	extractions.POST("/review/select-all", extractionHandler.SelectAllReviewItems)
	extractions.POST("/import", extractionHandler.Import)
	extractions.POST("/reset", extractionHandler.Reset)

	// Extraction job history
	jobs := protected.Group("/extraction-jobs")
	jobs.GET("", extractionHandler.ListJobs)
	jobs.GET("/:id", extractionHandler.GetJob)

	// Wardrobe inventory
	wardrobeHandler := NewWardrobeHandler(services.DB, services.ListingGenerator)
	items := protected.Group("/wardrobe/items")
	items.GET("", wardrobeHandler.List)
	items.POST("", wardrobeHandler.Create)
	items.GET("/:id", wardrobeHandler.GetByID)
	items.PUT("/:id", wardrobeHandler.Update)
	items.DELETE("/:id", wardrobeHandler.Delete)
	items.POST("/:id/wear", wardrobeHandler.RegisterWear)
	items.POST("/:id/listing", wardrobeHandler.GenerateListing)

	// Background removal usage
	usageHandler := NewUsageHandler(services.UsageService)
	usage := protected.Group("/usage")
	usage.GET("/background-removals", usageHandler.CurrentMonth)
	usage.GET("/background-removals/history", usageHandler.History)

	// Notifications
	notificationHandler := NewNotificationHandler(services.DB)
	notifications := protected.Group("/notifications")
	notifications.GET("", notificationHandler.List)
	notifications.POST("/:id/read", notificationHandler.MarkRead)
	notifications.POST("/read-all", notificationHandler.MarkAllRead)

	// Health check
	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
}
