package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"publishing-backend/internal/shared/middleware"
	"publishing-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.ClientIPMiddleware(),
		middleware.Logger(),
		middleware.CORS(c.Config.CORS),
	)

	v1 := router.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c)
		setupUserRoutes(v1, c)
		setupOrganizationRoutes(v1, c)
		setupPublicationRoutes(v1, c)
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth")
	auth.Use(c.AuthLimiter.Limit())
	{
		auth.POST("/register", c.AccountHandler.Register)
		auth.POST("/login", c.AccountHandler.Login)
		auth.POST("/refresh", c.AccountHandler.RefreshToken)
		auth.POST("/logout", middleware.AuthMiddleware(c.JWTManager, c.AccountService), c.AccountHandler.Logout)
	}
}

// ========================================
// USER ROUTES
// ========================================
func setupUserRoutes(v1 *gin.RouterGroup, c *container.Container) {
	users := v1.Group("/users")
	users.Use(middleware.AuthMiddleware(c.JWTManager, c.AccountService))
	{
		users.GET("/me", c.AccountHandler.GetProfile)
		users.PUT("/me", c.AccountHandler.UpdateProfile)
		users.PUT("/change-password", c.AccountHandler.ChangePassword)
	}
}

// ========================================
// ORGANIZATION ROUTES
// ========================================
func setupOrganizationRoutes(v1 *gin.RouterGroup, c *container.Container) {
	required := middleware.AuthMiddleware(c.JWTManager, c.AccountService)
	optional := middleware.OptionalAuthMiddleware(c.JWTManager, c.AccountService)

	orgs := v1.Group("/organizations")
	{
		orgs.GET("", required, c.OrganizationHandler.List)
		orgs.POST("", required, c.OrganizationHandler.Create)
		orgs.GET("/:id", required, c.OrganizationHandler.Get)
		orgs.PUT("/:id", required, c.OrganizationHandler.Update)
		orgs.DELETE("/:id", required, c.OrganizationHandler.Delete)
		orgs.POST("/:id/toggle-active", required, c.OrganizationHandler.ToggleActive)
		orgs.GET("/:id/stats", required, c.OrganizationHandler.Stats)

		// Publications của organization, lọc theo visibility của viewer
		orgs.GET("/:id/publications", optional, c.PublicationHandler.ListByOrganization)
	}
}

// ========================================
// PUBLICATION ROUTES
// ========================================
func setupPublicationRoutes(v1 *gin.RouterGroup, c *container.Container) {
	required := middleware.AuthMiddleware(c.JWTManager, c.AccountService)
	optional := middleware.OptionalAuthMiddleware(c.JWTManager, c.AccountService)

	pubs := v1.Group("/publications")
	{
		// Public (anonymous chỉ thấy PUBLISHED)
		pubs.GET("", optional, c.PublicationHandler.List)
		pubs.GET("/search", optional, c.PublicationHandler.Search)
		pubs.GET("/slug/:slug", optional, c.PublicationHandler.GetBySlug)
		pubs.GET("/:id", optional, c.PublicationHandler.Get)

		// Authenticated
		pubs.GET("/my", required, c.PublicationHandler.ListMine)
		pubs.POST("", required, c.PublicationHandler.Create)
		pubs.PUT("/:id", required, c.PublicationHandler.Update)
		pubs.DELETE("/:id", required, c.PublicationHandler.Delete)
		pubs.POST("/:id/publish", required, c.PublicationHandler.Publish)
		pubs.POST("/:id/archive", required, c.PublicationHandler.Archive)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
			"services":  gin.H{},
		}

		// Check database
		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
			health["status"] = "degraded"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = fmt.Sprintf("error: %v", err)
				health["status"] = "degraded"
			}
			health["database_pool"] = appCtx.DB.Stats()
		}

		// Check redis
		redisStatus := "ok"
		if appCtx.Redis == nil {
			redisStatus = "disconnected"
		} else if err := appCtx.Redis.HealthCheck(c.Request.Context()); err != nil {
			redisStatus = fmt.Sprintf("error: %v", err)
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
