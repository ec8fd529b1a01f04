package api

import (
	"log/slog"

	"tokenhub/internal/auth"
	"tokenhub/internal/config"
	"tokenhub/internal/db"

	"github.com/gin-gonic/gin"
)

// SetupRoutes mounts the management API (basic auth) and the token-scoped
// data-plane endpoints (bearer token auth).
func SetupRoutes(router *gin.Engine, dbService db.Service, cfg *config.Config, logger *slog.Logger) {
	handler := NewHandler(dbService, cfg, logger)

	apiGroup := router.Group("/api")
	apiGroup.Use(auth.AdminAuthMiddleware(cfg.Admin.Password))
	{
		tokenGroup := apiGroup.Group("/token")
		{
			tokenGroup.GET("/", handler.ListTokensHandler)
			tokenGroup.GET("/search", handler.SearchTokensHandler)
			tokenGroup.GET("/:id", handler.GetTokenHandler)
			tokenGroup.POST("/", handler.CreateTokenHandler)
			tokenGroup.PUT("/", handler.UpdateTokenHandler)
			tokenGroup.DELETE("/:id", handler.DeleteTokenHandler)
			tokenGroup.POST("/batch", handler.BatchDeleteTokensHandler)
		}

		userGroup := apiGroup.Group("/user")
		{
			userGroup.GET("/models", handler.UserModelsHandler)
			userGroup.GET("/self/groups", handler.UserGroupsHandler)
		}
	}

	v1Group := router.Group("/v1")
	v1Group.Use(auth.TokenAuthMiddleware(dbService))
	{
		v1Group.GET("/status", handler.TokenStatusHandler)
		v1Group.GET("/usage", handler.TokenUsageHandler)
	}
}
