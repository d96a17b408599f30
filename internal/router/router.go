package router

import (
	"github.com/gin-gonic/gin"

	"github.com/tts885/musubisuite/internal/handler"
	"github.com/tts885/musubisuite/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	corsOrigins []string,
	aiH *handler.AIHandler,
	providerH *handler.ProviderHandler,
	engineH *handler.SearchEngineHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Generation endpoints
	ai := v1.Group("/ai")
	ai.POST("/generate", aiH.Generate)
	ai.POST("/generate/stream", aiH.GenerateStream)
	ai.POST("/ocr", aiH.ExtractDocument)

	// Company enrichment
	companies := v1.Group("/companies")
	companies.POST("/fetch", aiH.FetchCompanyInfo)
	companies.POST("/refresh", aiH.RefreshCompanyInfo)

	// Color and icon suggestions
	v1.POST("/code-suggestions", aiH.Suggest)
	v1.POST("/code-suggestions/stream", aiH.SuggestStream)

	// Provider config management
	providers := v1.Group("/providers")
	providers.POST("", providerH.Create)
	providers.GET("", providerH.List)
	providers.GET("/:id", providerH.GetByID)
	providers.PUT("/:id", providerH.Update)
	providers.DELETE("/:id", providerH.Delete)
	providers.POST("/:id/default", providerH.SetDefault)

	// Search engine config management
	engines := v1.Group("/search-engines")
	engines.POST("", engineH.Create)
	engines.GET("", engineH.List)
	engines.GET("/:id", engineH.GetByID)
	engines.PUT("/:id", engineH.Update)
	engines.DELETE("/:id", engineH.Delete)
	engines.POST("/:id/default", engineH.SetDefault)

	return r
}
