package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/kemalcalak/Resume-Builder/internal/api/middleware"
	"github.com/kemalcalak/Resume-Builder/internal/document"
)

// Dependencies carries what the route handlers are built from. Writer,
// Scanner and Redis may be nil.
type Dependencies struct {
	Store          *document.Store
	Verifier       middleware.TokenVerifier
	Queue          TaskEnqueuer
	Signer         LinkSigner
	Writer         SuggestionWriter
	Scanner        VirusScanner
	Redis          *redis.Client
	Logger         *slog.Logger
	AllowedOrigins []string
	AIRateLimit    int
	ExportMaxRetry int
}

// RegisterRoutes mounts the /v1 API.
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	documentHandler := NewDocumentHandler(deps.Store, deps.Scanner)
	exportHandler := NewExportHandler(deps.Store, deps.Queue, deps.Signer, deps.ExportMaxRetry)

	var counter redisRateCounter
	if deps.Redis != nil {
		counter = deps.Redis
	}
	aiHandler := NewAIHandler(deps.Writer, counter, deps.AIRateLimit)
	authMiddleware := middleware.AuthMiddleware(deps.Verifier)

	v1 := router.Group("/v1")
	{
		if deps.Redis != nil {
			wsHandler := NewWsHandler(deps.Redis, deps.Verifier, deps.Logger, deps.AllowedOrigins)
			v1.GET("/ws", wsHandler.HandleConnection)
		}

		v1.GET("/documents/public/:documentId", documentHandler.GetPublicDocument)

		documents := v1.Group("/documents")
		documents.Use(authMiddleware)
		{
			documents.POST("", documentHandler.CreateDocument)
			documents.GET("", documentHandler.ListDocuments)
			documents.GET("/trash", documentHandler.ListTrash)
			documents.PATCH("/restore", documentHandler.RestoreDocument)
			documents.GET("/:documentId", documentHandler.GetDocument)
			documents.PATCH("/:documentId", documentHandler.SaveDocument)
			documents.POST("/:documentId/export", exportHandler.CreateExport)
			documents.GET("/:documentId/export/link", exportHandler.GetExportLink)
		}

		aiGroup := v1.Group("/ai")
		aiGroup.Use(authMiddleware)
		{
			aiGroup.POST("/summary", aiHandler.GenerateSummary)
			aiGroup.POST("/bullet-points", aiHandler.GenerateBulletPoints)
		}
	}
}
