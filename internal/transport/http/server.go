package http

import (
	"github.com/gin-gonic/gin"

	appsvc "legalai-assistant/internal/app"
	"legalai-assistant/internal/bootstrap"
	"legalai-assistant/internal/transport/http/handler"
	"legalai-assistant/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	ingestService := appsvc.NewIngestService(app.Documents, app.Sessions, app.Extractor)
	chatService := appsvc.NewChatService(
		app.Sessions,
		app.Documents,
		app.History,
		app.LLMClient,
		app.GenerateConfig(),
		app.GenerateOptions(),
	)

	healthHandler := handler.NewHealthHandler(app)
	sessionHandler := handler.NewSessionHandler(app.Sessions, app.Documents)
	documentHandler := handler.NewDocumentHandler(ingestService, app.Sessions, app.Documents)
	chatHandler := handler.NewChatHandler(chatService)

	router.GET("/healthz", healthHandler.Check)

	v1 := router.Group("/api/v1")

	sessionGroup := v1.Group("/sessions")
	sessionGroup.POST("", sessionHandler.Create)
	sessionGroup.GET("/:id", sessionHandler.Get)
	sessionGroup.DELETE("/:id", sessionHandler.Delete)

	withSession := v1.Group("")
	withSession.Use(middleware.EnsureSession(app.Sessions))
	withSession.POST("/documents", documentHandler.Upload)
	withSession.GET("/documents", documentHandler.List)
	withSession.DELETE("/documents/:id", documentHandler.Delete)
	withSession.POST("/chat", chatHandler.Stream)

	return router
}
