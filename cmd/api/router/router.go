package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"career-chat/cmd/api/handlers"
	"career-chat/cmd/api/middleware"
	"career-chat/cmd/api/services"
	"career-chat/config"
	_ "career-chat/docs"
)

func New(cfg *config.AppConfig, chatSvc *services.ChatService) *gin.Engine {
	r := gin.New()
	// 프론트엔드는 "/chatmessages/" 를 호출하지만 슬래시 없는 경로도 같은 핸들러로 받는다.
	r.RedirectTrailingSlash = false

	r.Use(gin.Recovery())
	r.Use(middleware.RequestTrace())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	// Health check
	r.GET("/", handlers.HealthHandler())
	r.GET("/health", handlers.ReadinessHandler(chatSvc))

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	sessionOpts := handlers.SessionOptions{EchoGeneratedID: cfg.Session.EchoGeneratedID}
	for _, path := range []string{"/chatmessages/", "/chatmessages"} {
		r.POST(path, handlers.CreateChatMessageHandler(chatSvc, sessionOpts))
		r.GET(path, handlers.ListChatMessagesHandler(chatSvc, sessionOpts))
		r.DELETE(path, handlers.DeleteChatMessagesHandler(chatSvc))
	}

	return r
}
