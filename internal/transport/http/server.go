package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"eduvantage/internal/agent"
	"eduvantage/internal/ai"
	appsvc "eduvantage/internal/app"
	"eduvantage/internal/bootstrap"
	"eduvantage/internal/cache"
	rabbitmqClient "eduvantage/internal/platform/rabbitmq"
	"eduvantage/internal/repository"
	"eduvantage/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	router := newEngine(app.Config.App.GinMode, app.Config.App.CORSOrigins)

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	retrievalService := appsvc.NewRetrievalService(
		app.Supabase,
		ai.NewTextEmbedder(app.LLMClient, ai.EmbeddingConfig{
			BaseURL: app.Config.LLM.BaseURL,
			APIKey:  app.Config.LLM.APIKey,
			Model:   app.Config.LLM.EmbeddingModel,
		}),
		app.Tavily,
		app.Config.LLM.EmbeddingDim,
	)

	universityAgent := agent.New(app.LLMClient, ai.ChatConfig{
		BaseURL: app.Config.LLM.BaseURL,
		APIKey:  app.Config.LLM.APIKey,
		Model:   app.Config.LLM.Model,
	}, retrievalService)

	publisher := rabbitmqClient.NewMessagePublisher(app.MQConn, app.Config.RabbitMQ.MessagePersistQueue)
	historyCache := cache.NewHistoryCache(app.Redis, time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second)
	messageRepo := repository.NewMessageRepository(app.MySQL)
	chatService := appsvc.NewChatService(universityAgent, publisher, historyCache, messageRepo, app.Config.LLM.Model)

	assistantHandler := handler.NewAssistantHandler(chatService, retrievalService)
	router.GET("/ask", assistantHandler.Ask)
	router.POST("/chat", assistantHandler.Chat)
	router.GET("/universities", assistantHandler.ListUniversities)

	return router
}

func NewMailerRouter(app *bootstrap.MailerApp) *gin.Engine {
	router := newEngine(app.Config.App.GinMode, app.Config.App.CORSOrigins)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"app":        app.Config.App.Name + "-mailer",
			"env":        app.Config.App.Env,
			"uptime_sec": int(time.Since(app.StartedAt).Seconds()),
		})
	})

	reminderRepo := repository.NewReminderRepository(app.MySQL)
	configured := app.Config.Mail.APIKey != "" && app.Config.Mail.SecretKey != ""
	reminderService := appsvc.NewReminderService(
		app.Mailjet,
		reminderRepo,
		app.Config.Mail.FromEmail,
		app.Config.Mail.FromName,
		configured,
	)

	reminderHandler := handler.NewReminderHandler(reminderService)
	router.POST("/send-reminder", reminderHandler.SendReminder)

	return router
}

func newEngine(ginMode string, corsOrigins []string) *gin.Engine {
	gin.SetMode(ginMode)
	router := gin.New()
	router.Use(gin.Logger())
	// Escaping panics become the same {"error": ...} envelope as handled
	// failures; no stack traces leave the process.
	router.Use(gin.CustomRecovery(func(c *gin.Context, _ interface{}) {
		c.AbortWithStatusJSON(500, gin.H{"error": "internal server error"})
	}))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}))
	return router
}
