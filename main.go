package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"b24bridge/handler"
)

func main() {
	// Load environment variables first (optional - system env vars win in production)
	_ = godotenv.Load()

	config := handler.LoadConfig()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	logLevel := slog.LevelInfo
	if config.LogLevel == "debug" {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	router := gin.New()
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Webhook-Signature, X-Webhook-Id, X-Webhook-Timestamp, X-Call-List-Id")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	service := handler.NewBitrixService(config)

	router.GET("/health", handler.HealthCheckHandler)
	router.POST("/webhook", handler.CallWebhookHandler(service))
	router.POST("/test/sync", handler.TestSyncHandler(service))

	slog.Info("starting b24bridge webhook server",
		slog.String("port", config.Port),
		slog.Bool("bitrix_configured", config.HasBitrixConfig()),
		slog.Bool("signature_verification", config.HasWebhookSecret()))

	if !config.HasBitrixConfig() {
		slog.Warn("BITRIX_WEBHOOK_URL is not set, CRM sync will fail until it is configured")
	}
	if !config.HasWebhookSecret() {
		slog.Warn("WEBHOOK_SECRET is not set, signature verification is disabled")
	}

	if err := router.Run(config.Host + ":" + config.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
