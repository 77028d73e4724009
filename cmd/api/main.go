// cmd/api/main.go
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"cardwise/internal/auth"
	"cardwise/internal/bot"
	"cardwise/internal/config"
	"cardwise/internal/handler"
	"cardwise/internal/middleware"
	"cardwise/internal/storage/postgres"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.MustLoad()

	pool, err := pgxpool.New(context.Background(), cfg.DBConn)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("Database ping failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Connected to PostgreSQL")

	store := postgres.NewStorage(pool)
	tokenService := auth.NewTokenService(cfg)
	recommendHandler := handler.NewRecommendHandler(store, cfg.MaxQueryLength)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Telegram webhook, enabled when a bot token is configured.
	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if botToken != "" {
		tgBot, err := tgbotapi.NewBotAPI(botToken)
		if err != nil {
			slog.Error("Failed to init Telegram bot", "error", err)
			os.Exit(1)
		}

		webhookURL := os.Getenv("EXTERNAL_URL") + "/telegram"
		if _, err := tgBot.MakeRequest("setWebhook", map[string]string{"url": webhookURL}); err != nil {
			slog.Error("Failed to set webhook", "error", err)
			os.Exit(1)
		}
		slog.Info("Telegram webhook set", "url", webhookURL)

		router.POST("/telegram", func(c *gin.Context) {
			var update tgbotapi.Update
			if err := c.ShouldBindJSON(&update); err != nil {
				slog.Error("Failed to parse Telegram update", "error", err)
				c.Status(http.StatusBadRequest)
				return
			}
			if update.Message == nil {
				c.Status(http.StatusOK)
				return
			}

			chatID := update.Message.Chat.ID
			userID := update.Message.From.ID
			text := strings.TrimSpace(update.Message.Text)
			slog.Info("Telegram message received", "user_id", userID, "text", text)

			reply := bot.HandleMessage(c.Request.Context(), store, userID, text, cfg.MaxQueryLength)

			msg := tgbotapi.NewMessage(chatID, reply)
			msg.ParseMode = "Markdown"
			_, _ = tgBot.Send(msg)

			c.Status(http.StatusOK)
		})
	}

	router.POST("/api/v1/login", func(c *gin.Context) {
		var req struct {
			UserID int64 `json:"user_id" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
			return
		}
		token, err := tokenService.GenerateToken(req.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	})

	authMiddleware := middleware.NewAuthMiddleware(tokenService)
	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware.RequireAuth())
	{
		v1.POST("/recommend", recommendHandler.Recommend)
		v1.POST("/parse", recommendHandler.ParseQuery)
		v1.POST("/spend", recommendHandler.RecordSpend)
		v1.GET("/cards", recommendHandler.ListCards)
		v1.POST("/cards", recommendHandler.SaveCard)
		v1.DELETE("/cards/:id", recommendHandler.DeleteCard)
		v1.GET("/preferences", recommendHandler.GetPreferences)
		v1.PUT("/preferences", recommendHandler.SavePreferences)
	}

	slog.Info("Server starting", "port", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}
}
