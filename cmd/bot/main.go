// cmd/bot/main.go
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"

	"cardwise/internal/bot"
	"cardwise/internal/config"
	"cardwise/internal/storage/postgres"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if botToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN not set")
	}

	cfg := config.MustLoad()
	pool, err := pgxpool.New(context.Background(), cfg.DBConn)
	if err != nil {
		log.Fatal("Failed to connect to DB:", err)
	}
	defer pool.Close()

	store := postgres.NewStorage(pool)

	tgBot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		log.Fatal("Failed to init Telegram bot:", err)
	}
	slog.Info("Bot authorized", "account", tgBot.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	for update := range tgBot.GetUpdatesChan(updateConfig) {
		if update.Message == nil {
			continue
		}

		chatID := update.Message.Chat.ID
		userID := update.Message.From.ID
		text := strings.TrimSpace(update.Message.Text)
		slog.Info("Message received", "user_id", userID, "text", text)

		reply := bot.HandleMessage(context.Background(), store, userID, text, cfg.MaxQueryLength)

		msg := tgbotapi.NewMessage(chatID, reply)
		msg.ParseMode = "Markdown"
		if _, err := tgBot.Send(msg); err != nil {
			slog.Error("Failed to send reply", "error", err, "chat_id", chatID)
		}
	}
}
