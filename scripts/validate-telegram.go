package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/joho/godotenv"

	"github.com/irfndi/vix-alert-go/internal/config"
)

// Checks the Telegram side of the alert configuration end to end: credentials
// present, chat id numeric, token accepted by the Bot API. Run it once after
// deploying so the first scheduled alert does not fail on a typo.
func main() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context, opts ...bot.Option) int {
	fmt.Println("🔧 Validating Telegram alert configuration...")

	// Load .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  Warning: Could not load .env file: %v\n", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Failed to load configuration: %v\n", err)
		return 1
	}

	if err := cfg.ValidateCredentials(); err != nil {
		fmt.Printf("❌ %v\n", err)
		return 1
	}
	fmt.Printf("✅ TELEGRAM_BOT_TOKEN is configured (length: %d)\n", len(cfg.Telegram.BotToken))

	chatID, err := strconv.ParseInt(cfg.Telegram.ChatID, 10, 64)
	if err != nil {
		fmt.Printf("❌ TELEGRAM_CHAT_ID is not numeric: %v\n", err)
		return 1
	}
	fmt.Printf("✅ TELEGRAM_CHAT_ID is configured: %d\n", chatID)

	// Try to create bot instance
	b, err := bot.New(cfg.Telegram.BotToken, append([]bot.Option{bot.WithSkipGetMe()}, opts...)...)
	if err != nil {
		fmt.Printf("❌ Failed to create Telegram bot: %v\n", err)
		return 1
	}

	// Try to get bot info (this makes an actual API call)
	fmt.Println("🔍 Testing bot API connection...")
	botInfo, err := b.GetMe(ctx)
	if err != nil {
		fmt.Printf("❌ Failed to get bot info: %v\n", err)
		return 1
	}

	fmt.Println("✅ Bot API connection successful!")
	fmt.Printf("   Bot Name: %s\n", botInfo.FirstName)
	fmt.Printf("   Bot Username: @%s\n", botInfo.Username)
	fmt.Printf("   Bot ID: %d\n", botInfo.ID)

	fmt.Println("\n🎉 All Telegram alert configuration checks passed!")
	return 0
}
