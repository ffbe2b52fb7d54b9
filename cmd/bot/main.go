package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lending-ledger/internal/adapter/command"
	"lending-ledger/internal/adapter/telegram"
	"lending-ledger/internal/bootstrap"
	"lending-ledger/internal/config"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is required")
	}

	store, err := bootstrap.OpenStore(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}
	api.Debug = cfg.TelegramDebug
	log.Printf("authorized as @%s", api.Self.UserName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telegram.Start(ctx, api, command.NewRouter(store.Ledger()))
	log.Println("bot stopped")
}
