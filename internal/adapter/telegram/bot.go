package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Commander answers one free-text lending command for sender.
type Commander interface {
	Handle(ctx context.Context, message, sender string) string
}

// Sender is the part of *tgbotapi.BotAPI the bot writes through.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api    Sender
	router Commander
}

func NewBot(api Sender, router Commander) *Bot { return &Bot{api: api, router: router} }

// Start long-polls Telegram until ctx is cancelled.
func Start(ctx context.Context, api *tgbotapi.BotAPI, router Commander) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)
	go func() {
		<-ctx.Done()
		api.StopReceivingUpdates()
	}()
	NewBot(api, router).Run(ctx, updates)
}

// Run answers every text message on updates until the channel closes or
// ctx is cancelled.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handle(ctx, update)
		}
	}
}

func (b *Bot) handle(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}
	reply := b.router.Handle(ctx, commandText(msg), senderID(msg))
	if _, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, reply)); err != nil {
		log.Printf("telegram: send to chat %d: %v", msg.Chat.ID, err)
	}
}

// commandText turns slash commands into router verbs, e.g.
// "/create_loan 150 100" becomes "create loan 150 100". Plain text passes
// through unchanged.
func commandText(msg *tgbotapi.Message) string {
	if !msg.IsCommand() {
		return msg.Text
	}
	switch cmd := msg.Command(); cmd {
	case "start", "help":
		return "help"
	default:
		text := strings.ReplaceAll(cmd, "_", " ")
		if args := strings.TrimSpace(msg.CommandArguments()); args != "" {
			text += " " + args
		}
		return text
	}
}

// senderID keys ledger records by Telegram user, falling back to the chat
// for anonymous channel posts.
func senderID(msg *tgbotapi.Message) string {
	if msg.From != nil {
		return fmt.Sprintf("tg:%d", msg.From.ID)
	}
	return fmt.Sprintf("tg:%d", msg.Chat.ID)
}
