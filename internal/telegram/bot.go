package telegram

import (
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"impostor-bot/internal/session"
)

type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
}

// NewBot wires the Telegram API to the orchestrator and registers the
// notifier for timer-driven announcements.
func NewBot(token string, orch *session.Orchestrator) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	handler := NewHandler(api, orch)
	orch.SetNotifier(handler.NotifyPhase)
	return &Bot{api: api, handler: handler}, nil
}

// Start runs the long-poll loop until the updates channel closes.
func (b *Bot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	log.Printf("bot started username=%s", b.api.Self.UserName)

	for update := range updates {
		switch {
		case update.Message != nil:
			b.dispatchMessage(update.Message)
		case update.CallbackQuery != nil:
			b.dispatchCallback(update.CallbackQuery)
		}
	}
}

func (b *Bot) dispatchMessage(msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	switch msg.Command() {
	case "start", "help":
		b.handler.HandleHelp(msg)
	case "newgame":
		b.handler.HandleNewGame(msg)
	case "join":
		b.handler.HandleJoin(msg)
	case "leave":
		b.handler.HandleLeave(msg)
	case "begin":
		b.handler.HandleBegin(msg)
	case "task":
		b.handler.HandleTask(msg)
	case "status":
		b.handler.HandleStatus(msg)
	case "end":
		b.handler.HandleEnd(msg)
	case "profile":
		b.handler.HandleProfile(msg)
	case "leaderboard":
		b.handler.HandleLeaderboard(msg)
	case "":
		b.handler.HandleDiscussion(msg)
	}
}

func (b *Bot) dispatchCallback(callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil || callback.From == nil {
		return
	}
	if strings.HasPrefix(callback.Data, "vote_") {
		b.handler.HandleVoteCallback(callback)
		return
	}
	resp := tgbotapi.NewCallback(callback.ID, "")
	if _, err := b.api.Request(resp); err != nil {
		log.Printf("Failed to answer callback: %v", err)
	}
}
