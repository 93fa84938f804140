package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"morningbot/internal/store"
)

// api is the slice of the Telegram client the router needs. *tgbotapi.BotAPI
// satisfies it; tests substitute a fake.
type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Citer triggers a one-off citation send for a single chat.
type Citer interface {
	Citation(ctx context.Context, chatID int64) bool
}

// Router wires Telegram updates to handlers. It is stateless across
// updates: every event carries everything its handler needs.
type Router struct {
	bot   api
	log   *zap.Logger
	repo  store.Repo
	citer Citer
}

// NewRouter creates a new Telegram router.
func NewRouter(bot api, log *zap.Logger, repo store.Repo, citer Citer) *Router {
	return &Router{
		bot:   bot,
		log:   log,
		repo:  repo,
		citer: citer,
	}
}

// HandleUpdate routes a single update to the appropriate handler.
// Anything that is not a recognized text command is ignored.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message == nil || upd.Message.Text == "" {
		return
	}

	msg := upd.Message
	text := strings.TrimSpace(msg.Text)

	switch {
	case strings.HasPrefix(text, "/start"):
		r.handleStart(ctx, msg)
	case strings.HasPrefix(text, "/citation"):
		r.handleCitation(ctx, msg.Chat.ID)
	default:
		// not a command we know; no side effect
	}
}

// sendPlain sends text without a parse mode (no escaping concerns).
func (r *Router) sendPlain(chatID int64, text string) error {
	_, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
