package telegram

import (
	"context"
	"errors"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"morningbot/internal/domain"
	"morningbot/internal/store"
)

// handleStart registers the chat and sends a one-time welcome. Repeated
// /start from the same chat is a no-op: no duplicate record, no
// duplicate welcome. The database primary key settles the race between
// concurrent registrations.
func (r *Router) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if _, err := r.repo.GetChat(ctx, chatID); err == nil {
		return // already registered
	} else if !errors.Is(err, store.ErrNotFound) {
		r.log.Error("chat lookup failed", zap.Error(err), zap.Int64("chatID", chatID))
		return
	}

	c := &domain.Chat{
		ChatID:    chatID,
		Title:     domain.DisplayName(msg.Chat.Title, msg.Chat.UserName, msg.Chat.FirstName),
		CreatedAt: time.Now().UTC(),
	}
	if err := r.repo.CreateChat(ctx, c); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return // lost the race to a concurrent /start; still registered
		}
		r.log.Error("chat registration failed", zap.Error(err), zap.Int64("chatID", chatID))
		return
	}

	r.log.Info("chat registered", zap.Int64("chatID", chatID), zap.String("title", c.Title))
	if err := r.sendPlain(chatID, welcomeText); err != nil {
		r.log.Warn("welcome send failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

// handleCitation asks the dispatcher for a one-off quote send to this
// chat only. A decline (another citation in flight or within the
// debounce window) is silent.
func (r *Router) handleCitation(ctx context.Context, chatID int64) {
	if !r.citer.Citation(ctx, chatID) {
		r.log.Debug("citation declined", zap.Int64("chatID", chatID))
	}
}
