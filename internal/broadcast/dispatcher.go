// Package broadcast orchestrates one broadcast cycle: admission through
// the execution guard, a single content fetch, and an isolated fan-out
// to every registered chat.
package broadcast

import (
	"context"

	"go.uber.org/zap"

	"morningbot/internal/content"
	"morningbot/internal/domain"
	"morningbot/internal/guard"
)

// Kind selects which daily broadcast is running.
type Kind string

const (
	KindMorning Kind = "morning"
	KindEvening Kind = "evening"
)

// Topic is the image-search term for this broadcast kind.
func (k Kind) Topic() string {
	if k == KindEvening {
		return "good night"
	}
	return "good morning"
}

// Registry lists the chats subscribed to broadcasts.
type Registry interface {
	ListChats(ctx context.Context) ([]domain.Chat, error)
}

// Source produces the content for a cycle. Implementations never fail;
// they substitute fallbacks internally.
type Source interface {
	Bundle(ctx context.Context, topic string) content.Bundle
	Quote(ctx context.Context) content.Quote
}

// Sender is the transport capability the dispatcher fans out through.
type Sender interface {
	SendText(chatID int64, text string) error
	SendPhoto(chatID int64, imageURL, caption string) error
}

// Dispatcher runs broadcast cycles and one-off citation sends. The two
// operations are guarded independently so a pending broadcast never
// blocks an on-demand citation.
type Dispatcher struct {
	registry      Registry
	source        Source
	sender        Sender
	log           *zap.Logger
	broadcastGate *guard.Guard
	citationGate  *guard.Guard
}

func New(registry Registry, source Source, sender Sender, broadcastGate, citationGate *guard.Guard, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		registry:      registry,
		source:        source,
		sender:        sender,
		log:           log,
		broadcastGate: broadcastGate,
		citationGate:  citationGate,
	}
}

// Run executes one broadcast cycle of the given kind and reports
// whether it was admitted. A declined cycle is a silent no-op; the next
// scheduled trigger will try again.
func (d *Dispatcher) Run(ctx context.Context, kind Kind) bool {
	return d.broadcastGate.Do(ctx, func(ctx context.Context) {
		d.cycle(ctx, kind)
	})
}

func (d *Dispatcher) cycle(ctx context.Context, kind Kind) {
	bundle := d.source.Bundle(ctx, kind.Topic())

	chats, err := d.registry.ListChats(ctx)
	if err != nil {
		d.log.Error("list chats failed, cycle aborted", zap.Error(err), zap.String("kind", string(kind)))
		return
	}

	caption := Caption(kind, bundle.Quote)
	sent := 0
	for _, chat := range chats {
		// One unreachable chat must not block delivery to the rest.
		if err := d.sender.SendPhoto(chat.ChatID, bundle.ImageURL, caption); err != nil {
			d.log.Warn("send failed",
				zap.Error(err),
				zap.Int64("chatID", chat.ChatID),
				zap.String("kind", string(kind)),
			)
			continue
		}
		sent++
	}

	d.log.Info("broadcast cycle finished",
		zap.String("kind", string(kind)),
		zap.Int("chats", len(chats)),
		zap.Int("sent", sent),
	)
}

// Citation sends one quote (no image) to the requesting chat only. The
// chat id is always passed explicitly; it is never stored on the
// dispatcher. Returns false when the citation guard declines.
func (d *Dispatcher) Citation(ctx context.Context, chatID int64) bool {
	return d.citationGate.Do(ctx, func(ctx context.Context) {
		quote := d.source.Quote(ctx)
		if err := d.sender.SendText(chatID, CitationText(quote)); err != nil {
			d.log.Warn("citation send failed", zap.Error(err), zap.Int64("chatID", chatID))
		}
	})
}
