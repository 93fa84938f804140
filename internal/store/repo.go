package store

import (
	"context"
	"errors"

	"morningbot/internal/domain"
)

var (
	// ErrAlreadyExists is returned by CreateChat when the chat id is
	// already registered (uniqueness enforced by the database).
	ErrAlreadyExists = errors.New("chat already exists")
	// ErrNotFound is returned by GetChat for an unknown chat id.
	ErrNotFound = errors.New("chat not found")
)

// Repo defines storage operations for the broadcast recipient registry.
type Repo interface {
	CreateChat(ctx context.Context, c *domain.Chat) error
	GetChat(ctx context.Context, chatID int64) (*domain.Chat, error)
	ListChats(ctx context.Context) ([]domain.Chat, error)
	Close() error
}
