package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Pure-Go SQLite; importing it registers the "sqlite" driver.
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"morningbot/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// CreateChat inserts a new chat record. The chat_id primary key closes
// the race between concurrent registrations: the second insert for the
// same id fails with ErrAlreadyExists regardless of interleaving.
func (r *SQLiteRepo) CreateChat(ctx context.Context, c *domain.Chat) error {
	if c == nil {
		return errors.New("nil chat")
	}

	created := c.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chats (chat_id, title, created_at)
		VALUES (?, ?, ?)`,
		c.ChatID, c.Title, created.UTC().Unix(),
	)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

// GetChat returns a chat record by id, or ErrNotFound.
func (r *SQLiteRepo) GetChat(ctx context.Context, chatID int64) (*domain.Chat, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT chat_id, title, created_at
		FROM chats
		WHERE chat_id = ?`,
		chatID,
	)

	var (
		id        int64
		title     string
		createdAt int64
	)
	if err := row.Scan(&id, &title, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &domain.Chat{
		ChatID:    id,
		Title:     title,
		CreatedAt: time.Unix(createdAt, 0).UTC(),
	}, nil
}

// ListChats returns every registered chat. Order is not significant for
// broadcasting; created_at ordering just keeps output stable.
func (r *SQLiteRepo) ListChats(ctx context.Context) ([]domain.Chat, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT chat_id, title, created_at
		FROM chats
		ORDER BY created_at ASC, chat_id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Chat
	for rows.Next() {
		var (
			id        int64
			title     string
			createdAt int64
		)
		if err := rows.Scan(&id, &title, &createdAt); err != nil {
			return nil, err
		}
		res = append(res, domain.Chat{
			ChatID:    id,
			Title:     title,
			CreatedAt: time.Unix(createdAt, 0).UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// isUniqueViolation reports whether err is a SQLite constraint violation
// on a unique column or primary key.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}
