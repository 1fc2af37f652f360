package chat

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classpulse/backend/internal/models"
	"github.com/classpulse/backend/internal/shared"
)

// Repository is the PostgreSQL-backed chat log.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a chat repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Append inserts a message.
func (r *Repository) Append(ctx context.Context, senderName, senderID, text string) (*models.ChatMessage, error) {
	if err := ValidateMessage(text); err != nil {
		return nil, err
	}
	const query = `INSERT INTO chat_messages (sender_name, sender_id, message)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	m := &models.ChatMessage{
		SenderName: senderName,
		SenderID:   senderID,
		Message:    strings.TrimSpace(text),
	}
	err := r.pool.QueryRow(ctx, query, m.SenderName, m.SenderID, m.Message).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, shared.Unavailable("Failed to send message")
	}
	return m, nil
}

// Recent returns the newest messages, oldest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	const query = `SELECT id, sender_name, sender_id, message, created_at
		FROM chat_messages ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var newestFirst []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SenderName, &m.SenderID, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		newestFirst = append(newestFirst, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]models.ChatMessage, len(newestFirst))
	for i, m := range newestFirst {
		out[len(newestFirst)-1-i] = m
	}
	return out, nil
}
