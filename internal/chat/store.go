// Package chat holds the durable append-only chat log, its Redis recent
// cache, and the read-only HTTP projection.
package chat

import (
	"context"
	"strings"

	"github.com/classpulse/backend/internal/models"
	"github.com/classpulse/backend/internal/shared"
)

// DefaultHistoryLimit is how many recent messages a joining connection gets.
const DefaultHistoryLimit = 50

// Store is the append-only chat message log.
type Store interface {
	// Append persists a message. Text is trimmed before storage.
	Append(ctx context.Context, senderName, senderID, text string) (*models.ChatMessage, error)

	// Recent returns up to limit of the newest messages, oldest first.
	Recent(ctx context.Context, limit int) ([]models.ChatMessage, error)
}

// ValidateMessage checks chat text and returns a validation error, or nil.
func ValidateMessage(text string) error {
	if strings.TrimSpace(text) == "" {
		return shared.Invalid("Message cannot be empty")
	}
	if len(text) > models.MaxChatMessageLen {
		return shared.Invalid("Message too long (max 500 characters)")
	}
	return nil
}
