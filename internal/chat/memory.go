package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/classpulse/backend/internal/models"
)

// MemoryStore is a mutex-guarded in-memory chat log, used when no database
// is configured and by tests.
type MemoryStore struct {
	mu       sync.Mutex
	messages []models.ChatMessage
}

// NewMemoryStore creates an empty in-memory chat log.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append stores a message.
func (s *MemoryStore) Append(_ context.Context, senderName, senderID, text string) (*models.ChatMessage, error) {
	if err := ValidateMessage(text); err != nil {
		return nil, err
	}
	m := models.ChatMessage{
		ID:         uuid.New(),
		SenderName: senderName,
		SenderID:   senderID,
		Message:    strings.TrimSpace(text),
		CreatedAt:  time.Now(),
	}
	s.mu.Lock()
	s.messages = append(s.messages, m)
	s.mu.Unlock()
	return &m, nil
}

// Recent returns the newest messages, oldest first.
func (s *MemoryStore) Recent(_ context.Context, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	start := len(s.messages) - limit
	if start < 0 {
		start = 0
	}
	return append([]models.ChatMessage(nil), s.messages[start:]...), nil
}
