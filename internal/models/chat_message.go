package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxChatMessageLen is the maximum length of a chat message in characters.
const MaxChatMessageLen = 500

// ChatMessage is a single message in the session chat. Append-only,
// ordered by creation time.
type ChatMessage struct {
	ID         uuid.UUID `json:"id"`
	SenderName string    `json:"sender_name"`
	SenderID   string    `json:"sender_id"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}
