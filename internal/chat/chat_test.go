package chat

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMessage(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateMessage("hello"))
	})
	t.Run("empty", func(t *testing.T) {
		assert.EqualError(t, ValidateMessage("   "), "Message cannot be empty")
	})
	t.Run("too long", func(t *testing.T) {
		assert.EqualError(t, ValidateMessage(strings.Repeat("x", 501)), "Message too long (max 500 characters)")
	})
	t.Run("exactly at limit", func(t *testing.T) {
		assert.NoError(t, ValidateMessage(strings.Repeat("x", 500)))
	})
}

func TestMemoryStore_AppendAndRecent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	m, err := s.Append(ctx, "Ana", "conn-1", "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", m.Message)
	assert.Equal(t, "Ana", m.SenderName)
	assert.NotEqual(t, "", m.ID.String())

	_, err = s.Append(ctx, "Ben", "conn-2", "hi")
	require.NoError(t, err)

	history, err := s.Recent(ctx, 50)
	require.NoError(t, err)
	require.Len(t, history, 2)
	// Oldest first.
	assert.Equal(t, "hello", history[0].Message)
	assert.Equal(t, "hi", history[1].Message)
}

func TestMemoryStore_AppendRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Append(ctx, "Ana", "conn-1", "")
	assert.Error(t, err)

	history, err := s.Recent(ctx, 50)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestMemoryStore_RecentHonorsLimit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for i := 0; i < 60; i++ {
		_, err := s.Append(ctx, "Ana", "conn-1", fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
	}

	history, err := s.Recent(ctx, 50)
	require.NoError(t, err)
	require.Len(t, history, 50)
	// The 50 newest, oldest first.
	assert.Equal(t, "msg 10", history[0].Message)
	assert.Equal(t, "msg 59", history[49].Message)
}
