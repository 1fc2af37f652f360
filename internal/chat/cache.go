package chat

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/classpulse/backend/internal/models"
)

const (
	cacheKey = "chat:recent"
	cacheCap = 100
)

// CachedStore layers a bounded Redis list over a chat Store so Recent is
// served without a database round trip. Writes go through to the inner
// store first; the cache is best-effort and Postgres stays the source of
// truth, so a cache failure only costs the fast path.
type CachedStore struct {
	inner  Store
	rdb    *redis.Client
	logger *zap.Logger
}

// NewCachedStore wraps a store with a Redis recent-history cache.
func NewCachedStore(inner Store, rdb *redis.Client, logger *zap.Logger) *CachedStore {
	return &CachedStore{inner: inner, rdb: rdb, logger: logger}
}

// Append persists to the inner store, then pushes onto the capped list.
func (s *CachedStore) Append(ctx context.Context, senderName, senderID, text string) (*models.ChatMessage, error) {
	m, err := s.inner.Append(ctx, senderName, senderID, text)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(m)
	if err == nil {
		pipe := s.rdb.Pipeline()
		pipe.LPush(ctx, cacheKey, body)
		pipe.LTrim(ctx, cacheKey, 0, cacheCap-1)
		if _, err := pipe.Exec(ctx); err != nil {
			s.logger.Warn("chat cache push", zap.Error(err))
		}
	}
	return m, nil
}

// Recent serves from the cache when it holds enough history; otherwise it
// falls back to the inner store and rebuilds the cache.
func (s *CachedStore) Recent(ctx context.Context, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	raw, err := s.rdb.LRange(ctx, cacheKey, 0, int64(limit-1)).Result()
	if err == nil && len(raw) >= limit {
		out := make([]models.ChatMessage, 0, len(raw))
		ok := true
		// LPUSH order is newest first; history is oldest first.
		for i := len(raw) - 1; i >= 0; i-- {
			var m models.ChatMessage
			if json.Unmarshal([]byte(raw[i]), &m) != nil {
				ok = false
				break
			}
			out = append(out, m)
		}
		if ok {
			return out, nil
		}
	}

	history, err := s.inner.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	s.rebuild(ctx, history)
	return history, nil
}

func (s *CachedStore) rebuild(ctx context.Context, oldestFirst []models.ChatMessage) {
	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, cacheKey)
	for _, m := range oldestFirst {
		if body, err := json.Marshal(m); err == nil {
			pipe.LPush(ctx, cacheKey, body)
		}
	}
	pipe.LTrim(ctx, cacheKey, 0, cacheCap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn("chat cache rebuild", zap.Error(err))
	}
}
