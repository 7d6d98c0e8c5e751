package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"legalai-assistant/internal/model"
)

const maxCachedTurns = 50

// HistoryCache keeps a per-session chat transcript in Redis so clients do
// not have to resend history with every request. Entries expire with the
// same TTL as the session itself.
type HistoryCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewHistoryCache(client *redisv9.Client, ttl time.Duration) *HistoryCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &HistoryCache{client: client, ttl: ttl}
}

func (c *HistoryCache) GetHistory(ctx context.Context, sessionID string) ([]model.ChatTurn, bool, error) {
	raw, err := c.client.Get(ctx, c.historyKey(sessionID)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get history failed: %w", err)
	}

	var turns []model.ChatTurn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached history failed: %w", err)
	}
	return turns, true, nil
}

// AppendTurns extends the cached transcript and refreshes its TTL. The
// transcript is capped at maxCachedTurns, oldest first to go.
func (c *HistoryCache) AppendTurns(ctx context.Context, sessionID string, turns ...model.ChatTurn) error {
	existing, _, err := c.GetHistory(ctx, sessionID)
	if err != nil {
		return err
	}
	combined := append(existing, turns...)
	if len(combined) > maxCachedTurns {
		combined = combined[len(combined)-maxCachedTurns:]
	}

	payload, err := json.Marshal(combined)
	if err != nil {
		return fmt.Errorf("marshal history cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.historyKey(sessionID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set history failed: %w", err)
	}
	return nil
}

func (c *HistoryCache) DeleteHistory(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, c.historyKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete history failed: %w", err)
	}
	return nil
}

func (c *HistoryCache) historyKey(sessionID string) string {
	return "chat:history:" + sessionID
}
