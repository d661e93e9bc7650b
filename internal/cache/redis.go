// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/war/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list (queue) the historian consumes.
const DefaultQueueName = "war_battles"

const rankingsKey = "war:rankings"

// BattleRecord is the battle log entry the historian archives.
type BattleRecord struct {
	GameID      uuid.UUID            `json:"game_id"`
	UserID      uuid.UUID            `json:"user_id"`
	BattleIndex int                  `json:"battle_index"`
	Outcome     string               `json:"outcome"`
	GameOver    bool                 `json:"game_over"`
	Rounds      []models.RoundRecord `json:"rounds"`
	Timestamp   int64                `json:"timestamp"`
}

// Client wraps a Redis connection for the battle queue and the ranking cache.
type Client struct {
	rdb        *redis.Client
	queue      string
	rankingTTL time.Duration
}

// Connect dials Redis at addr and pings it.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// New builds a Client. An empty queue name falls back to DefaultQueueName.
func New(rdb *redis.Client, queue string, rankingTTL time.Duration) *Client {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &Client{rdb: rdb, queue: queue, rankingTTL: rankingTTL}
}

// PublishBattle serializes the record and pushes it onto the queue.
func (c *Client) PublishBattle(ctx context.Context, record BattleRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal BattleRecord: %w", err)
	}
	if err := c.rdb.RPush(ctx, c.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", c.queue, err)
	}
	return nil
}

// GetRankings returns the cached ranking list. ok is false on a cache miss.
func (c *Client) GetRankings(ctx context.Context) (users []models.User, ok bool, err error) {
	data, err := c.rdb.Get(ctx, rankingsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, false, fmt.Errorf("invalid cached rankings: %w", err)
	}
	return users, true, nil
}

// SetRankings caches the ranking list for the configured TTL.
func (c *Client) SetRankings(ctx context.Context, users []models.User) error {
	data, err := json.Marshal(users)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, rankingsKey, data, c.rankingTTL).Err()
}

// InvalidateRankings drops the cached list after a win changes the order.
func (c *Client) InvalidateRankings(ctx context.Context) error {
	return c.rdb.Del(ctx, rankingsKey).Err()
}
