package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jason-s-yu/war/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(rdb, "", time.Minute), mr
}

func TestPublishBattle(t *testing.T) {
	c, mr := setupClient(t)
	ctx := context.Background()

	rec := BattleRecord{
		GameID:      uuid.New(),
		UserID:      uuid.New(),
		BattleIndex: 3,
		Outcome:     "user_round",
		Rounds:      []models.RoundRecord{{UserCard: "K", BotCard: "4", Result: "Player won."}},
		Timestamp:   time.Now().UnixMilli(),
	}
	require.NoError(t, c.PublishBattle(ctx, rec))

	items, err := mr.List(DefaultQueueName)
	require.NoError(t, err)
	require.Len(t, items, 1)

	var got BattleRecord
	require.NoError(t, json.Unmarshal([]byte(items[0]), &got))
	assert.Equal(t, rec.GameID, got.GameID)
	assert.Equal(t, rec.Rounds, got.Rounds)
}

func TestRankingCache(t *testing.T) {
	c, mr := setupClient(t)
	ctx := context.Background()

	_, ok, err := c.GetRankings(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	users := []models.User{{Name: "bea", Wins: 4}, {Name: "ann", Wins: 1}}
	require.NoError(t, c.SetRankings(ctx, users))

	got, ok, err := c.GetRankings(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "bea", got[0].Name)
	assert.Equal(t, 4, got[0].Wins)

	mr.FastForward(2 * time.Minute)
	_, ok, _ = c.GetRankings(ctx)
	assert.False(t, ok, "cached rankings should expire")

	require.NoError(t, c.SetRankings(ctx, users))
	require.NoError(t, c.InvalidateRankings(ctx))
	_, ok, _ = c.GetRankings(ctx)
	assert.False(t, ok)
}
