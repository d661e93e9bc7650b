package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ArchivedRound is one row of the game_rounds archive.
type ArchivedRound struct {
	GameID      uuid.UUID
	BattleIndex int
	RoundIndex  int
	UserCard    string
	BotCard     string
	Result      string
	RecordedAt  time.Time
}

// InsertRounds archives rounds in one transaction. Re-delivered rounds are
// ignored.
func (s *Store) InsertRounds(ctx context.Context, rounds []ArchivedRound) error {
	if len(rounds) == 0 {
		return nil
	}
	q := `
		INSERT INTO game_rounds (game_id, battle_index, round_index, user_card, bot_card, result, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (game_id, battle_index, round_index) DO NOTHING
	`
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, r := range rounds {
			batch.Queue(q, r.GameID, r.BattleIndex, r.RoundIndex, r.UserCard, r.BotCard, r.Result, r.RecordedAt)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}
