package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         UUID PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		email      TEXT NOT NULL DEFAULT '',
		wins       INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS games (
		id            UUID PRIMARY KEY,
		user_id       UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		user_deck     TEXT[] NOT NULL,
		bot_deck      TEXT[] NOT NULL,
		game_over     BOOLEAN NOT NULL DEFAULT FALSE,
		winner        TEXT NOT NULL DEFAULT '',
		history       JSONB NOT NULL DEFAULT '[]',
		deck_size     INTEGER NOT NULL,
		track_history BOOLEAN NOT NULL DEFAULT TRUE,
		battles       INTEGER NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS games_user_id_idx ON games (user_id, game_over)`,
	`CREATE TABLE IF NOT EXISTS game_rounds (
		game_id      UUID NOT NULL,
		battle_index INTEGER NOT NULL,
		round_index  INTEGER NOT NULL,
		user_card    TEXT NOT NULL,
		bot_card     TEXT NOT NULL,
		result       TEXT NOT NULL,
		recorded_at  TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (game_id, battle_index, round_index)
	)`,
}

// EnsureSchema creates the tables the service needs if they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return pgx.BeginTxFunc(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
		}
		return nil
	})
}
