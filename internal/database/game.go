// internal/database/game.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jason-s-yu/war/internal/models"
)

const gameColumns = `id, user_id, user_deck, bot_deck, game_over, winner, history,
	deck_size, track_history, battles, created_at, updated_at`

// InsertGame stores a freshly dealt game.
func (s *Store) InsertGame(ctx context.Context, g *models.Game) error {
	history, err := marshalHistory(g.History)
	if err != nil {
		return err
	}
	q := `
		INSERT INTO games (` + gameColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	err = pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, e := tx.Exec(ctx, q,
			g.ID, g.UserID, g.UserDeck, g.BotDeck, g.GameOver, string(g.Winner), history,
			g.DeckSize, g.TrackHistory, g.Battles, g.CreatedAt, g.UpdatedAt,
		)
		return e
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return models.ErrConflict
			case "23503":
				return models.ErrNotFound
			}
		}
		return fmt.Errorf("failed to insert game: %w", err)
	}
	return nil
}

func (s *Store) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	q := `SELECT ` + gameColumns + ` FROM games WHERE id=$1`
	return scanGame(s.pool.QueryRow(ctx, q, id))
}

// ListGamesByUser returns a user's games, oldest first.
func (s *Store) ListGamesByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*models.Game, error) {
	q := `SELECT ` + gameColumns + ` FROM games WHERE user_id=$1`
	if activeOnly {
		q += ` AND game_over = FALSE`
	}
	q += ` ORDER BY created_at`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// DeleteGame removes a game row.
func (s *Store) DeleteGame(ctx context.Context, id uuid.UUID) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `DELETE FROM games WHERE id=$1`, id)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return models.ErrNotFound
		}
		return nil
	})
}

// UpdateGame locks the game row and its owner's row, runs fn, and writes both
// back in the same transaction. Nothing is written when fn fails.
func (s *Store) UpdateGame(ctx context.Context, id uuid.UUID, fn func(g *models.Game, u *models.User) error) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		g, err := scanGame(tx.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id=$1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		u, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1 FOR UPDATE`, g.UserID))
		if err != nil {
			return err
		}

		if err := fn(g, u); err != nil {
			return err
		}

		history, err := marshalHistory(g.History)
		if err != nil {
			return err
		}
		updGame := `
			UPDATE games
			SET user_deck=$1, bot_deck=$2, game_over=$3, winner=$4, history=$5, battles=$6, updated_at=$7
			WHERE id=$8
		`
		if _, err := tx.Exec(ctx, updGame,
			g.UserDeck, g.BotDeck, g.GameOver, string(g.Winner), history, g.Battles, g.UpdatedAt, g.ID,
		); err != nil {
			return fmt.Errorf("update game: %w", err)
		}
		if _, err := tx.Exec(ctx, `UPDATE users SET wins=$1 WHERE id=$2`, u.Wins, u.ID); err != nil {
			return fmt.Errorf("update user wins: %w", err)
		}
		return nil
	})
}

func marshalHistory(history []models.RoundRecord) ([]byte, error) {
	if history == nil {
		history = []models.RoundRecord{}
	}
	data, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history: %w", err)
	}
	return data, nil
}

func scanGame(row pgx.Row) (*models.Game, error) {
	var (
		g       models.Game
		winner  string
		history []byte
	)
	err := row.Scan(
		&g.ID, &g.UserID, &g.UserDeck, &g.BotDeck, &g.GameOver, &winner, &history,
		&g.DeckSize, &g.TrackHistory, &g.Battles, &g.CreatedAt, &g.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	g.Winner = models.Winner(winner)
	if len(history) > 0 {
		if err := json.Unmarshal(history, &g.History); err != nil {
			return nil, fmt.Errorf("failed to decode history of game %s: %w", g.ID, err)
		}
		if len(g.History) == 0 {
			g.History = nil
		}
	}
	return &g, nil
}
