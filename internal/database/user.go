// internal/database/user.go
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jason-s-yu/war/internal/models"
)

const userColumns = `id, name, email, wins, created_at`

// CreateUser inserts a user, assigning an ID when missing. A taken name
// yields models.ErrConflict.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate user id: %w", err)
		}
		user.ID = id
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	q := `INSERT INTO users (id, name, email, wins, created_at) VALUES ($1, $2, $3, $4, $5)`
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q, user.ID, user.Name, user.Email, user.Wins, user.CreatedAt)
		return execErr
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.ErrConflict
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByName(ctx context.Context, name string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE name=$1`
	return scanUser(s.pool.QueryRow(ctx, q, name))
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(s.pool.QueryRow(ctx, q, id))
}

// ListUsersWithEmail returns every user that registered an email address.
func (s *Store) ListUsersWithEmail(ctx context.Context) ([]models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email <> '' ORDER BY name`
	return s.queryUsers(ctx, q)
}

// Rankings lists users by wins, most first. limit <= 0 means no limit.
func (s *Store) Rankings(ctx context.Context, limit int) ([]models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users ORDER BY wins DESC, name ASC`
	if limit > 0 {
		return s.queryUsers(ctx, q+` LIMIT $1`, limit)
	}
	return s.queryUsers(ctx, q)
}

func (s *Store) queryUsers(ctx context.Context, q string, args ...any) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Wins, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
