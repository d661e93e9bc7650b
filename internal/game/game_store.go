package game

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/war/internal/models"
)

// GameStore keeps users and games in memory. UpdateGame holds the store lock
// for the whole callback, so battles against the same game never interleave.
type GameStore struct {
	mu    sync.Mutex
	games map[uuid.UUID]*models.Game
	users map[uuid.UUID]*models.User
}

func NewGameStore() *GameStore {
	return &GameStore{
		games: make(map[uuid.UUID]*models.Game),
		users: make(map[uuid.UUID]*models.User),
	}
}

func (s *GameStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Name == user.Name {
			return models.ErrConflict
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	u := *user
	s.users[u.ID] = &u
	return nil
}

func (s *GameStore) GetUserByName(_ context.Context, name string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Name == name {
			c := *u
			return &c, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *GameStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	c := *u
	return &c, nil
}

// ListUsersWithEmail returns users that registered an email address, by name.
func (s *GameStore) ListUsersWithEmail(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.users {
		if strings.TrimSpace(u.Email) != "" {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Rankings returns users ordered by wins, most first; ties break on name.
func (s *GameStore) Rankings(_ context.Context, limit int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *GameStore) InsertGame(_ context.Context, game *models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[game.UserID]; !ok {
		return models.ErrNotFound
	}
	if _, exists := s.games[game.ID]; exists {
		return models.ErrConflict
	}
	s.games[game.ID] = game.Clone()
	return nil
}

func (s *GameStore) GetGame(_ context.Context, id uuid.UUID) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, exists := s.games[id]
	if !exists {
		return nil, models.ErrNotFound
	}
	return g.Clone(), nil
}

// ListGamesByUser returns a user's games, oldest first.
func (s *GameStore) ListGamesByUser(_ context.Context, userID uuid.UUID, activeOnly bool) ([]*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Game
	for _, g := range s.games {
		if g.UserID != userID || (activeOnly && g.GameOver) {
			continue
		}
		out = append(out, g.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *GameStore) DeleteGame(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.games[id]; !exists {
		return models.ErrNotFound
	}
	delete(s.games, id)
	return nil
}

// UpdateGame runs fn on copies of the game and its owner and stores both
// only when fn succeeds.
func (s *GameStore) UpdateGame(_ context.Context, id uuid.UUID, fn func(g *models.Game, u *models.User) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, exists := s.games[id]
	if !exists {
		return models.ErrNotFound
	}
	owner, ok := s.users[stored.UserID]
	if !ok {
		return models.ErrNotFound
	}

	g := stored.Clone()
	u := *owner
	if err := fn(g, &u); err != nil {
		return err
	}
	s.games[id] = g.Clone()
	s.users[u.ID] = &u
	return nil
}
