// internal/handlers/game_server.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/war/internal/cache"
	"github.com/jason-s-yu/war/internal/game"
	"github.com/jason-s-yu/war/internal/models"
	"github.com/sirupsen/logrus"
)

// MessageForfeit is the result shown when the user gives up a game.
const MessageForfeit = "Player forfeited. Bot won the game!"

// Store is the persistence the request layer works against. UpdateGame must
// serialize concurrent updates of the same game and persist nothing when fn
// fails.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByName(ctx context.Context, name string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListUsersWithEmail(ctx context.Context) ([]models.User, error)
	Rankings(ctx context.Context, limit int) ([]models.User, error)

	InsertGame(ctx context.Context, g *models.Game) error
	GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error)
	ListGamesByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*models.Game, error)
	DeleteGame(ctx context.Context, id uuid.UUID) error
	UpdateGame(ctx context.Context, id uuid.UUID, fn func(g *models.Game, u *models.User) error) error
}

// BattleCache is the optional Redis side of the server: the battle log queue
// and the ranking cache.
type BattleCache interface {
	PublishBattle(ctx context.Context, record cache.BattleRecord) error
	GetRankings(ctx context.Context) ([]models.User, bool, error)
	SetRankings(ctx context.Context, users []models.User) error
	InvalidateRankings(ctx context.Context) error
}

// GameServer wires the battle engine to storage. Handlers call its methods;
// it never holds game state itself.
type GameServer struct {
	Store  Store
	Cache  BattleCache // nil disables the queue and ranking cache
	Rules  game.Rules
	Logger *logrus.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewGameServer(store Store, rules game.Rules, logger *logrus.Logger) *GameServer {
	return &GameServer{
		Store:  store,
		Rules:  rules,
		Logger: logger,
		rng:    game.NewRand(),
	}
}

// GameState is a game with its owner and, after a battle, the battle result.
type GameState struct {
	Game   *models.Game
	User   *models.User
	Result *game.BattleResult
}

// CreateUser registers a user. Names are unique.
func (gs *GameServer) CreateUser(ctx context.Context, name, email string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: user_name is required", models.ErrBadRequest)
	}
	u := &models.User{Name: name, Email: strings.TrimSpace(email)}
	if err := gs.Store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	gs.invalidateRankings(ctx)
	gs.Logger.WithField("user", u.Name).Info("user created")
	return u, nil
}

// NewGame deals a game for the named user. overrides may adjust the default
// rules for this game only.
func (gs *GameServer) NewGame(ctx context.Context, userName string, overrides map[string]interface{}) (*GameState, error) {
	u, err := gs.Store.GetUserByName(ctx, userName)
	if err != nil {
		return nil, err
	}
	rules, err := game.ParseRules(overrides, gs.Rules)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrBadRequest, err)
	}

	gs.rngMu.Lock()
	g, err := game.NewGame(u.ID, rules, gs.rng)
	gs.rngMu.Unlock()
	if err != nil {
		return nil, err
	}
	if err := gs.Store.InsertGame(ctx, g); err != nil {
		return nil, fmt.Errorf("insert game: %w", err)
	}

	gs.Logger.WithFields(logrus.Fields{
		"game_id":   g.ID,
		"user":      u.Name,
		"deck_size": g.DeckSize,
	}).Info("game created")
	return &GameState{Game: g, User: u}, nil
}

// GetGame loads a game and its owner.
func (gs *GameServer) GetGame(ctx context.Context, id uuid.UUID) (*GameState, error) {
	g, err := gs.Store.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	u, err := gs.Store.GetUserByID(ctx, g.UserID)
	if err != nil {
		return nil, fmt.Errorf("owner of game %s: %w", id, err)
	}
	return &GameState{Game: g, User: u}, nil
}

// Battle resolves one battle inside a single store update, then publishes the
// battle log. Battles on a finished game change nothing.
func (gs *GameServer) Battle(ctx context.Context, id uuid.UUID) (*GameState, error) {
	var state GameState
	err := gs.Store.UpdateGame(ctx, id, func(g *models.Game, u *models.User) error {
		res, err := game.ResolveBattle(g, u)
		if err != nil {
			return err
		}
		state = GameState{Game: g.Clone(), User: copyUser(u), Result: res}
		return nil
	})
	if err != nil {
		if errors.Is(err, game.ErrInvalidState) {
			gs.Logger.WithField("game_id", id).Errorf("battle aborted: %v", err)
		}
		return nil, err
	}

	res := state.Result
	gs.Logger.WithFields(logrus.Fields{
		"game_id":   id,
		"outcome":   res.Outcome,
		"wars":      res.Wars,
		"game_over": res.GameOver,
	}).Info("battle resolved")

	if res.Outcome == game.OutcomeAlreadyOver {
		return &state, nil
	}
	if res.Winner == models.WinnerUser {
		gs.invalidateRankings(ctx)
	}
	gs.publishBattle(ctx, &state)
	return &state, nil
}

// Forfeit ends a live game in the bot's favour. Forfeiting a finished game
// changes nothing.
func (gs *GameServer) Forfeit(ctx context.Context, id uuid.UUID) (*GameState, string, error) {
	var (
		state   GameState
		message string
	)
	err := gs.Store.UpdateGame(ctx, id, func(g *models.Game, u *models.User) error {
		message = game.MessageAlreadyOver
		if game.EndGame(g, u, false) {
			message = MessageForfeit
		}
		state = GameState{Game: g.Clone(), User: copyUser(u)}
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	gs.Logger.WithField("game_id", id).Info(message)
	return &state, message, nil
}

// History returns a game's recorded rounds, oldest first. It is empty when the
// game does not track history.
func (gs *GameServer) History(ctx context.Context, id uuid.UUID) (*GameState, []models.RoundRecord, error) {
	state, err := gs.GetGame(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	history := state.Game.History
	if history == nil {
		history = []models.RoundRecord{}
	}
	return state, history, nil
}

// CancelGame deletes a game.
func (gs *GameServer) CancelGame(ctx context.Context, id uuid.UUID) error {
	if err := gs.Store.DeleteGame(ctx, id); err != nil {
		return err
	}
	gs.Logger.WithField("game_id", id).Info("game canceled")
	return nil
}

// UserGames returns the named user's games that are still being played.
func (gs *GameServer) UserGames(ctx context.Context, userName string) (*models.User, []*models.Game, error) {
	u, err := gs.Store.GetUserByName(ctx, userName)
	if err != nil {
		return nil, nil, err
	}
	games, err := gs.Store.ListGamesByUser(ctx, u.ID, true)
	if err != nil {
		return nil, nil, err
	}
	return u, games, nil
}

// Rankings lists users by wins, served from the cache when it is warm.
func (gs *GameServer) Rankings(ctx context.Context) ([]models.User, error) {
	if gs.Cache != nil {
		users, ok, err := gs.Cache.GetRankings(ctx)
		if err != nil {
			gs.Logger.Warnf("ranking cache read failed: %v", err)
		} else if ok {
			return users, nil
		}
	}

	users, err := gs.Store.Rankings(ctx, 0)
	if err != nil {
		return nil, err
	}
	if gs.Cache != nil {
		if err := gs.Cache.SetRankings(ctx, users); err != nil {
			gs.Logger.Warnf("ranking cache write failed: %v", err)
		}
	}
	return users, nil
}

func (gs *GameServer) invalidateRankings(ctx context.Context) {
	if gs.Cache == nil {
		return
	}
	if err := gs.Cache.InvalidateRankings(ctx); err != nil {
		gs.Logger.Warnf("ranking cache invalidation failed: %v", err)
	}
}

// publishBattle pushes the battle log after the store committed. A failed push
// is logged; the battle itself already stands.
func (gs *GameServer) publishBattle(ctx context.Context, state *GameState) {
	if gs.Cache == nil {
		return
	}
	record := cache.BattleRecord{
		GameID:      state.Game.ID,
		UserID:      state.Game.UserID,
		BattleIndex: state.Game.Battles,
		Outcome:     string(state.Result.Outcome),
		GameOver:    state.Result.GameOver,
		Rounds:      state.Result.Rounds,
		Timestamp:   time.Now().UnixMilli(),
	}
	pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := gs.Cache.PublishBattle(pubCtx, record); err != nil {
		gs.Logger.WithField("game_id", record.GameID).Errorf("failed to publish battle %d: %v", record.BattleIndex, err)
	}
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}
