// internal/game/engine.go
package game

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/war/internal/models"
)

// ErrInvalidState means the card-conservation invariant no longer holds or a
// live game cannot be played. It is an internal fault, never a user error.
var ErrInvalidState = errors.New("invalid game state")

// Outcome classifies how a battle ended.
type Outcome string

const (
	OutcomeUserRound   Outcome = "user_round"
	OutcomeBotRound    Outcome = "bot_round"
	OutcomeUserGame    Outcome = "user_game"
	OutcomeBotGame     Outcome = "bot_game"
	OutcomeDraw        Outcome = "draw"
	OutcomeAlreadyOver Outcome = "already_over"
)

// Round results as stored in the history.
const (
	ResultUserRound    = "Player won."
	ResultBotRound     = "Bot won."
	ResultWar          = "War!"
	ResultUserGame     = "Player won the game!"
	ResultBotGame      = "Bot won the game!"
	ResultBotOutOfWar  = "Bot ran out of cards during war. Player won the game!"
	ResultUserOutOfWar = "Player ran out of cards during war. Bot won the game!"
	ResultDrawOutOfWar = "Both players ran out of cards during war. It's a draw!"

	MessageAlreadyOver = "Game already over!"
)

// BattleResult describes one resolved battle.
type BattleResult struct {
	// UserCard and BotCard are the last face-up cards compared.
	UserCard string
	BotCard  string

	Outcome  Outcome
	Message  string
	GameOver bool
	Winner   models.Winner

	// Rounds holds every comparison of this battle, wars included, whether or
	// not the game tracks history.
	Rounds []models.RoundRecord
	Wars   int
}

// NewGame deals a fresh game for the given user.
func NewGame(userID uuid.UUID, rules Rules, rng *rand.Rand) (*models.Game, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrBadRequest, err)
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("failed to generate game id: %w", err)
	}

	userDeck, botDeck := Deal(NewDeck(rules.DeckSize, rng))
	now := time.Now().UTC()
	return &models.Game{
		ID:           id,
		UserID:       userID,
		UserDeck:     userDeck,
		BotDeck:      botDeck,
		DeckSize:     rules.DeckSize,
		TrackHistory: rules.TrackHistory,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ResolveBattle plays the top card of each deck, running as many war cycles
// as the tie-breaks need. The game and user are only mutated on success.
//
// u is the game's owner; its win counter is credited when the user wins the
// game. It may be nil when no user record is involved.
func ResolveBattle(g *models.Game, u *models.User) (*BattleResult, error) {
	if g.GameOver {
		return &BattleResult{
			Outcome:  OutcomeAlreadyOver,
			Message:  MessageAlreadyOver,
			GameOver: true,
			Winner:   g.Winner,
		}, nil
	}
	if len(g.UserDeck) == 0 || len(g.BotDeck) == 0 {
		return nil, fmt.Errorf("%w: game %s has an empty deck but is not over", ErrInvalidState, g.ID)
	}

	total := len(g.UserDeck) + len(g.BotDeck)
	if g.DeckSize > 0 && total != g.DeckSize*2 {
		return nil, fmt.Errorf("%w: game %s holds %d cards, want %d", ErrInvalidState, g.ID, total, g.DeckSize*2)
	}

	b := &battle{
		user: append([]string(nil), g.UserDeck...),
		bot:  append([]string(nil), g.BotDeck...),
	}
	res, err := b.resolve()
	if err != nil {
		return nil, err
	}
	if after := len(b.user) + len(b.bot) + len(b.pool); after != total {
		return nil, fmt.Errorf("%w: game %s went from %d to %d cards", ErrInvalidState, g.ID, total, after)
	}

	g.UserDeck = b.user
	g.BotDeck = b.bot
	g.Battles++
	g.UpdatedAt = time.Now().UTC()
	if g.TrackHistory {
		g.History = append(g.History, res.Rounds...)
	}
	if res.GameOver {
		endGame(g, u, res.Winner)
	}
	return res, nil
}

// EndGame finalizes a game. The user's win counter moves only when the game
// was still live and the user is the winner. It reports whether the game
// transitioned.
func EndGame(g *models.Game, u *models.User, userWon bool) bool {
	winner := models.WinnerBot
	if userWon {
		winner = models.WinnerUser
	}
	return endGame(g, u, winner)
}

func endGame(g *models.Game, u *models.User, winner models.Winner) bool {
	if g.GameOver {
		return false
	}
	g.GameOver = true
	g.Winner = winner
	g.UpdatedAt = time.Now().UTC()
	if winner == models.WinnerUser && u != nil {
		u.Wins++
	}
	return true
}

// battle is the working state of one ResolveBattle call.
type battle struct {
	user []string
	bot  []string

	// pool holds cards at stake in an unresolved war, in (user, bot) pairs.
	pool []string

	rounds []models.RoundRecord
	wars   int
}

// resolve loops instead of recursing on ties. Every iteration removes at least
// one card from each deck and decks only grow when the battle ends, so the loop
// runs at most min(len(user), len(bot)) times.
func (b *battle) resolve() (*BattleResult, error) {
	uc, bc := b.draw()
	for {
		cmp, err := CompareCards(uc, bc)
		if err != nil {
			return nil, err
		}
		if cmp != 0 {
			return b.settle(uc, bc, cmp > 0), nil
		}

		b.wars++
		b.record(uc, bc, ResultWar)
		b.pool = append(b.pool, uc, bc)
		if res := b.exhausted(uc, bc); res != nil {
			return res, nil
		}

		// burn cards, face down
		bu, bb := b.draw()
		b.pool = append(b.pool, bu, bb)
		if res := b.exhausted(uc, bc); res != nil {
			return res, nil
		}

		uc, bc = b.draw()
	}
}

func (b *battle) draw() (string, string) {
	uc, bc := b.user[0], b.bot[0]
	b.user = b.user[1:]
	b.bot = b.bot[1:]
	return uc, bc
}

func (b *battle) record(uc, bc, result string) {
	b.rounds = append(b.rounds, models.RoundRecord{UserCard: uc, BotCard: bc, Result: result})
}

// settle hands the played cards and the pool to the round winner.
func (b *battle) settle(uc, bc string, userWon bool) *BattleResult {
	res := &BattleResult{UserCard: uc, BotCard: bc}
	var result string
	if userWon {
		b.user = append(b.user, uc, bc)
		b.user = append(b.user, b.pool...)
		res.GameOver = len(b.bot) == 0
		res.Outcome, result = OutcomeUserRound, ResultUserRound
		if res.GameOver {
			res.Outcome, result, res.Winner = OutcomeUserGame, ResultUserGame, models.WinnerUser
		}
	} else {
		b.bot = append(b.bot, bc, uc)
		b.bot = append(b.bot, b.pool...)
		res.GameOver = len(b.user) == 0
		res.Outcome, result = OutcomeBotRound, ResultBotRound
		if res.GameOver {
			res.Outcome, result, res.Winner = OutcomeBotGame, ResultBotGame, models.WinnerBot
		}
	}
	b.pool = nil
	b.record(uc, bc, result)
	return b.finish(res, result)
}

// exhausted ends the game when a side owes a war card it does not have.
// It returns nil while both sides can keep playing.
func (b *battle) exhausted(uc, bc string) *BattleResult {
	userOut, botOut := len(b.user) == 0, len(b.bot) == 0
	if !userOut && !botOut {
		return nil
	}

	res := &BattleResult{UserCard: uc, BotCard: bc, GameOver: true}
	var result string
	switch {
	case userOut && botOut:
		for i, c := range b.pool {
			if i%2 == 0 {
				b.user = append(b.user, c)
			} else {
				b.bot = append(b.bot, c)
			}
		}
		res.Outcome, res.Winner, result = OutcomeDraw, models.WinnerDraw, ResultDrawOutOfWar
	case userOut:
		b.bot = append(b.bot, b.pool...)
		res.Outcome, res.Winner, result = OutcomeBotGame, models.WinnerBot, ResultUserOutOfWar
	default:
		b.user = append(b.user, b.pool...)
		res.Outcome, res.Winner, result = OutcomeUserGame, models.WinnerUser, ResultBotOutOfWar
	}
	b.pool = nil
	b.record(uc, bc, result)
	return b.finish(res, result)
}

func (b *battle) finish(res *BattleResult, result string) *BattleResult {
	res.Rounds = b.rounds
	res.Wars = b.wars
	switch {
	case b.wars == 1:
		res.Message = "War! " + result
	case b.wars > 1:
		res.Message = fmt.Sprintf("War x%d! %s", b.wars, result)
	default:
		res.Message = result
	}
	return res
}
