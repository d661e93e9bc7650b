// internal/game/engine_test.go
package game

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/war/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupGame builds a live game with fixed decks and a fresh owner.
func setupGame(userDeck, botDeck []string) (*models.Game, *models.User) {
	u := &models.User{ID: uuid.New(), Name: "alice"}
	g := &models.Game{
		ID:           uuid.New(),
		UserID:       u.ID,
		UserDeck:     userDeck,
		BotDeck:      botDeck,
		TrackHistory: true,
	}
	return g, u
}

func TestRankOrdering(t *testing.T) {
	two, err := RankValue("2")
	require.NoError(t, err)
	ten, _ := RankValue("10")
	jack, _ := RankValue("J")
	ace, _ := RankValue("A")

	assert.Equal(t, 2, two)
	assert.Equal(t, 10, ten)
	assert.Equal(t, 11, jack)
	assert.Equal(t, 14, ace)
	assert.True(t, two < ten && ten < jack && jack < ace)

	for i := 1; i < len(Ranks); i++ {
		cmp, err := CompareCards(Ranks[i-1], Ranks[i])
		require.NoError(t, err)
		assert.Negative(t, cmp, "%s should rank below %s", Ranks[i-1], Ranks[i])
	}

	_, err = RankValue("1")
	assert.ErrorIs(t, err, ErrInvalidState)
}

// TestUserWinsLastCard covers the single-card game: A beats 2 and the bot is out.
func TestUserWinsLastCard(t *testing.T) {
	g, u := setupGame([]string{"A"}, []string{"2"})

	res, err := ResolveBattle(g, u)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "2"}, g.UserDeck)
	assert.Empty(t, g.BotDeck)
	assert.True(t, g.GameOver)
	assert.Equal(t, models.WinnerUser, g.Winner)
	assert.Equal(t, OutcomeUserGame, res.Outcome)
	assert.Equal(t, ResultUserGame, res.Message)
	assert.Equal(t, "A", res.UserCard)
	assert.Equal(t, "2", res.BotCard)
	assert.Equal(t, 1, u.Wins)
	require.Len(t, g.History, 1)
	assert.Equal(t, models.RoundRecord{UserCard: "A", BotCard: "2", Result: ResultUserGame}, g.History[0])
}

func TestRoundWinAppendsToBack(t *testing.T) {
	g, u := setupGame([]string{"3", "K"}, []string{"Q", "4"})

	res, err := ResolveBattle(g, u)
	require.NoError(t, err)
	assert.Equal(t, OutcomeBotRound, res.Outcome)
	assert.Equal(t, ResultBotRound, res.Message)
	assert.False(t, res.GameOver)
	assert.Equal(t, []string{"K"}, g.UserDeck)
	assert.Equal(t, []string{"4", "Q", "3"}, g.BotDeck)

	res, err = ResolveBattle(g, u)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUserRound, res.Outcome)
	assert.Equal(t, []string{"K", "4"}, g.UserDeck)
	assert.Equal(t, []string{"Q", "3"}, g.BotDeck)
	assert.Equal(t, 2, g.Battles)
	assert.Equal(t, 0, u.Wins)
}

// TestWarWinnerTakesPool plays a single war: tie on 5, burn, then K beats 9.
func TestWarWinnerTakesPool(t *testing.T) {
	g, u := setupGame([]string{"5", "2", "K", "7"}, []string{"5", "3", "9", "8"})

	res, err := ResolveBattle(g, u)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Wars)
	assert.Equal(t, OutcomeUserRound, res.Outcome)
	assert.Equal(t, "War! "+ResultUserRound, res.Message)
	assert.Equal(t, "K", res.UserCard)
	assert.Equal(t, "9", res.BotCard)
	assert.Equal(t, []string{"7", "K", "9", "5", "5", "2", "3"}, g.UserDeck)
	assert.Equal(t, []string{"8"}, g.BotDeck)
	assert.False(t, g.GameOver)

	require.Len(t, g.History, 2)
	assert.Equal(t, models.RoundRecord{UserCard: "5", BotCard: "5", Result: ResultWar}, g.History[0])
	assert.Equal(t, models.RoundRecord{UserCard: "K", BotCard: "9", Result: ResultUserRound}, g.History[1])
}

// TestWarOfFives mirrors two equal pairs plus a decider on each side.
func TestWarOfFives(t *testing.T) {
	g, u := setupGame([]string{"5", "5", "2"}, []string{"5", "5", "J"})

	res, err := ResolveBattle(g, u)
	require.NoError(t, err)

	assert.Equal(t, OutcomeBotGame, res.Outcome)
	assert.Empty(t, g.UserDeck)
	assert.ElementsMatch(t, []string{"5", "5", "5", "5", "2", "J"}, g.BotDeck)
	assert.Equal(t, models.WinnerBot, g.Winner)
	assert.Equal(t, 0, u.Wins)
}

func TestRepeatedWar(t *testing.T) {
	g, u := setupGame(
		[]string{"8", "2", "Q", "3", "A", "6"},
		[]string{"8", "4", "Q", "7", "10", "9"},
	)

	res, err := ResolveBattle(g, u)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Wars)
	assert.Equal(t, "War x2! "+ResultUserRound, res.Message)
	require.Len(t, res.Rounds, 3)
	assert.Equal(t, ResultWar, res.Rounds[0].Result)
	assert.Equal(t, "Q", res.Rounds[1].UserCard)
	assert.Equal(t, ResultWar, res.Rounds[1].Result)
	assert.Equal(t, ResultUserRound, res.Rounds[2].Result)
	assert.Equal(t, []string{"6", "A", "10", "8", "8", "2", "4", "Q", "Q", "3", "7"}, g.UserDeck)
	assert.Equal(t, []string{"9"}, g.BotDeck)
}

// TestWarExhaustionBeforeBurn: the user ties on their last card and owes a burn card.
func TestWarExhaustionBeforeBurn(t *testing.T) {
	g, u := setupGame([]string{"7"}, []string{"7", "3", "2"})

	res, err := ResolveBattle(g, u)
	require.NoError(t, err)

	assert.True(t, res.GameOver)
	assert.Equal(t, OutcomeBotGame, res.Outcome)
	assert.Equal(t, models.WinnerBot, g.Winner)
	assert.Empty(t, g.UserDeck)
	assert.Equal(t, []string{"3", "2", "7", "7"}, g.BotDeck)
	require.Len(t, g.History, 2)
	assert.Equal(t, ResultUserOutOfWar, g.History[1].Result)
	assert.Equal(t, 0, u.Wins)
}

// TestWarExhaustionAfterBurn: the bot can burn but has no war card left.
func TestWarExhaustionAfterBurn(t *testing.T) {
	g, u := setupGame([]string{"J", "4", "9"}, []string{"J", "6"})

	res, err := ResolveBattle(g, u)
	require.NoError(t, err)

	assert.Equal(t, OutcomeUserGame, res.Outcome)
	assert.Equal(t, "War! "+ResultBotOutOfWar, res.Message)
	assert.Equal(t, []string{"9", "J", "J", "4", "6"}, g.UserDeck)
	assert.Empty(t, g.BotDeck)
	assert.Equal(t, 1, u.Wins)
}

func TestWarExhaustionBothSidesIsDraw(t *testing.T) {
	g, u := setupGame([]string{"5", "5"}, []string{"5", "2"})

	res, err := ResolveBattle(g, u)
	require.NoError(t, err)

	assert.Equal(t, OutcomeDraw, res.Outcome)
	assert.Equal(t, models.WinnerDraw, g.Winner)
	assert.True(t, g.GameOver)
	assert.Equal(t, []string{"5", "5"}, g.UserDeck)
	assert.Equal(t, []string{"5", "2"}, g.BotDeck)
	assert.Equal(t, 0, u.Wins)
}

func TestBattleOnFinishedGameIsNoOp(t *testing.T) {
	g, u := setupGame([]string{"A", "2"}, nil)
	g.GameOver = true
	g.Winner = models.WinnerUser
	u.Wins = 1
	before := g.Clone()

	res, err := ResolveBattle(g, u)
	require.NoError(t, err)

	assert.Equal(t, OutcomeAlreadyOver, res.Outcome)
	assert.Equal(t, MessageAlreadyOver, res.Message)
	assert.True(t, res.GameOver)
	assert.Equal(t, before, g)
	assert.Equal(t, 1, u.Wins)
}

func TestInvalidStateLeavesGameUntouched(t *testing.T) {
	g, u := setupGame([]string{"A"}, nil)
	_, err := ResolveBattle(g, u)
	assert.ErrorIs(t, err, ErrInvalidState)

	g, u = setupGame([]string{"Z"}, []string{"2"})
	_, err = ResolveBattle(g, u)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, []string{"Z"}, g.UserDeck)
	assert.Equal(t, 0, g.Battles)

	g, u = setupGame([]string{"A"}, []string{"2"})
	g.DeckSize = ShortDeckSize
	_, err = ResolveBattle(g, u)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestHistoryTrackingDisabled(t *testing.T) {
	g, u := setupGame([]string{"5", "2", "K"}, []string{"5", "3", "9"})
	g.TrackHistory = false

	res, err := ResolveBattle(g, u)
	require.NoError(t, err)
	assert.Empty(t, g.History)
	assert.Len(t, res.Rounds, 2)
}

func TestEndGameCreditsOnce(t *testing.T) {
	g, u := setupGame([]string{"A"}, []string{"K"})

	assert.True(t, EndGame(g, u, true))
	assert.False(t, EndGame(g, u, true))
	assert.Equal(t, 1, u.Wins)
	assert.Equal(t, models.WinnerUser, g.Winner)

	g, u = setupGame([]string{"A"}, []string{"K"})
	assert.True(t, EndGame(g, u, false))
	assert.Equal(t, 0, u.Wins)
	assert.Equal(t, models.WinnerBot, g.Winner)
}

// TestFullGamesConserveCards plays seeded games to completion for both deck sizes.
func TestFullGamesConserveCards(t *testing.T) {
	for _, size := range []int{ShortDeckSize, FullDeckSize} {
		for seed := int64(1); seed <= 25; seed++ {
			rng := rand.New(rand.NewSource(seed))
			u := &models.User{ID: uuid.New(), Name: "sim"}
			g, err := NewGame(u.ID, Rules{DeckSize: size, TrackHistory: true}, rng)
			require.NoError(t, err)

			wins := 0
			for battles := 0; !g.GameOver && battles < 5000; battles++ {
				res, err := ResolveBattle(g, u)
				require.NoError(t, err)
				require.Equal(t, size*2, len(g.UserDeck)+len(g.BotDeck), "seed %d", seed)
				assert.LessOrEqual(t, len(res.Rounds)-1, res.Wars)
				if res.GameOver && res.Winner == models.WinnerUser {
					wins++
				}
			}
			if !g.GameOver {
				// some shuffles cycle forever; conservation still held throughout
				continue
			}
			assert.Equal(t, wins, u.Wins)
			assert.NotEqual(t, models.WinnerNone, g.Winner)
		}
	}
}
