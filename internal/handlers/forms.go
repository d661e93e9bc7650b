// internal/handlers/forms.go
package handlers

import (
	"github.com/jason-s-yu/war/internal/game"
	"github.com/jason-s-yu/war/internal/models"
)

// GenericMessage is a plain status message.
type GenericMessage struct {
	Message string `json:"message"`
}

// GameForm is the public view of a game after any request.
type GameForm struct {
	URLSafeKey    string        `json:"urlsafe_key"`
	UserName      string        `json:"user_name"`
	UserCard      string        `json:"user_card,omitempty"`
	BotCard       string        `json:"bot_card,omitempty"`
	UserCardCount int           `json:"user_card_count"`
	BotCardCount  int           `json:"bot_card_count"`
	Message       string        `json:"message"`
	GameOver      bool          `json:"game_over"`
	Winner        models.Winner `json:"winner,omitempty"`
	Wars          int           `json:"wars,omitempty"`
}

// UserGameForm lists a user's active games.
type UserGameForm struct {
	UserName    string   `json:"user_name"`
	ActiveGames []string `json:"active_games"`
	Message     string   `json:"message"`
}

// UserStatsForm is a user's standing.
type UserStatsForm struct {
	UserName string `json:"user_name"`
	Wins     int    `json:"wins"`
}

// UserRankingForm lists users ordered by wins.
type UserRankingForm struct {
	Message  string          `json:"message"`
	Rankings []UserStatsForm `json:"rankings"`
}

// GameHistoryForm replays every round of a game.
type GameHistoryForm struct {
	URLSafeKey string               `json:"urlsafe_key"`
	UserName   string               `json:"user_name"`
	History    []models.RoundRecord `json:"history"`
}

func newGameForm(state *GameState, message string) GameForm {
	form := GameForm{
		URLSafeKey:    state.Game.ID.String(),
		UserName:      state.User.Name,
		UserCardCount: len(state.Game.UserDeck),
		BotCardCount:  len(state.Game.BotDeck),
		Message:       message,
		GameOver:      state.Game.GameOver,
		Winner:        state.Game.Winner,
	}
	if res := state.Result; res != nil {
		form.UserCard = res.UserCard
		form.BotCard = res.BotCard
		form.Wars = res.Wars
		if form.Message == "" {
			form.Message = res.Message
		}
	}
	return form
}

// stateMessage describes a game that is only being looked at.
func stateMessage(g *models.Game) string {
	if !g.GameOver {
		return "Aw snap, the game is getting intense"
	}
	switch g.Winner {
	case models.WinnerUser:
		return game.ResultUserGame
	case models.WinnerDraw:
		return "The game ended in a draw."
	default:
		return game.ResultBotGame
	}
}
