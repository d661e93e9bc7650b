// internal/handlers/game.go
package handlers

import (
	"encoding/json"
	"net/http"
)

const (
	msgGameNotFound = "Game not found!"
	msgInvalidKey   = "invalid game key"
)

type newGameRequest struct {
	UserName string                 `json:"user_name"`
	Rules    map[string]interface{} `json:"rules,omitempty"`
}

// NewGameHandler deals a new game for an existing user. Rule overrides are optional:
//
//	{
//	  "user_name": "alice",
//	  "rules": {"deckSize": 26, "trackHistory": false}
//	}
func NewGameHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req newGameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}

		state, err := gs.NewGame(r.Context(), req.UserName, req.Rules)
		if err != nil {
			writeError(w, gs.Logger, err, "User does not exist!")
			return
		}
		writeJSON(w, http.StatusCreated, newGameForm(state, "Good luck playing the game of War!"))
	}
}

// GetGameHandler returns the current game state.
func GetGameHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := gameKey(r)
		if !ok {
			http.Error(w, msgInvalidKey, http.StatusBadRequest)
			return
		}
		state, err := gs.GetGame(r.Context(), id)
		if err != nil {
			writeError(w, gs.Logger, err, msgGameNotFound)
			return
		}
		writeJSON(w, http.StatusOK, newGameForm(state, stateMessage(state.Game)))
	}
}

// BattleHandler plays one battle and returns the cards that decided it.
func BattleHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := gameKey(r)
		if !ok {
			http.Error(w, msgInvalidKey, http.StatusBadRequest)
			return
		}
		state, err := gs.Battle(r.Context(), id)
		if err != nil {
			writeError(w, gs.Logger, err, msgGameNotFound)
			return
		}
		writeJSON(w, http.StatusOK, newGameForm(state, ""))
	}
}

// ForfeitHandler ends a game with the bot as winner.
func ForfeitHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := gameKey(r)
		if !ok {
			http.Error(w, msgInvalidKey, http.StatusBadRequest)
			return
		}
		state, message, err := gs.Forfeit(r.Context(), id)
		if err != nil {
			writeError(w, gs.Logger, err, msgGameNotFound)
			return
		}
		writeJSON(w, http.StatusOK, newGameForm(state, message))
	}
}

// CancelGameHandler deletes a game.
func CancelGameHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := gameKey(r)
		if !ok {
			http.Error(w, msgInvalidKey, http.StatusBadRequest)
			return
		}
		if err := gs.CancelGame(r.Context(), id); err != nil {
			writeError(w, gs.Logger, err, msgGameNotFound)
			return
		}
		writeJSON(w, http.StatusOK, GenericMessage{Message: "Game was canceled"})
	}
}

// GameHistoryHandler returns every recorded round of a game.
func GameHistoryHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := gameKey(r)
		if !ok {
			http.Error(w, msgInvalidKey, http.StatusBadRequest)
			return
		}
		state, history, err := gs.History(r.Context(), id)
		if err != nil {
			writeError(w, gs.Logger, err, msgGameNotFound)
			return
		}
		writeJSON(w, http.StatusOK, GameHistoryForm{
			URLSafeKey: state.Game.ID.String(),
			UserName:   state.User.Name,
			History:    history,
		})
	}
}
