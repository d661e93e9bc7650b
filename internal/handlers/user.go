package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type createUserRequest struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
}

// CreateUserHandler registers a user. Requires a unique user name.
//
// Request payload:
//
//	{
//	  "user_name": "alice",
//	  "email": "alice@example.com"
//	}
func CreateUserHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}

		u, err := gs.CreateUser(r.Context(), req.UserName, req.Email)
		if err != nil {
			writeError(w, gs.Logger, err, "User does not exist!")
			return
		}
		writeJSON(w, http.StatusCreated, GenericMessage{Message: fmt.Sprintf("User %s created!", u.Name)})
	}
}

// UserGamesHandler lists the ids of a user's active games.
func UserGamesHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, games, err := gs.UserGames(r.Context(), chi.URLParam(r, "user_name"))
		if err != nil {
			writeError(w, gs.Logger, err, "User does not exist!")
			return
		}

		form := UserGameForm{
			UserName:    u.Name,
			ActiveGames: make([]string, 0, len(games)),
			Message:     fmt.Sprintf("%d active games", len(games)),
		}
		for _, g := range games {
			form.ActiveGames = append(form.ActiveGames, g.ID.String())
		}
		writeJSON(w, http.StatusOK, form)
	}
}

// RankingsHandler lists users ordered by wins.
func RankingsHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := gs.Rankings(r.Context())
		if err != nil {
			writeError(w, gs.Logger, err, "")
			return
		}

		form := UserRankingForm{
			Message:  "Player rankings by wins",
			Rankings: make([]UserStatsForm, 0, len(users)),
		}
		for _, u := range users {
			form.Rankings = append(form.Rankings, UserStatsForm{UserName: u.Name, Wins: u.Wins})
		}
		writeJSON(w, http.StatusOK, form)
	}
}
