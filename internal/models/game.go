// internal/models/game.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Winner records who won a finished game.
type Winner string

const (
	WinnerNone Winner = ""
	WinnerUser Winner = "user"
	WinnerBot  Winner = "bot"
	WinnerDraw Winner = "draw"
)

// RoundRecord is a single card comparison inside a battle.
type RoundRecord struct {
	UserCard string `json:"user_card"`
	BotCard  string `json:"bot_card"`
	Result   string `json:"result"`
}

// Game is one match between a user and the bot.
//
// The front of each deck is the next card played; won cards go to the back.
type Game struct {
	ID       uuid.UUID     `json:"id"`
	UserID   uuid.UUID     `json:"user_id"`
	UserDeck []string      `json:"user_deck"`
	BotDeck  []string      `json:"bot_deck"`
	GameOver bool          `json:"game_over"`
	Winner   Winner        `json:"winner,omitempty"`
	History  []RoundRecord `json:"history,omitempty"`

	// DeckSize is the number of cards each side was dealt.
	DeckSize     int  `json:"deck_size"`
	TrackHistory bool `json:"track_history"`

	// Battles counts resolved battles, used to order archived rounds.
	Battles int `json:"battles"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy so stores never share slices with callers.
func (g *Game) Clone() *Game {
	c := *g
	c.UserDeck = append([]string(nil), g.UserDeck...)
	c.BotDeck = append([]string(nil), g.BotDeck...)
	if g.History != nil {
		c.History = append([]RoundRecord(nil), g.History...)
	}
	return &c
}
