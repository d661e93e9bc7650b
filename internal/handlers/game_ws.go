// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/jason-s-yu/war/internal/middleware"
	"github.com/jason-s-yu/war/internal/models"
)

// GameMessage is an incoming WebSocket message. The only supported type is "battle".
type GameMessage struct {
	Type string `json:"type"`
}

// GameEvent is sent to the client after connecting and after every battle.
type GameEvent struct {
	Type    string    `json:"type"` // game_state, battle_result or error
	Game    *GameForm `json:"game,omitempty"`
	Message string    `json:"message,omitempty"`
}

const wsWriteTimeout = 3 * time.Second

// GameWSHandler upgrades the connection for /game/ws/{key}, sends the current
// state, and answers every {"type":"battle"} message with the battle result.
// The server closes the stream once the game is over.
func GameWSHandler(gs *GameServer) http.HandlerFunc {
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
		if state.Game.GameOver {
			http.Error(w, "Game has already ended", http.StatusGone)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"game"},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			gs.Logger.Warnf("WebSocket accept error for game %s: %v", id, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != "game" {
			c.Close(BadSubprotocolError, "Client must use the 'game' subprotocol.")
			return
		}
		middleware.LogWebSocketConnect(gs.Logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		if err := writeEvent(ctx, c, GameEvent{Type: "game_state", Game: ptr(newGameForm(state, stateMessage(state.Game)))}); err != nil {
			middleware.LogWebSocketDisconnect(gs.Logger, r.RemoteAddr, r.URL.Path, err)
			return
		}

		err = readGameMessages(ctx, c, gs, state.Game.ID)
		middleware.LogWebSocketDisconnect(gs.Logger, r.RemoteAddr, r.URL.Path, err)
	}
}

// readGameMessages runs the read loop until the client leaves or the game ends.
func readGameMessages(ctx context.Context, c *websocket.Conn, gs *GameServer, gameID uuid.UUID) error {
	for {
		var msg GameMessage
		if err := wsjson.Read(ctx, c, &msg); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			return err
		}

		if msg.Type != "battle" {
			if err := writeEvent(ctx, c, GameEvent{Type: "error", Message: "unknown message type: " + msg.Type}); err != nil {
				return err
			}
			continue
		}

		state, err := gs.Battle(ctx, gameID)
		if err != nil {
			code := websocket.StatusCode(BattleFailedError)
			if errors.Is(err, models.ErrNotFound) {
				code = InvalidGameIDError
			}
			c.Close(code, "battle failed")
			return err
		}

		form := newGameForm(state, "")
		if err := writeEvent(ctx, c, GameEvent{Type: "battle_result", Game: &form}); err != nil {
			return err
		}
		if form.GameOver {
			c.Close(websocket.StatusNormalClosure, "game over")
			return nil
		}
	}
}

func writeEvent(ctx context.Context, c *websocket.Conn, ev GameEvent) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, c, ev)
}

func ptr[T any](v T) *T {
	return &v
}
