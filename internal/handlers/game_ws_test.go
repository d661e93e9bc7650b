package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/jason-s-yu/war/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialGame(t *testing.T, ctx context.Context, srv *httptest.Server, id uuid.UUID, subprotocols ...string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/game/ws/" + id.String()
	c, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{Subprotocols: subprotocols})
	require.NoError(t, err)
	t.Cleanup(func() { c.CloseNow() })
	return c
}

func TestGameWebSocketPlaysToTheEnd(t *testing.T) {
	gs, store := newTestServer(t)
	srv := httptest.NewServer(NewRouter(gs, RouterOptions{}))
	defer srv.Close()

	u, err := gs.CreateUser(context.Background(), "alice", "")
	require.NoError(t, err)
	g := insertRiggedGame(t, store, u.ID, []string{"Q", "A"}, []string{"J", "2"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c := dialGame(t, ctx, srv, g.ID, "game")

	var ev GameEvent
	require.NoError(t, wsjson.Read(ctx, c, &ev))
	assert.Equal(t, "game_state", ev.Type)
	require.NotNil(t, ev.Game)
	assert.Equal(t, 2, ev.Game.UserCardCount)

	require.NoError(t, wsjson.Write(ctx, c, GameMessage{Type: "shuffle"}))
	require.NoError(t, wsjson.Read(ctx, c, &ev))
	assert.Equal(t, "error", ev.Type)

	require.NoError(t, wsjson.Write(ctx, c, GameMessage{Type: "battle"}))
	require.NoError(t, wsjson.Read(ctx, c, &ev))
	assert.Equal(t, "battle_result", ev.Type)
	assert.Equal(t, "Q", ev.Game.UserCard)
	assert.Equal(t, "J", ev.Game.BotCard)
	assert.False(t, ev.Game.GameOver)

	require.NoError(t, wsjson.Write(ctx, c, GameMessage{Type: "battle"}))
	require.NoError(t, wsjson.Read(ctx, c, &ev))
	assert.True(t, ev.Game.GameOver)
	assert.Equal(t, models.WinnerUser, ev.Game.Winner)

	err = wsjson.Read(ctx, c, &ev)
	assert.Equal(t, websocket.StatusNormalClosure, websocket.CloseStatus(err))
}

func TestGameWebSocketRequiresSubprotocol(t *testing.T) {
	gs, store := newTestServer(t)
	srv := httptest.NewServer(NewRouter(gs, RouterOptions{}))
	defer srv.Close()

	u, err := gs.CreateUser(context.Background(), "alice", "")
	require.NoError(t, err)
	g := insertRiggedGame(t, store, u.ID, []string{"A"}, []string{"2"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c := dialGame(t, ctx, srv, g.ID)

	var ev GameEvent
	err = wsjson.Read(ctx, c, &ev)
	assert.Equal(t, websocket.StatusCode(BadSubprotocolError), websocket.CloseStatus(err))
}

func TestGameWebSocketRejectsFinishedOrUnknownGames(t *testing.T) {
	gs, store := newTestServer(t)
	srv := httptest.NewServer(NewRouter(gs, RouterOptions{}))
	defer srv.Close()

	u, err := gs.CreateUser(context.Background(), "alice", "")
	require.NoError(t, err)
	g := insertRiggedGame(t, store, u.ID, []string{"A"}, []string{"2"})
	_, _, err = gs.Forfeit(context.Background(), g.ID)
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/game/ws/" + g.ID.String())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusGone, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/game/ws/" + uuid.NewString())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
