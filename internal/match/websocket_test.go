package match

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"autochess/internal/auth"
	"autochess/internal/data"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfiles struct {
	mu   sync.Mutex
	seen map[string]string
}

func (f *fakeProfiles) Profile(_ context.Context, id string) (data.Profile, error) {
	if id != "u_1" {
		return data.Profile{}, data.ErrNotFound
	}
	return data.Profile{ID: id, Nickname: "Alice", Level: 3}, nil
}

func (f *fakeProfiles) MarkSeen(_ context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen[id] = status
	return nil
}

func (f *fakeProfiles) status(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[id]
}

func startServer(t *testing.T, profiles Profiles, secretHash string) (*Game, *httptest.Server) {
	t.Helper()
	o := DefaultOptions()
	o.TickRate = 50
	o.SelectionCountdown = 3600
	g := newTestGame(t, o, 2)

	checker, err := auth.NewJoinChecker(secretHash)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go g.StartLoop(ctx)

	srv := httptest.NewServer(NewWebsocketHandler(g, checker, profiles))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return g, srv
}

func wsURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?" + query
}

func TestWebsocketStreamsSnapshotsAndQueuesCommands(t *testing.T) {
	g, srv := startServer(t, nil, "")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "player=player-0"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	kind, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, kind)

	var snap map[string]any
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, "state", snap["type"])
	assert.Len(t, snap["players"], 2)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"spawn","archetype":"Mage","x":1,"y":1}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"dance"}`)))

	assert.Eventually(t, func() bool {
		return g.PendingCommands("player-0") == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, g.PendingCommands("player-1"))
}

func TestWebsocketRejectsUnknownSeat(t *testing.T) {
	_, srv := startServer(t, nil, "")

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "player=player-9"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebsocketChecksJoinSecret(t *testing.T) {
	hash, err := auth.HashSecret("letmein")
	require.NoError(t, err)
	_, srv := startServer(t, nil, hash)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "player=player-0&secret=wrong"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "player=player-0&secret=letmein"), nil)
	require.NoError(t, err)
	conn.Close()
}

func TestWebsocketAttachesProfile(t *testing.T) {
	profiles := &fakeProfiles{seen: map[string]string{}}
	g, srv := startServer(t, profiles, "")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "player=player-1&userID=u_1"), nil)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return g.Snapshot().Players[1].Nickname == "Alice"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return profiles.status("u_1") == "online"
	}, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool {
		return profiles.status("u_1") == "offline"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebsocketClosedWhenLoopStops(t *testing.T) {
	o := DefaultOptions()
	o.TickRate = 50
	o.SelectionCountdown = 3600
	g := newTestGame(t, o, 1)
	checker, err := auth.NewJoinChecker("")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go g.StartLoop(ctx)
	srv := httptest.NewServer(NewWebsocketHandler(g, checker, nil))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "player=player-0"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err = conn.ReadMessage()
	require.NoError(t, err)

	cancel()
	<-g.Done()

	for {
		_, _, err = conn.ReadMessage()
		if err != nil {
			break
		}
	}
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}
