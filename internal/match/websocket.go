package match

import (
	"context"
	"errors"
	"net/http"
	"time"

	"autochess/internal/auth"
	"autochess/internal/data"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Profiles is the optional profile lookup used to label seats.
type Profiles interface {
	Profile(ctx context.Context, id string) (data.Profile, error)
	MarkSeen(ctx context.Context, id, status string) error
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const profileTimeout = 2 * time.Second

// NewWebsocketHandler binds each connection to the seat named by its player key.
// profiles may be nil.
func NewWebsocketHandler(g *Game, checker *auth.JoinChecker, profiles Profiles) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := checker.Authorize(r)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, auth.ErrBadSecret) {
				status = http.StatusUnauthorized
			}
			http.Error(w, err.Error(), status)
			return
		}
		if !g.HasPlayer(key) {
			http.Error(w, "unknown player", http.StatusNotFound)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		c := &Client{
			ID:        "c-" + uuid.NewString()[:8],
			PlayerKey: key,
			UserID:    auth.ReadUserID(r),
			Conn:      conn,
			Send:      make(chan frame, 256),
		}
		if profiles != nil && c.UserID != "" {
			attachProfile(r.Context(), g, profiles, c)
		}

		select {
		case g.Register <- c:
		case <-g.Done():
			conn.Close()
			return
		}
		go writePump(c)
		go readPump(c, g, profiles)
	}
}

func attachProfile(ctx context.Context, g *Game, profiles Profiles, c *Client) {
	ctx, cancel := context.WithTimeout(ctx, profileTimeout)
	defer cancel()
	p, err := profiles.Profile(ctx, c.UserID)
	if err != nil {
		log.Warn().Err(err).Str("user", c.UserID).Msg("profile lookup failed")
		return
	}
	g.SetNickname(c.PlayerKey, p.Nickname)
	if err := profiles.MarkSeen(ctx, c.UserID, "online"); err != nil {
		log.Warn().Err(err).Str("user", c.UserID).Msg("presence update failed")
	}
}

func readPump(c *Client, g *Game, profiles Profiles) {
	defer func() {
		select {
		case g.Unregister <- c:
		case <-g.Done():
		}
		c.Conn.Close()
		if profiles != nil && c.UserID != "" {
			ctx, cancel := context.WithTimeout(context.Background(), profileTimeout)
			defer cancel()
			_ = profiles.MarkSeen(ctx, c.UserID, "offline")
		}
	}()

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}
		cmd, err := ParseCommand(message)
		if err != nil {
			log.Debug().Err(err).Str("player", c.PlayerKey).Msg("bad command")
			continue
		}
		if err := g.Enqueue(c.PlayerKey, cmd); err != nil {
			log.Warn().Err(err).Str("player", c.PlayerKey).Msg("command dropped")
		}
	}
}

func writePump(c *Client) {
	defer c.Conn.Close()
	for f := range c.Send {
		if err := c.Conn.WriteMessage(f.kind, f.data); err != nil {
			return
		}
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "match closed")
	_ = c.Conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
