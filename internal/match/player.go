package match

import (
	"fmt"

	"github.com/gorilla/websocket"
)

// Player is a seat in the match. Combat never touches it.
type Player struct {
	ID         int    `json:"id" msgpack:"id"`
	NameID     string `json:"name_id" msgpack:"name_id"`
	Nickname   string `json:"nickname,omitempty" msgpack:"nickname,omitempty"`
	Health     int    `json:"health" msgpack:"health"`
	Gold       int    `json:"gold" msgpack:"gold"`
	Level      int    `json:"level" msgpack:"level"`
	Experience int    `json:"experience" msgpack:"experience"`
}

func newPlayer(id int) *Player {
	return &Player{
		ID:     id,
		NameID: SeatKey(id),
		Health: 100,
		Level:  1,
	}
}

// SeatKey is the routing key clients use to claim seat i.
func SeatKey(i int) string { return fmt.Sprintf("player-%d", i) }

type frame struct {
	kind int
	data []byte
}

// Client is one websocket connection bound to a seat.
type Client struct {
	ID        string
	PlayerKey string
	UserID    string
	Conn      *websocket.Conn
	Send      chan frame
}
