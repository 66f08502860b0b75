package match

import (
	"encoding/json"
	"fmt"

	"autochess/internal/chess"
	"autochess/internal/turn"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

type UnitView struct {
	Handle  uint32 `json:"handle" msgpack:"handle"`
	Stunned bool   `json:"stunned" msgpack:"stunned"`
	chess.Unit
}

// Snapshot is a copy of the match taken between ticks. It shares nothing
// with the simulation, but one value is handed to every reader, so treat it
// as read-only.
type Snapshot struct {
	Type      string      `json:"type" msgpack:"type"`
	Tick      uint64      `json:"tick" msgpack:"tick"`
	Mode      turn.Mode   `json:"mode" msgpack:"mode"`
	Countdown float64     `json:"countdown" msgpack:"countdown"`
	Turn      *turn.State `json:"turn,omitempty" msgpack:"turn,omitempty"`
	Remaining float64     `json:"remaining" msgpack:"remaining"`
	Players   []Player    `json:"players" msgpack:"players"`
	Units     []UnitView  `json:"units" msgpack:"units"`
}

// Codec turns snapshots into websocket frames.
type Codec interface {
	Encode(v any) ([]byte, error)
	FrameType() int
}

type jsonCodec struct{}

func (jsonCodec) Encode(v any) ([]byte, error) { return json.Marshal(v) }
func (jsonCodec) FrameType() int               { return websocket.TextMessage }

type msgpackCodec struct{}

func (msgpackCodec) Encode(v any) ([]byte, error) { return msgpack.Marshal(v) }
func (msgpackCodec) FrameType() int               { return websocket.BinaryMessage }

// NewCodec resolves a wire format name ("json" or "msgpack").
func NewCodec(format string) (Codec, error) {
	switch format {
	case "", "json":
		return jsonCodec{}, nil
	case "msgpack":
		return msgpackCodec{}, nil
	}
	return nil, fmt.Errorf("unknown wire format %q", format)
}
