package match

import (
	"encoding/json"
	"fmt"
	"sync"
)

const (
	CmdSpawn  = "spawn"
	CmdPlace  = "place"
	CmdBench  = "bench"
	CmdRemove = "remove"
)

// Command is an inbound player request. It only takes effect when the next
// Preparation phase starts.
type Command struct {
	Type      string `json:"type"`
	Archetype string `json:"archetype,omitempty"`
	Unit      uint32 `json:"unit,omitempty"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Bench     bool   `json:"bench,omitempty"`
}

func ParseCommand(raw []byte) (Command, error) {
	var c Command
	if err := json.Unmarshal(raw, &c); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	switch c.Type {
	case CmdSpawn, CmdPlace, CmdBench, CmdRemove:
		return c, nil
	}
	return Command{}, fmt.Errorf("unknown command type %q", c.Type)
}

// CommandQueue buffers one player's commands between drains.
type CommandQueue struct {
	mu    sync.Mutex
	items []Command
	limit int
}

func NewCommandQueue(limit int) *CommandQueue {
	return &CommandQueue{limit: limit}
}

// Push appends c, returning false when the queue is full.
func (q *CommandQueue) Push(c Command) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.limit > 0 && len(q.items) >= q.limit {
		return false
	}
	q.items = append(q.items, c)
	return true
}

// Drain empties the queue and returns its contents in arrival order.
func (q *CommandQueue) Drain() []Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

func (q *CommandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
