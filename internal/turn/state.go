package turn

import (
	"errors"
	"fmt"
)

// Phase is one step of a player's turn.
type Phase int

const (
	Preparation Phase = iota // shopping and placement
	Combat                   // units fight on their own
	Resolution               // damage and rewards are settled
)

var phaseNames = map[Phase]string{
	Preparation: "Preparation",
	Combat:      "Combat",
	Resolution:  "Resolution",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "Unknown"
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// State is the match-wide turn record. A match owns exactly one.
type State struct {
	Phase         Phase `json:"phase" msgpack:"phase"`
	CurrentPlayer int   `json:"current_player" msgpack:"current_player"`
	TotalPlayers  int   `json:"total_players" msgpack:"total_players"`
	TurnNumber    int   `json:"turn_number" msgpack:"turn_number"`
}

func NewState(players int) (*State, error) {
	if players < 1 {
		return nil, fmt.Errorf("turn state: need at least one player, got %d", players)
	}
	return &State{
		Phase:        Preparation,
		TotalPlayers: players,
		TurnNumber:   1,
	}, nil
}

// Advance moves to the next phase. Leaving Resolution hands the turn to the
// next player and bumps the turn number once every player has had one.
func (s *State) Advance() {
	switch s.Phase {
	case Preparation:
		s.Phase = Combat
	case Combat:
		s.Phase = Resolution
	case Resolution:
		s.Phase = Preparation
		s.CurrentPlayer = (s.CurrentPlayer + 1) % s.TotalPlayers
		if s.CurrentPlayer == 0 {
			s.TurnNumber++
		}
	}
}

// ErrNegativeDuration is reported when a phase or countdown is configured below zero.
var ErrNegativeDuration = errors.New("negative duration")

// Manager owns the phase timers. It never holds the State itself.
type Manager struct {
	preparation float64
	combat      float64
	resolution  float64
	elapsed     float64
}

// NewManager takes the length of each phase in seconds.
func NewManager(preparation, combat, resolution float64) (*Manager, error) {
	for i, d := range []float64{preparation, combat, resolution} {
		if d < 0 {
			return nil, fmt.Errorf("%s phase %.2fs: %w", Phase(i), d, ErrNegativeDuration)
		}
	}
	return &Manager{preparation: preparation, combat: combat, resolution: resolution}, nil
}

func (m *Manager) duration(p Phase) float64 {
	switch p {
	case Combat:
		return m.combat
	case Resolution:
		return m.resolution
	default:
		return m.preparation
	}
}

// Update accumulates dt and advances s when the current phase has run its
// course. It returns true when a transition happened. A nil state is ignored.
func (m *Manager) Update(dt float64, s *State) bool {
	if s == nil {
		return false
	}
	m.elapsed += dt
	if m.elapsed < m.duration(s.Phase) {
		return false
	}
	m.elapsed = 0
	s.Advance()
	return true
}

// Remaining is the time left in the current phase.
func (m *Manager) Remaining(s *State) float64 {
	if s == nil {
		return 0
	}
	return m.duration(s.Phase) - m.elapsed
}

func (m *Manager) Elapsed() float64 { return m.elapsed }
