package turn

import "fmt"

type Mode int

const (
	Selection Mode = iota
	InCombat
)

func (m Mode) String() string {
	if m == InCombat {
		return "Combat"
	}
	return "Selection"
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// DefaultCountdown is how long Selection lasts unless configured otherwise.
const DefaultCountdown = 10.0

// Gate holds the match in Selection until its countdown runs out.
type Gate struct {
	mode      Mode
	countdown float64

	// OnPair fires once, on the tick the gate opens.
	OnPair func()
}

func NewGate(countdown float64) (*Gate, error) {
	if countdown < 0 {
		return nil, fmt.Errorf("selection countdown %.2fs: %w", countdown, ErrNegativeDuration)
	}
	return &Gate{mode: Selection, countdown: countdown}, nil
}

func (g *Gate) Mode() Mode         { return g.mode }
func (g *Gate) Countdown() float64 { return g.countdown }

// Update counts down by dt. It returns opened=true on the single tick the
// gate switches to combat, and drive=true from that tick on, telling the
// caller to run the phase machine.
func (g *Gate) Update(dt float64) (opened, drive bool) {
	if g.mode == InCombat {
		return false, true
	}
	g.countdown -= dt
	if g.countdown > 0 {
		return false, false
	}
	g.mode = InCombat
	g.countdown = 0
	if g.OnPair != nil {
		g.OnPair()
	}
	return true, true
}
