package chess

type EffectKind string

const (
	Stun        EffectKind = "Stun"
	Poison      EffectKind = "Poison"
	Heal        EffectKind = "Heal"
	AttackBuff  EffectKind = "AttackBuff"
	DefenseBuff EffectKind = "DefenseBuff"
)

// Effect is a timed modifier. Duration counts ticks.
type Effect struct {
	Kind      EffectKind `json:"kind" msgpack:"kind"`
	Duration  int        `json:"duration" msgpack:"duration"`
	Magnitude float64    `json:"magnitude" msgpack:"magnitude"`
}

// StatusEffects is the ordered effect list owned by one unit.
type StatusEffects []Effect

func (s *StatusEffects) Add(e Effect) {
	*s = append(*s, e)
}

// Count returns how many effects of kind k are present.
func (s StatusEffects) Count(k EffectKind) int {
	n := 0
	for _, e := range s {
		if e.Kind == k {
			n++
		}
	}
	return n
}

func (s StatusEffects) Has(k EffectKind) bool { return s.Count(k) > 0 }

// Clone returns a copy that shares no backing array with s.
func (s StatusEffects) Clone() StatusEffects {
	if s == nil {
		return StatusEffects{}
	}
	out := make(StatusEffects, len(s))
	copy(out, s)
	return out
}
