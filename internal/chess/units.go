package chess

import (
	"fmt"

	"github.com/google/uuid"
)

// Archetype is the class of a chess piece. The catalog is fixed.
type Archetype string

const (
	Warrior Archetype = "Warrior"
	Mage    Archetype = "Mage"
	Archer  Archetype = "Archer"
	Tank    Archetype = "Tank"
)

// Archetypes lists the catalog in a stable order.
var Archetypes = []Archetype{Warrior, Mage, Archer, Tank}

func ParseArchetype(s string) (Archetype, error) {
	for _, a := range Archetypes {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown archetype %q", s)
}

type SkillKind string

const (
	WhirlwindSlash SkillKind = "WhirlwindSlash"
	Fireball       SkillKind = "Fireball"
	MultiShot      SkillKind = "MultiShot"
	ShieldBash     SkillKind = "ShieldBash"
)

func ParseSkillKind(s string) (SkillKind, error) {
	switch SkillKind(s) {
	case WhirlwindSlash, Fireball, MultiShot, ShieldBash:
		return SkillKind(s), nil
	}
	return "", fmt.Errorf("unknown skill %q", s)
}

type Position struct {
	X int `json:"x" msgpack:"x"`
	Y int `json:"y" msgpack:"y"`
}

type Skill struct {
	Kind            SkillKind `json:"kind" msgpack:"kind"`
	Damage          int       `json:"damage" msgpack:"damage"`
	Range           float64   `json:"range" msgpack:"range"`
	Duration        *int      `json:"duration,omitempty" msgpack:"duration,omitempty"`
	Cooldown        int       `json:"cooldown" msgpack:"cooldown"`
	CurrentCooldown int       `json:"current_cooldown" msgpack:"current_cooldown"`
}

// Ready reports whether the skill is off cooldown.
func (s Skill) Ready() bool { return s.CurrentCooldown == 0 }

type Stats struct {
	HP          int     `json:"hp" msgpack:"hp"`
	MaxHP       int     `json:"max_hp" msgpack:"max_hp"`
	Attack      int     `json:"attack" msgpack:"attack"`
	Defense     int     `json:"defense" msgpack:"defense"`
	MagicResist int     `json:"magic_resist" msgpack:"magic_resist"`
	AttackSpeed float64 `json:"attack_speed" msgpack:"attack_speed"`
	AttackRange float64 `json:"attack_range" msgpack:"attack_range"`
	Mana        int     `json:"mana" msgpack:"mana"`
	MaxMana     int     `json:"max_mana" msgpack:"max_mana"`
	Skill       Skill   `json:"skill" msgpack:"skill"`
}

// GainMana adds n mana, clamped to [0, MaxMana].
func (s *Stats) GainMana(n int) {
	s.SetMana(s.Mana + n)
}

func (s *Stats) SetMana(v int) {
	switch {
	case v < 0:
		v = 0
	case v > s.MaxMana:
		v = s.MaxMana
	}
	s.Mana = v
}

// CanCast is true when mana is full and the skill is off cooldown.
func (s Stats) CanCast() bool {
	return s.Mana == s.MaxMana && s.Skill.Ready()
}

// Unit is a single piece on the board or the bench. A nil Pos means benched.
type Unit struct {
	ID        uuid.UUID     `json:"id" msgpack:"id"`
	Name      string        `json:"name" msgpack:"name"`
	Owner     int           `json:"owner" msgpack:"owner"`
	Level     int           `json:"level" msgpack:"level"`
	Archetype Archetype     `json:"archetype" msgpack:"archetype"`
	Pos       *Position     `json:"pos,omitempty" msgpack:"pos,omitempty"`
	Stats     Stats         `json:"stats" msgpack:"stats"`
	Effects   StatusEffects `json:"effects" msgpack:"effects"`
}

// Catalog maps each archetype to its base stats.
type Catalog map[Archetype]Stats

func intPtr(v int) *int { return &v }

// DefaultCatalog returns a fresh copy of the built-in stat lines.
func DefaultCatalog() Catalog {
	return Catalog{
		Warrior: {
			HP: 100, MaxHP: 100, Attack: 15, Defense: 10, MagicResist: 5,
			AttackSpeed: 1.0, AttackRange: 1.0, MaxMana: 100,
			Skill: Skill{Kind: WhirlwindSlash, Damage: 30, Range: 2.0, Cooldown: 3},
		},
		Mage: {
			HP: 70, MaxHP: 70, Attack: 8, Defense: 5, MagicResist: 15,
			AttackSpeed: 0.8, AttackRange: 3.0, MaxMana: 80,
			Skill: Skill{Kind: Fireball, Damage: 50, Range: 4.0, Cooldown: 4},
		},
		Archer: {
			HP: 80, MaxHP: 80, Attack: 20, Defense: 5, MagicResist: 5,
			AttackSpeed: 1.2, AttackRange: 4.0, MaxMana: 90,
			Skill: Skill{Kind: MultiShot, Damage: 25, Range: 3.0, Cooldown: 3},
		},
		Tank: {
			HP: 150, MaxHP: 150, Attack: 10, Defense: 20, MagicResist: 20,
			AttackSpeed: 0.7, AttackRange: 1.0, MaxMana: 120,
			Skill: Skill{Kind: ShieldBash, Damage: 15, Range: 1.5, Duration: intPtr(2), Cooldown: 5},
		},
	}
}

// NewUnit builds a level 1 unit from the catalog entry for a.
func (c Catalog) NewUnit(a Archetype, owner int) (*Unit, error) {
	stats, ok := c[a]
	if !ok {
		return nil, fmt.Errorf("no catalog entry for %s", a)
	}
	if stats.Skill.Duration != nil {
		stats.Skill.Duration = intPtr(*stats.Skill.Duration)
	}
	stats.Mana = 0
	stats.Skill.CurrentCooldown = 0
	return &Unit{
		ID:        uuid.New(),
		Name:      string(a),
		Owner:     owner,
		Level:     1,
		Archetype: a,
		Stats:     stats,
	}, nil
}

// Clone returns a deep copy safe to hand outside the simulation goroutine.
func (u *Unit) Clone() Unit {
	out := *u
	if u.Pos != nil {
		p := *u.Pos
		out.Pos = &p
	}
	if u.Stats.Skill.Duration != nil {
		out.Stats.Skill.Duration = intPtr(*u.Stats.Skill.Duration)
	}
	out.Effects = u.Effects.Clone()
	return out
}
