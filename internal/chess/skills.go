package chess

import "math"

const (
	whirlwindRadius  = 2.0
	multiShotRadius  = 3.0
	multiShotTargets = 3
	shieldBashRadius = 1.5
	shieldBashArmor  = 10
	stunDuration     = 2
	stunMagnitude    = 1.0
)

// Distance is the Euclidean distance between two grid cells.
func Distance(a, b Position) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// Within reports whether b lies inside the closed disc of radius r around a.
func Within(a, b Position, r float64) bool {
	return Distance(a, b) <= r
}

// Cast runs the effect of kind for caster. Casters off the board do nothing.
func Cast(a *Arena, caster Handle, kind SkillKind, damage int) {
	origin, ok := a.Position(caster)
	if !ok {
		return
	}
	switch kind {
	case WhirlwindSlash:
		whirlwindSlash(a, caster, origin, damage)
	case Fireball:
		fireball(a, caster, origin, damage)
	case MultiShot:
		multiShot(a, caster, origin, damage)
	case ShieldBash:
		shieldBash(a, caster, origin, damage)
	}
}

// othersWithin collects positioned units other than caster within r, in arena order.
func othersWithin(a *Arena, caster Handle, origin Position, r float64, limit int) []*Unit {
	var out []*Unit
	a.Each(func(h Handle, u *Unit) bool {
		if h == caster || u.Pos == nil {
			return true
		}
		if Within(origin, *u.Pos, r) {
			out = append(out, u)
		}
		return limit <= 0 || len(out) < limit
	})
	return out
}

func whirlwindSlash(a *Arena, caster Handle, origin Position, damage int) {
	for _, u := range othersWithin(a, caster, origin, whirlwindRadius, 0) {
		u.Stats.HP -= damage
	}
}

func fireball(a *Arena, caster Handle, origin Position, damage int) {
	var target *Unit
	best := math.MaxFloat64
	a.Each(func(h Handle, u *Unit) bool {
		if h == caster || u.Pos == nil {
			return true
		}
		// strict less-than keeps the earliest unit on ties
		if d := Distance(origin, *u.Pos); d < best {
			best = d
			target = u
		}
		return true
	})
	if target != nil {
		target.Stats.HP -= damage * 3 / 2
	}
}

func multiShot(a *Arena, caster Handle, origin Position, damage int) {
	for _, u := range othersWithin(a, caster, origin, multiShotRadius, multiShotTargets) {
		u.Stats.HP -= damage * 4 / 5
	}
}

func shieldBash(a *Arena, caster Handle, origin Position, damage int) {
	if self, ok := a.Get(caster); ok {
		self.Stats.Defense += shieldBashArmor
	}
	for _, u := range othersWithin(a, caster, origin, shieldBashRadius, 0) {
		u.Stats.HP -= damage
		u.Effects.Add(Effect{Kind: Stun, Duration: stunDuration, Magnitude: stunMagnitude})
	}
}
