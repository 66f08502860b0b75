package chess

type attack struct {
	attacker, target Handle
}

type cast struct {
	caster Handle
	kind   SkillKind
	damage int
}

// Report summarizes what happened during one Resolve call.
type Report struct {
	Attacks int
	Casts   int
}

const (
	manaOnHit    = 1
	manaOnAttack = 5
)

// AttackDamage is floor(attack * (1 - defense/100)), never negative.
func AttackDamage(attacker, defender Stats) int {
	dmg := attacker.Attack * (100 - defender.Defense) / 100
	if dmg < 0 {
		return 0
	}
	return dmg
}

// Resolve runs one tick of combat over every unit in the arena.
func Resolve(a *Arena) Report {
	var attacks []attack
	var casts []cast

	a.Each(func(h Handle, u *Unit) bool {
		if u.Pos == nil {
			return true
		}
		if u.Stats.CanCast() {
			casts = append(casts, cast{caster: h, kind: u.Stats.Skill.Kind, damage: u.Stats.Skill.Damage})
			return true
		}
		if t, ok := firstInRange(a, h, *u.Pos, u.Stats.AttackRange); ok {
			attacks = append(attacks, attack{attacker: h, target: t})
		}
		return true
	})

	for _, c := range casts {
		u, ok := a.Get(c.caster)
		if !ok {
			continue
		}
		u.Stats.SetMana(0)
		u.Stats.Skill.CurrentCooldown = u.Stats.Skill.Cooldown
	}

	for _, at := range attacks {
		attacker, ok := a.Get(at.attacker)
		if !ok {
			continue
		}
		target, ok := a.Get(at.target)
		if !ok {
			continue
		}
		target.Stats.HP -= AttackDamage(attacker.Stats, target.Stats)
		target.Stats.GainMana(manaOnHit)
		attacker.Stats.GainMana(manaOnAttack)
	}

	for _, c := range casts {
		Cast(a, c.caster, c.kind, c.damage)
	}

	a.Each(func(_ Handle, u *Unit) bool {
		if u.Stats.Skill.CurrentCooldown > 0 {
			u.Stats.Skill.CurrentCooldown--
		}
		return true
	})

	return Report{Attacks: len(attacks), Casts: len(casts)}
}

// firstInRange picks the first other positioned unit in arena order within r.
// First match in arena order wins; distance only gates.
func firstInRange(a *Arena, self Handle, origin Position, r float64) (Handle, bool) {
	var found Handle
	ok := false
	a.Each(func(h Handle, u *Unit) bool {
		if h == self || u.Pos == nil {
			return true
		}
		if Within(origin, *u.Pos, r) {
			found, ok = h, true
			return false
		}
		return true
	})
	return found, ok
}
