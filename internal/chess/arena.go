package chess

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// ErrStaleHandle is returned when a handle no longer names a live unit.
var ErrStaleHandle = errors.New("stale unit handle")

// Handle addresses a unit in an Arena. Handles are never reused.
type Handle uint32

// Arena owns every live unit. Iteration follows spawn order, so two arenas
// built from the same sequence of calls enumerate identically.
type Arena struct {
	next  Handle
	order []Handle
	units map[Handle]*Unit
}

func NewArena() *Arena {
	return &Arena{
		next:  1,
		units: make(map[Handle]*Unit),
	}
}

// Spawn adds u and returns its handle.
func (a *Arena) Spawn(u *Unit) Handle {
	h := a.next
	a.next++
	if u.Effects == nil {
		u.Effects = StatusEffects{}
	}
	a.units[h] = u
	a.order = append(a.order, h)
	return h
}

// Remove deletes the unit. Removing a stale handle is logged and reported.
func (a *Arena) Remove(h Handle) error {
	if _, ok := a.units[h]; !ok {
		log.Warn().Uint32("unit", uint32(h)).Msg("remove of unknown unit skipped")
		return fmt.Errorf("remove %d: %w", h, ErrStaleHandle)
	}
	delete(a.units, h)
	for i, o := range a.order {
		if o == h {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	return nil
}

func (a *Arena) Get(h Handle) (*Unit, bool) {
	u, ok := a.units[h]
	return u, ok
}

// Position returns the board position of h, if it has one.
func (a *Arena) Position(h Handle) (Position, bool) {
	u, ok := a.units[h]
	if !ok || u.Pos == nil {
		return Position{}, false
	}
	return *u.Pos, true
}

// Place puts the unit on the board at p.
func (a *Arena) Place(h Handle, p Position) error {
	u, ok := a.units[h]
	if !ok {
		return fmt.Errorf("place %d: %w", h, ErrStaleHandle)
	}
	u.Pos = &Position{X: p.X, Y: p.Y}
	return nil
}

// Bench takes the unit off the board. Benched units neither act nor get hit.
func (a *Arena) Bench(h Handle) error {
	u, ok := a.units[h]
	if !ok {
		return fmt.Errorf("bench %d: %w", h, ErrStaleHandle)
	}
	u.Pos = nil
	return nil
}

func (a *Arena) Len() int { return len(a.order) }

// Each calls fn for every live unit in enumeration order until fn returns false.
func (a *Arena) Each(fn func(Handle, *Unit) bool) {
	for _, h := range a.order {
		if !fn(h, a.units[h]) {
			return
		}
	}
}
