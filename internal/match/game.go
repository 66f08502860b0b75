package match

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"autochess/internal/chess"
	"autochess/internal/turn"

	"github.com/rs/zerolog/log"
)

const (
	DefaultTickRate   = 60
	commandQueueLimit = 64
)

var (
	ErrAlreadyInitialized = errors.New("match already initialized")
	ErrUnknownPlayer      = errors.New("unknown player")
	ErrQueueFull          = errors.New("command queue full")
)

// Options configures a Game. Zero values fall back to the stock match.
type Options struct {
	TickRate           int
	SelectionCountdown float64
	Preparation        float64
	Combat             float64
	Resolution         float64
	Catalog            chess.Catalog
	Codec              Codec
}

func DefaultOptions() Options {
	return Options{
		TickRate:           DefaultTickRate,
		SelectionCountdown: turn.DefaultCountdown,
		Preparation:        30,
		Combat:             60,
		Resolution:         5,
		Catalog:            chess.DefaultCatalog(),
		Codec:              jsonCodec{},
	}
}

// Game is the simulation root. Every field below mu is owned by Tick.
type Game struct {
	mu       sync.RWMutex
	arena    *chess.Arena
	catalog  chess.Catalog
	players  []*Player
	queues   map[string]*CommandQueue
	state    *turn.State
	phases   *turn.Manager
	gate     *turn.Gate
	ticks    uint64
	last     Snapshot
	tickRate int
	codec    Codec

	clientsMu  sync.Mutex
	clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	// OnPairPlayers receives a copy of the seats once, when selection ends.
	// It runs on its own goroutine.
	OnPairPlayers func(players []Player)
}

func NewGame(opts Options) (*Game, error) {
	if opts.TickRate <= 0 {
		return nil, fmt.Errorf("tick rate must be positive, got %d", opts.TickRate)
	}
	phases, err := turn.NewManager(opts.Preparation, opts.Combat, opts.Resolution)
	if err != nil {
		return nil, err
	}
	gate, err := turn.NewGate(opts.SelectionCountdown)
	if err != nil {
		return nil, err
	}
	if opts.Catalog == nil {
		opts.Catalog = chess.DefaultCatalog()
	}
	if opts.Codec == nil {
		opts.Codec = jsonCodec{}
	}
	g := &Game{
		arena:      chess.NewArena(),
		catalog:    opts.Catalog,
		queues:     make(map[string]*CommandQueue),
		phases:     phases,
		gate:       gate,
		tickRate:   opts.TickRate,
		codec:      opts.Codec,
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
	gate.OnPair = g.pairPlayers
	g.last = g.buildSnapshot()
	return g, nil
}

// InitializeGame creates the turn record and the player seats. It may only
// run once per match.
func (g *Game) InitializeGame(numPlayers int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != nil {
		return ErrAlreadyInitialized
	}
	st, err := turn.NewState(numPlayers)
	if err != nil {
		return err
	}
	g.state = st
	for i := 0; i < numPlayers; i++ {
		p := newPlayer(i)
		g.players = append(g.players, p)
		g.queues[p.NameID] = NewCommandQueue(commandQueueLimit)
	}
	g.last = g.buildSnapshot()
	log.Info().Int("players", numPlayers).Msg("match initialized")
	return nil
}

// SpawnUnit puts a fresh catalog unit into the arena. A nil pos benches it.
func (g *Game) SpawnUnit(a chess.Archetype, owner int, pos *chess.Position) (chess.Handle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.spawnLocked(a, owner, pos)
}

func (g *Game) spawnLocked(a chess.Archetype, owner int, pos *chess.Position) (chess.Handle, error) {
	u, err := g.catalog.NewUnit(a, owner)
	if err != nil {
		return 0, err
	}
	if pos != nil {
		u.Pos = &chess.Position{X: pos.X, Y: pos.Y}
	}
	h := g.arena.Spawn(u)
	log.Debug().Uint32("unit", uint32(h)).Str("archetype", string(a)).Int("owner", owner).Msg("unit spawned")
	return h, nil
}

func (g *Game) RemoveUnit(h chess.Handle) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.arena.Remove(h)
}

// Unit returns a copy of the unit behind h.
func (g *Game) Unit(h chess.Handle) (chess.Unit, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	u, ok := g.arena.Get(h)
	if !ok {
		return chess.Unit{}, false
	}
	return u.Clone(), true
}

// TurnState returns a copy of the turn record, or false before InitializeGame.
func (g *Game) TurnState() (turn.State, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.state == nil {
		return turn.State{}, false
	}
	return *g.state, true
}

func (g *Game) Mode() turn.Mode {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.gate.Mode()
}

func (g *Game) HasPlayer(key string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.queues[key]
	return ok
}

func (g *Game) SetNickname(key, nickname string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range g.players {
		if p.NameID == key {
			p.Nickname = nickname
			return
		}
	}
}

// Enqueue buffers a command for the player's next Preparation phase.
func (g *Game) Enqueue(key string, c Command) error {
	g.mu.RLock()
	q, ok := g.queues[key]
	g.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, key)
	}
	if !q.Push(c) {
		return fmt.Errorf("%w: %s", ErrQueueFull, key)
	}
	return nil
}

// PendingCommands reports how many commands wait for the player's next Preparation.
func (g *Game) PendingCommands(key string) int {
	g.mu.RLock()
	q, ok := g.queues[key]
	g.mu.RUnlock()
	if !ok {
		return 0
	}
	return q.Len()
}

// Tick advances the match by dt seconds and returns the resulting snapshot.
func (g *Game) Tick(dt float64) Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	prepStarted := false
	opened, drive := g.gate.Update(dt)
	if opened {
		log.Info().Msg("selection over, combat mode")
		prepStarted = g.state != nil && g.state.Phase == turn.Preparation
	}
	if drive && g.phases.Update(dt, g.state) {
		log.Info().
			Stringer("phase", g.state.Phase).
			Int("player", g.state.CurrentPlayer).
			Int("turn", g.state.TurnNumber).
			Msg("phase advanced")
		prepStarted = prepStarted || g.state.Phase == turn.Preparation
	}
	if prepStarted {
		g.drainCommands()
	}

	report := chess.Resolve(g.arena)
	if report.Attacks > 0 || report.Casts > 0 {
		log.Debug().Uint64("tick", g.ticks).Int("attacks", report.Attacks).Int("casts", report.Casts).Msg("combat resolved")
	}

	g.ticks++
	g.last = g.buildSnapshot()
	return g.last
}

// Snapshot returns the state published by the most recent tick.
func (g *Game) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.last
}

func (g *Game) buildSnapshot() Snapshot {
	s := Snapshot{
		Type:      "state",
		Tick:      g.ticks,
		Mode:      g.gate.Mode(),
		Countdown: g.gate.Countdown(),
		Players:   make([]Player, 0, len(g.players)),
		Units:     make([]UnitView, 0, g.arena.Len()),
	}
	if g.state != nil {
		st := *g.state
		s.Turn = &st
		s.Remaining = g.phases.Remaining(g.state)
	}
	for _, p := range g.players {
		s.Players = append(s.Players, *p)
	}
	g.arena.Each(func(h chess.Handle, u *chess.Unit) bool {
		s.Units = append(s.Units, UnitView{Handle: uint32(h), Stunned: u.Effects.Has(chess.Stun), Unit: u.Clone()})
		return true
	})
	return s
}

func (g *Game) drainCommands() {
	for _, p := range g.players {
		for _, c := range g.queues[p.NameID].Drain() {
			if err := g.apply(p.ID, c); err != nil {
				log.Warn().Err(err).Str("player", p.NameID).Str("command", c.Type).Msg("command skipped")
			}
		}
	}
}

func (g *Game) apply(owner int, c Command) error {
	if c.Type == CmdSpawn {
		a, err := chess.ParseArchetype(c.Archetype)
		if err != nil {
			return err
		}
		var pos *chess.Position
		if !c.Bench {
			pos = &chess.Position{X: c.X, Y: c.Y}
		}
		_, err = g.spawnLocked(a, owner, pos)
		return err
	}

	h := chess.Handle(c.Unit)
	u, ok := g.arena.Get(h)
	if !ok {
		return fmt.Errorf("%s %d: %w", c.Type, h, chess.ErrStaleHandle)
	}
	if u.Owner != owner {
		return fmt.Errorf("%s %d: unit belongs to player %d", c.Type, h, u.Owner)
	}
	switch c.Type {
	case CmdPlace:
		return g.arena.Place(h, chess.Position{X: c.X, Y: c.Y})
	case CmdBench:
		return g.arena.Bench(h)
	case CmdRemove:
		return g.arena.Remove(h)
	}
	return fmt.Errorf("unknown command type %q", c.Type)
}

func (g *Game) pairPlayers() {
	seats := make([]Player, 0, len(g.players))
	for _, p := range g.players {
		seats = append(seats, *p)
	}
	if g.OnPairPlayers == nil {
		log.Info().Int("players", len(seats)).Msg("pairing hook not set")
		return
	}
	go g.OnPairPlayers(seats)
}

// StartLoop ticks at the configured rate and broadcasts every snapshot until
// ctx is cancelled.
func (g *Game) StartLoop(ctx context.Context) {
	defer g.stopOnce.Do(func() { close(g.done) })
	go g.handleConnections(ctx)
	ticker := time.NewTicker(time.Second / time.Duration(g.tickRate))
	defer ticker.Stop()
	dt := 1.0 / float64(g.tickRate)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Broadcast(g.Tick(dt))
		}
	}
}

func (g *Game) handleConnections(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			g.closeClients()
			return
		case c := <-g.Register:
			g.clientsMu.Lock()
			g.clients[c] = true
			g.clientsMu.Unlock()
			log.Info().Str("client", c.ID).Str("player", c.PlayerKey).Msg("client joined")
		case c := <-g.Unregister:
			g.clientsMu.Lock()
			if g.clients[c] {
				delete(g.clients, c)
				close(c.Send)
			}
			g.clientsMu.Unlock()
			log.Info().Str("client", c.ID).Str("player", c.PlayerKey).Msg("client left")
		}
	}
}

// closeClients hangs up every connected client so its write pump can send a close frame.
func (g *Game) closeClients() {
	g.clientsMu.Lock()
	defer g.clientsMu.Unlock()
	for c := range g.clients {
		delete(g.clients, c)
		close(c.Send)
	}
	log.Info().Msg("match loop stopped, clients disconnected")
}

// Done is closed once the loop has stopped.
func (g *Game) Done() <-chan struct{} { return g.done }

// Broadcast encodes s once and queues it for every client. Slow clients are dropped.
func (g *Game) Broadcast(s Snapshot) {
	data, err := g.codec.Encode(s)
	if err != nil {
		log.Error().Err(err).Msg("encode snapshot")
		return
	}
	f := frame{kind: g.codec.FrameType(), data: data}

	g.clientsMu.Lock()
	defer g.clientsMu.Unlock()
	for c := range g.clients {
		select {
		case c.Send <- f:
		default:
			close(c.Send)
			delete(g.clients, c)
			log.Warn().Str("client", c.ID).Msg("client too slow, dropped")
		}
	}
}
