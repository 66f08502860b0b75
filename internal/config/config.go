package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"autochess/internal/chess"
	"autochess/internal/turn"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure reported by Validate.
var ErrInvalid = errors.New("invalid config")

const (
	WireJSON    = "json"
	WireMsgpack = "msgpack"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Match    MatchConfig    `yaml:"match"`
	// Units replaces catalog entries. Each entry must be complete.
	Units []UnitDef `yaml:"units"`
	// Board lists the pieces spawned when the match is initialized.
	Board []PlacementDef `yaml:"board"`
}

type ServerConfig struct {
	Address    string `yaml:"address"`
	TickRate   int    `yaml:"tick_rate"`
	WireFormat string `yaml:"wire_format"`
	// JoinSecretHash is a bcrypt hash. Empty means anyone may join.
	JoinSecretHash string `yaml:"join_secret_hash"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type MatchConfig struct {
	Players            int            `yaml:"players"`
	SelectionCountdown float64        `yaml:"selection_countdown"`
	Phases             PhaseDurations `yaml:"phases"`
}

// PhaseDurations are in seconds.
type PhaseDurations struct {
	Preparation float64 `yaml:"preparation"`
	Combat      float64 `yaml:"combat"`
	Resolution  float64 `yaml:"resolution"`
}

type UnitDef struct {
	Archetype   string   `yaml:"archetype"`
	HP          int      `yaml:"hp"`
	Attack      int      `yaml:"attack"`
	Defense     int      `yaml:"defense"`
	MagicResist int      `yaml:"magic_resist"`
	AttackSpeed float64  `yaml:"attack_speed"`
	AttackRange float64  `yaml:"attack_range"`
	MaxMana     int      `yaml:"max_mana"`
	Skill       SkillDef `yaml:"skill"`
}

type SkillDef struct {
	Kind     string  `yaml:"kind"`
	Damage   int     `yaml:"damage"`
	Range    float64 `yaml:"range"`
	Duration *int    `yaml:"duration"`
	Cooldown int     `yaml:"cooldown"`
}

type PlacementDef struct {
	Archetype string `yaml:"archetype"`
	Owner     int    `yaml:"owner"`
	X         int    `yaml:"x"`
	Y         int    `yaml:"y"`
	Bench     bool   `yaml:"bench"`
}

// Default mirrors the stock four player match.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Address:    ":8080",
			TickRate:   60,
			WireFormat: WireJSON,
		},
		Log: LogConfig{Level: "info"},
		Match: MatchConfig{
			Players:            4,
			SelectionCountdown: turn.DefaultCountdown,
			Phases:             PhaseDurations{Preparation: 30, Combat: 60, Resolution: 5},
		},
	}
}

// Load reads a YAML file on top of Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv lets PORT and DATABASE_URL win over the file.
func (c *Config) ApplyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Address = ":" + strings.TrimPrefix(port, ":")
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		c.Database.URL = url
	}
}

func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Server.TickRate <= 0 {
		bad("server.tick_rate must be positive, got %d", c.Server.TickRate)
	}
	switch c.Server.WireFormat {
	case WireJSON, WireMsgpack:
	default:
		bad("server.wire_format %q", c.Server.WireFormat)
	}
	if c.Match.Players < 1 {
		bad("match.players must be at least 1, got %d", c.Match.Players)
	}
	if c.Match.SelectionCountdown < 0 {
		bad("match.selection_countdown is negative")
	}
	p := c.Match.Phases
	if p.Preparation < 0 || p.Combat < 0 || p.Resolution < 0 {
		bad("match.phases durations must not be negative")
	}
	for i, u := range c.Units {
		if _, err := u.stats(); err != nil {
			bad("units[%d]: %v", i, err)
		}
	}
	for i, b := range c.Board {
		if _, err := chess.ParseArchetype(b.Archetype); err != nil {
			bad("board[%d]: %v", i, err)
		}
		if b.Owner < 0 || b.Owner >= c.Match.Players {
			bad("board[%d]: owner %d out of range", i, b.Owner)
		}
	}
	return errors.Join(errs...)
}

func (u UnitDef) stats() (chess.Stats, error) {
	if _, err := chess.ParseArchetype(u.Archetype); err != nil {
		return chess.Stats{}, err
	}
	kind, err := chess.ParseSkillKind(u.Skill.Kind)
	if err != nil {
		return chess.Stats{}, err
	}
	if u.HP <= 0 {
		return chess.Stats{}, fmt.Errorf("hp must be positive")
	}
	if u.MaxMana < 0 || u.Skill.Cooldown < 0 {
		return chess.Stats{}, fmt.Errorf("max_mana and cooldown must not be negative")
	}
	if u.Attack < 0 || u.AttackRange < 0 || u.AttackSpeed < 0 || u.MagicResist < 0 {
		return chess.Stats{}, fmt.Errorf("attack, attack_range, attack_speed and magic_resist must not be negative")
	}
	if u.Defense < 0 || u.Defense > 100 {
		return chess.Stats{}, fmt.Errorf("defense must be within [0, 100], got %d", u.Defense)
	}
	if u.Skill.Damage < 0 || u.Skill.Range < 0 {
		return chess.Stats{}, fmt.Errorf("skill damage and range must not be negative")
	}
	if u.Skill.Duration != nil && *u.Skill.Duration < 0 {
		return chess.Stats{}, fmt.Errorf("skill duration must not be negative")
	}
	return chess.Stats{
		HP:          u.HP,
		MaxHP:       u.HP,
		Attack:      u.Attack,
		Defense:     u.Defense,
		MagicResist: u.MagicResist,
		AttackSpeed: u.AttackSpeed,
		AttackRange: u.AttackRange,
		MaxMana:     u.MaxMana,
		Skill: chess.Skill{
			Kind:     kind,
			Damage:   u.Skill.Damage,
			Range:    u.Skill.Range,
			Duration: u.Skill.Duration,
			Cooldown: u.Skill.Cooldown,
		},
	}, nil
}

// Catalog is the built-in catalog with any configured overrides applied.
func (c Config) Catalog() (chess.Catalog, error) {
	cat := chess.DefaultCatalog()
	for _, u := range c.Units {
		st, err := u.stats()
		if err != nil {
			return nil, fmt.Errorf("%w: unit %s: %v", ErrInvalid, u.Archetype, err)
		}
		cat[chess.Archetype(u.Archetype)] = st
	}
	return cat, nil
}
