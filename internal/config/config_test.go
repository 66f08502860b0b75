package config

import (
	"os"
	"path/filepath"
	"testing"

	"autochess/internal/chess"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "autochess.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  wire_format: msgpack
match:
  players: 2
  phases:
    combat: 45
board:
  - {archetype: Warrior, owner: 0, x: 0, y: 0}
  - {archetype: Tank, owner: 1, bench: true}
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 60, cfg.Server.TickRate)
	assert.Equal(t, WireMsgpack, cfg.Server.WireFormat)
	assert.Equal(t, 2, cfg.Match.Players)
	assert.Equal(t, 10.0, cfg.Match.SelectionCountdown)
	assert.Equal(t, PhaseDurations{Preparation: 30, Combat: 45, Resolution: 5}, cfg.Match.Phases)
	require.Len(t, cfg.Board, 2)
	assert.True(t, cfg.Board[1].Bench)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadRejectsNegativeDurations(t *testing.T) {
	path := writeConfig(t, `
match:
  selection_countdown: -1
  phases:
    resolution: -5
`)
	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "selection_countdown")
	assert.Contains(t, err.Error(), "phases")
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"tick rate":   func(c *Config) { c.Server.TickRate = 0 },
		"wire format": func(c *Config) { c.Server.WireFormat = "xml" },
		"players":     func(c *Config) { c.Match.Players = 0 },
		"board owner": func(c *Config) { c.Board = []PlacementDef{{Archetype: "Mage", Owner: 4}} },
		"board arch":  func(c *Config) { c.Board = []PlacementDef{{Archetype: "Bard"}} },
		"unit skill": func(c *Config) {
			c.Units = []UnitDef{{Archetype: "Mage", HP: 10, Skill: SkillDef{Kind: "Meteor"}}}
		},
		"unit hp": func(c *Config) {
			c.Units = []UnitDef{{Archetype: "Mage", Skill: SkillDef{Kind: "Fireball"}}}
		},
		"unit attack": func(c *Config) {
			c.Units = []UnitDef{{Archetype: "Mage", HP: 10, Attack: -5, Skill: SkillDef{Kind: "Fireball"}}}
		},
		"unit defense low": func(c *Config) {
			c.Units = []UnitDef{{Archetype: "Mage", HP: 10, Defense: -50, Skill: SkillDef{Kind: "Fireball"}}}
		},
		"unit defense high": func(c *Config) {
			c.Units = []UnitDef{{Archetype: "Mage", HP: 10, Defense: 101, Skill: SkillDef{Kind: "Fireball"}}}
		},
		"unit attack range": func(c *Config) {
			c.Units = []UnitDef{{Archetype: "Mage", HP: 10, AttackRange: -1, Skill: SkillDef{Kind: "Fireball"}}}
		},
		"skill damage": func(c *Config) {
			c.Units = []UnitDef{{Archetype: "Mage", HP: 10, Skill: SkillDef{Kind: "Fireball", Damage: -30}}}
		},
		"skill range": func(c *Config) {
			c.Units = []UnitDef{{Archetype: "Mage", HP: 10, Skill: SkillDef{Kind: "Fireball", Range: -2}}}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestLoadRejectsNegativeUnitStats(t *testing.T) {
	path := writeConfig(t, `
units:
  - archetype: Warrior
    hp: 100
    attack: -5
    defense: -50
    attack_range: -1
    skill: {kind: WhirlwindSlash, damage: -30, range: 2}
`)
	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "units[0]")
}

func TestCatalogOverrides(t *testing.T) {
	dur := 3
	cfg := Default()
	cfg.Units = []UnitDef{{
		Archetype: "Mage", HP: 90, Attack: 12, Defense: 7, AttackRange: 2.5, MaxMana: 60,
		Skill: SkillDef{Kind: "Fireball", Damage: 70, Range: 5, Duration: &dur, Cooldown: 2},
	}}

	cat, err := cfg.Catalog()
	require.NoError(t, err)

	mage := cat[chess.Mage]
	assert.Equal(t, 90, mage.HP)
	assert.Equal(t, 90, mage.MaxHP)
	assert.Equal(t, 60, mage.MaxMana)
	assert.Equal(t, 70, mage.Skill.Damage)
	assert.Equal(t, 100, cat[chess.Warrior].HP, "untouched entries keep defaults")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/autochess")
	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "postgres://localhost/autochess", cfg.Database.URL)
}
