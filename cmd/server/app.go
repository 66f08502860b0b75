package main

import (
	"net/http"

	"autochess/internal/auth"
	"autochess/internal/chess"
	"autochess/internal/config"
	"autochess/internal/match"

	"github.com/gin-gonic/gin"
)

// newGame builds and seeds a match from configuration.
func newGame(cfg config.Config) (*match.Game, error) {
	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}
	codec, err := match.NewCodec(cfg.Server.WireFormat)
	if err != nil {
		return nil, err
	}
	g, err := match.NewGame(match.Options{
		TickRate:           cfg.Server.TickRate,
		SelectionCountdown: cfg.Match.SelectionCountdown,
		Preparation:        cfg.Match.Phases.Preparation,
		Combat:             cfg.Match.Phases.Combat,
		Resolution:         cfg.Match.Phases.Resolution,
		Catalog:            catalog,
		Codec:              codec,
	})
	if err != nil {
		return nil, err
	}
	if err := g.InitializeGame(cfg.Match.Players); err != nil {
		return nil, err
	}
	for _, b := range cfg.Board {
		a, err := chess.ParseArchetype(b.Archetype)
		if err != nil {
			return nil, err
		}
		var pos *chess.Position
		if !b.Bench {
			pos = &chess.Position{X: b.X, Y: b.Y}
		}
		if _, err := g.SpawnUnit(a, b.Owner, pos); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func newRouter(g *match.Game, checker *auth.JoinChecker, profiles match.Profiles) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": g.Mode()})
	})
	router.GET("/state", func(c *gin.Context) {
		c.JSON(http.StatusOK, g.Snapshot())
	})
	router.GET("/ws", gin.WrapF(match.NewWebsocketHandler(g, checker, profiles)))
	return router
}
