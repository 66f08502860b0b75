package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autochess/internal/auth"
	"autochess/internal/config"
	"autochess/internal/data"
	"autochess/internal/logging"
	"autochess/internal/match"

	"github.com/rs/zerolog/log"
)

func main() {
	hashSecret := flag.String("hash-secret", "", "print the bcrypt hash for a join secret and exit")
	flag.Parse()

	if *hashSecret != "" {
		h, err := auth.HashSecret(*hashSecret)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(h)
		return
	}

	configPath := os.Getenv("AUTOCHESS_CONFIG")
	if configPath == "" {
		configPath = "./autochess.yaml"
	}
	cfg, err := config.Load(configPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg = config.Default()
		err = nil
	}
	cfg.ApplyEnv()
	logging.Setup(cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		log.Fatal().Err(err).Str("config_path", configPath).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	game, err := newGame(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up match")
	}
	game.OnPairPlayers = func(players []match.Player) {
		log.Info().Int("players", len(players)).Msg("pairing players for combat")
	}

	checker, err := auth.NewJoinChecker(cfg.Server.JoinSecretHash)
	if err != nil {
		log.Fatal().Err(err).Msg("bad server.join_secret_hash")
	}

	var profiles match.Profiles
	if cfg.Database.URL != "" {
		store, err := data.NewStoreFromDB(ctx, cfg.Database.URL)
		if err != nil {
			log.Warn().Err(err).Msg("profile store unavailable, seats stay anonymous")
		} else {
			defer store.Close()
			profiles = store
		}
	}

	go game.StartLoop(ctx)

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: newRouter(game, checker, profiles),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("address", cfg.Server.Address).Int("tick_rate", cfg.Server.TickRate).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("ListenAndServe")
	}
}
