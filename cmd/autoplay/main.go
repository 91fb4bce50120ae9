package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tilesolver/automatic"
	"github.com/domino14/tilesolver/board"
	"github.com/domino14/tilesolver/config"
)

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	if cfg.Debug() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f, err := os.Create(cfg.AutoplayLog())
	if err != nil {
		log.Fatal().Err(err).Msg("cannot-create-log")
	}
	defer f.Close()

	opts := automatic.Options{
		Games:       cfg.AutoplayGames(),
		Threads:     cfg.AutoplayThreads(),
		Dim:         board.DefaultDim,
		WinningTile: cfg.WinningTile(),
		Depth:       cfg.DefaultDepth(),
		Seed:        cfg.AutoplaySeed(),
	}
	logs, err := automatic.PlayGames(ctx, opts, f)
	if err != nil {
		log.Err(err).Msg("autoplay-failed")
	}
	fmt.Print(automatic.Summarize(logs))
	log.Info().Str("file", cfg.AutoplayLog()).Msg("game-log-written")
}
