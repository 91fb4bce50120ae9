package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/tilesolver/config"
	"github.com/domino14/tilesolver/hint"
)

const (
	GracefulShutdownTimeout = 20 * time.Second
)

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("bad-config")
	}
	log.Info().Interface("settings", cfg.AllSettings()).Msg("loaded-config")

	if cfg.Debug() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		// We received an interrupt signal, shut down.
		log.Info().Msg("got quit signal...")
		cancel()
		<-time.After(GracefulShutdownTimeout)
		log.Error().Msg("graceful-shutdown-timed-out")
		os.Exit(1)
	}()

	svc := hint.NewService(cfg)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.Port())
		return hint.NewServer(svc, cfg.Workers()).ListenAndServe(ctx, addr)
	})

	if url := cfg.NatsURL(); url != "" {
		nc, err := nats.Connect(url)
		if err != nil {
			log.Fatal().AnErr("natsConnectErr", err).Msg(":(")
		}
		defer nc.Close()
		g.Go(func() error {
			return svc.ServeNATS(ctx, nc, cfg.NatsSubject())
		})
	}

	if err := g.Wait(); err != nil {
		log.Err(err).Msg("server-error")
		os.Exit(1)
	}
	log.Info().Uint64("hints-served", svc.Served()).Msg("server gracefully shutting down")
}
