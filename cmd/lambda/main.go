package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tilesolver/config"
	"github.com/domino14/tilesolver/hint"
)

var cfg *config.Config
var svc *hint.Service
var nc *nats.Conn

func HandleRequest(ctx context.Context, evt hint.LambdaEvent) (string, error) {
	logger := log.With().
		Str("requestID", evt.RequestID).
		Logger()

	d, err := svc.Hint(evt.State, evt.Depth)
	if err != nil {
		return "", err
	}
	logger.Info().Str("direction", d.String()).Int("depth", evt.Depth).Msg("hint")

	if evt.ReplyChannel != "" && nc != nil {
		data, err := json.Marshal(hint.BestMove(d, hint.GameName, evt.Depth))
		if err != nil {
			return "", err
		}
		logger.Info().Msg("hint-success-sending-via-nats")
		err = retry.Do(
			func() error {
				// We're just waiting for an acknowledgement. The actual
				// data doesn't matter.
				_, err := nc.Request(evt.ReplyChannel, data, 3*time.Second)
				return err
			},
			retry.Context(ctx),
			retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
				logger.Err(err).Uint("n", n).
					Msg("did-not-receive-ack-try-again")
				return retry.BackOffDelay(n, err, config)
			}),
		)
		if err != nil {
			logger.Err(err).Msg("hint-reply-failed")
		}
	}
	logger.Info().Msg("exiting-fn")
	return d.String(), nil
}

func main() {
	cfg = &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("bad-config")
	}
	log.Info().Interface("settings", cfg.AllSettings()).Msg("loaded-config")
	if cfg.Debug() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	svc = hint.NewService(cfg)

	if url := cfg.NatsURL(); url != "" {
		var err error
		nc, err = nats.Connect(url)
		if err != nil {
			log.Fatal().AnErr("natsConnectErr", err).Msg(":(")
		}
	}

	lambda.Start(HandleRequest)
}
