package hint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tilesolver/board"
)

// ServeNATS answers hint requests published on subject until ctx is done.
// Every request gets a reply, see HandleBytes.
func (s *Service) ServeNATS(ctx context.Context, nc *nats.Conn, subject string) error {
	sub, err := nc.Subscribe(subject, func(m *nats.Msg) {
		log.Debug().Msgf("RECV: %d bytes", len(m.Data))
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).
					Msg("nats-handler-panicked")
				data, _ := json.Marshal(BestMove(DefaultDirection(), GameName, 0))
				m.Respond(data)
			}
		}()
		resp := s.HandleBytes(m.Data)
		data, err := json.Marshal(resp)
		if err != nil {
			m.Respond([]byte(err.Error()))
			return
		}
		m.Respond(data)
	})
	if err != nil {
		return err
	}
	if err := nc.Flush(); err != nil {
		return err
	}
	if err := nc.LastError(); err != nil {
		return err
	}
	log.Info().Str("subject", subject).Msg("nats-listening")

	<-ctx.Done()
	return sub.Drain()
}

// NATSClient asks a NATS hint responder for moves.
type NATSClient struct {
	nc      *nats.Conn
	subject string
	timeout time.Duration
}

func NewNATSClient(nc *nats.Conn, subject string, timeout time.Duration) *NATSClient {
	return &NATSClient{nc: nc, subject: subject, timeout: timeout}
}

func (c *NATSClient) RequestHint(b board.Board, depth int) (board.Direction, error) {
	data, err := json.Marshal(NewHintRequest(b, depth))
	if err != nil {
		return board.NoDirection, err
	}
	res, err := c.nc.Request(c.subject, data, c.timeout)
	if err != nil {
		if c.nc.LastError() != nil {
			log.Error().Msgf("%v for request", c.nc.LastError())
		}
		return board.NoDirection, err
	}
	log.Debug().Msgf("res: %v", string(res.Data))
	return parseBestMove(res.Data)
}

func parseBestMove(data []byte) (board.Direction, error) {
	var resp Message
	if err := json.Unmarshal(data, &resp); err != nil {
		return board.NoDirection, fmt.Errorf("bad reply %q: %w", data, err)
	}
	if resp.Msg != MsgBestMove {
		return board.NoDirection, errors.New("unexpected reply: " + resp.Msg)
	}
	return board.DirectionFromCode(resp.Direction)
}
