package hint

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Server serves hints over TCP, one JSON message per line. At most
// workers connections are served at once; further accepted clients wait
// for a free slot before they get their greeting.
type Server struct {
	svc     *Service
	workers int
}

func NewServer(svc *Service, workers int) *Server {
	if workers < 1 {
		workers = 1
	}
	return &Server{svc: svc, workers: workers}
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

// Serve accepts connections on l until ctx is done, then closes l and
// every open connection and waits for their handlers to return.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	log.Info().Str("addr", l.Addr().String()).Int("workers", s.workers).Msg("listening")

	stop := context.AfterFunc(ctx, func() {
		l.Close()
	})
	defer stop()

	var g errgroup.Group
	g.SetLimit(s.workers)

	var acceptErr error
	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, net.ErrClosed) {
				acceptErr = fmt.Errorf("accept: %w", err)
			}
			break
		}
		log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("accepted")
		// Blocks while every worker is busy.
		g.Go(func() error {
			s.serveConn(ctx, conn)
			return nil
		})
	}
	g.Wait()
	log.Info().Msg("server-stopped")
	return acceptErr
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	logger := log.With().
		Str("session", uuid.New().String()).
		Str("remote", conn.RemoteAddr().String()).
		Logger()

	defer conn.Close()
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Str("stack", string(debug.Stack())).
				Msg("connection-handler-panicked")
		}
	}()
	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()

	enc := json.NewEncoder(conn)
	dec := json.NewDecoder(bufio.NewReader(conn))
	if err := enc.Encode(greeting()); err != nil {
		logger.Err(err).Msg("greeting-failed")
		return
	}
	logger.Info().Msg("client-connected")

	for {
		var m Message
		err := dec.Decode(&m)
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			// The value was consumed, so the stream is still usable.
			if m.Msg != MsgGetHint || m.Game != GameName {
				logger.Debug().Err(err).Str("msg", m.Msg).Msg("ignoring-message")
				continue
			}
			logger.Warn().Err(err).Msg("hint-for-bad-state")
			if err := enc.Encode(BestMove(DefaultDirection(), m.Game, m.Depth)); err != nil {
				logger.Err(err).Msg("reply-failed")
				return
			}
			continue
		}
		if err != nil {
			logDecodeError(logger, err)
			return
		}
		if m.Msg == MsgExit {
			logger.Info().Msg("client-closed-connection")
			return
		}
		reply, ok := s.svc.Handle(m)
		if !ok {
			continue
		}
		if err := enc.Encode(reply); err != nil {
			logger.Err(err).Msg("reply-failed")
			return
		}
	}
}

func logDecodeError(logger zerolog.Logger, err error) {
	var syntaxErr *json.SyntaxError
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
		logger.Info().Msg("client-closed-connection")
	case errors.As(err, &syntaxErr):
		logger.Warn().Err(err).Msg("malformed-message")
	default:
		logger.Err(err).Msg("read-failed")
	}
}
