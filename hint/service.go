package hint

import (
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/domino14/tilesolver/board"
	"github.com/domino14/tilesolver/cache"
	"github.com/domino14/tilesolver/config"
	"github.com/domino14/tilesolver/minimax"
)

// Service answers hint requests. It knows nothing about connections, so
// the TCP server, the NATS responder and the lambda all share it.
type Service struct {
	maxDepth    int
	winningTile int
	cache       *cache.HintCache

	served atomic.Uint64
}

// NewService reads its limits from cfg. A zero cache fraction turns the
// cache off.
func NewService(cfg *config.Config) *Service {
	s := &Service{
		maxDepth:    cfg.MaxDepth(),
		winningTile: cfg.WinningTile(),
	}
	if f := cfg.CacheMemoryFraction(); f > 0 {
		s.cache = cache.New(f)
	}
	return s
}

// SetCache replaces the service's cache; nil disables caching.
func (s *Service) SetCache(c *cache.HintCache) {
	s.cache = c
}

func (s *Service) Served() uint64 {
	return s.served.Load()
}

// Hint finds the move for a client-supplied state. An invalid state is
// reported as an error alongside the default direction, so callers that
// only want a direction can ignore the error. A panic in the search is
// reported the same way.
func (s *Service) Hint(st State, depth int) (d board.Direction, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).
				Msg("hint-panicked")
			d, err = minimax.DefaultDirection, fmt.Errorf("hint failed: %v", r)
		}
	}()
	b, err := board.FromGrid(st.Board, st.Score)
	if err != nil {
		return minimax.DefaultDirection, fmt.Errorf("bad state: %w", err)
	}
	if s.winningTile > 0 {
		b = b.WithWinningTile(s.winningTile)
	}
	depth = max(0, min(depth, s.maxDepth))
	s.served.Add(1)

	var res minimax.Result
	if s.cache != nil {
		res, _ = s.cache.Load(b, depth, solve)
	} else {
		res = solve(b, depth)
	}
	if !res.Found() {
		return minimax.DefaultDirection, nil
	}
	return res.Direction, nil
}

func solve(b board.Board, depth int) minimax.Result {
	return minimax.NewSolver().Solve(b, depth)
}

// Handle answers one message. It returns false for messages that get no
// reply: anything but a getHint for our game.
func (s *Service) Handle(m Message) (Message, bool) {
	if m.Msg != MsgGetHint || m.Game != GameName {
		log.Debug().Str("msg", m.Msg).Str("game", m.Game).Msg("ignoring-message")
		return Message{}, false
	}
	var st State
	if m.State != nil {
		st = *m.State
	}
	d, err := s.Hint(st, m.Depth)
	if err != nil {
		log.Warn().Err(err).Msg("hint-for-bad-state")
	}
	log.Debug().Str("direction", d.String()).Int("depth", m.Depth).Msg("hint")
	return BestMove(d, m.Game, m.Depth), true
}

// HandleBytes is Handle for request/reply transports, where every request
// must be answered. Unreadable or ignored requests get the default move.
func (s *Service) HandleBytes(data []byte) Message {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		log.Warn().Err(err).Msg("unreadable-request")
		return BestMove(minimax.DefaultDirection, GameName, 0)
	}
	reply, ok := s.Handle(m)
	if !ok {
		return BestMove(minimax.DefaultDirection, m.Game, m.Depth)
	}
	return reply
}
