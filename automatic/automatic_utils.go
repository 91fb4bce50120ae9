package automatic

// Batch autoplay: many solver-driven games at once, logged as YAML.

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

var (
	GamesPlayed atomic.Int64
	IsPlaying   atomic.Int64
)

var ErrAlreadyPlaying = errors.New("games are already being played, please wait till complete")

// Options for a batch of games.
type Options struct {
	Games       int
	Threads     int
	Dim         int
	WinningTile int
	Depth       int
	// MaxTurns caps every game; 0 plays each one out.
	MaxTurns int
	// Seed makes the batch reproducible: game i is seeded with Seed+i.
	// Zero plays random games.
	Seed uint64
}

// PlayGames plays opts.Games games on opts.Threads goroutines, writes each
// finished game to logw as a YAML document and returns the logs in game
// order. Games cut short by ctx are not returned.
func PlayGames(ctx context.Context, opts Options, logw io.Writer) ([]GameLog, error) {
	if !IsPlaying.CompareAndSwap(0, 1) {
		return nil, ErrAlreadyPlaying
	}
	defer IsPlaying.Store(0)
	GamesPlayed.Store(0)

	log.Info().Int("games", opts.Games).Int("threads", opts.Threads).
		Int("depth", opts.Depth).Msg("starting-autoplay")

	logs := make([]GameLog, opts.Games)
	done := make([]bool, opts.Games)
	logChan := make(chan GameLog, 100)

	writerDone := make(chan error, 1)
	go func() {
		if logw == nil {
			for range logChan {
			}
			writerDone <- nil
			return
		}
		var werr error
		enc := yaml.NewEncoder(logw)
		for gl := range logChan {
			if werr == nil {
				werr = enc.Encode(gl)
			}
		}
		if werr == nil {
			werr = enc.Close()
		}
		writerDone <- werr
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Threads, 1))
	for i := 0; i < opts.Games; i++ {
		if gctx.Err() != nil {
			log.Info().Msg("got-stop-signal")
			break
		}
		i := i
		g.Go(func() error {
			var seed uint64
			if opts.Seed != 0 {
				seed = opts.Seed + uint64(i)
			}
			r := NewGameRunner(opts.Dim, opts.WinningTile, opts.Depth, seed)
			r.SetMaxTurns(opts.MaxTurns)
			gl, err := r.PlayFull(gctx)
			if err != nil {
				return err
			}
			logs[i] = gl
			done[i] = true
			logChan <- gl
			if n := GamesPlayed.Add(1); n%100 == 0 {
				log.Info().Int64("played", n).Msg("autoplay-progress")
			}
			return nil
		})
	}
	err := g.Wait()
	close(logChan)
	werr := <-writerDone

	finished := make([]GameLog, 0, opts.Games)
	for i, gl := range logs {
		if done[i] {
			finished = append(finished, gl)
		}
	}
	log.Info().Int("finished", len(finished)).Msg("autoplay-done")
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	return finished, errors.Join(err, werr)
}
