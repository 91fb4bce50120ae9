package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"lukechampine.com/frand"

	"github.com/domino14/tilesolver/automatic"
	"github.com/domino14/tilesolver/board"
	"github.com/domino14/tilesolver/game"
	"github.com/domino14/tilesolver/hint"
	"github.com/domino14/tilesolver/minimax"
)

const remoteTimeout = 30 * time.Second

type Response struct {
	message string
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) Uint64Default(key string, defaultU uint64) (uint64, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultU, nil
	}
	return strconv.ParseUint(v[0], 10, 64)
}

func (c CmdOptions) Bool(key string) bool {
	v := c[key]
	if len(v) == 0 {
		return false
	}
	return strings.ToLower(v[0]) == "true"
}

func msg(message string) *Response {
	return &Response{message: message}
}

var samples = map[string]board.SamplePosition{
	"densetwos": board.DenseTwos,
	"stuck":     board.Stuck,
	"almostwon": board.AlmostWon,
	"won":       board.Won,
	"midgame":   board.Midgame,
	"onlydown":  board.OnlyDown,
}

func sampleNames() []string {
	names := lo.Keys(samples)
	slices.Sort(names)
	return names
}

// setBoard replaces the position being played. Play continues from it
// with a fresh random source.
func (sc *ShellController) setBoard(b board.Board) {
	sc.game = game.FromBoard(b, nil)
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return usage("standard")
	}
	return usageTopic(cmd.args[0])
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	dim, err := cmd.options.IntDefault("dim", board.DefaultDim)
	if err != nil {
		return nil, err
	}
	if dim < 2 {
		return nil, errors.New("dim must be at least 2")
	}
	winning, err := cmd.options.IntDefault("winning-tile", sc.cfg.WinningTile())
	if err != nil {
		return nil, err
	}
	seed, err := cmd.options.Uint64Default("seed", 0)
	if err != nil {
		return nil, err
	}
	var rng *frand.RNG
	if seed != 0 {
		rng = game.SeededRNG(seed)
	}
	sc.game = game.NewGame(dim, winning, rng)
	return sc.show(cmd)
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	b := sc.game.Board()
	return msg(fmt.Sprintf("%s[%s, winning tile %d]", b.ToDisplayText(),
		sc.game.Playing(), b.WinningTile())), nil
}

func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("which sample? one of " + strings.Join(sampleNames(), ", "))
	}
	p, ok := samples[strings.ToLower(cmd.args[0])]
	if !ok {
		return nil, fmt.Errorf("no sample named %v", cmd.args[0])
	}
	b, err := board.FromPlaintext(string(p))
	if err != nil {
		return nil, err
	}
	sc.setBoard(b.WithWinningTile(sc.cfg.WinningTile()))
	return sc.show(cmd)
}

func parseCell(s string) (int, error) {
	if s == "." {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func (sc *ShellController) row(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) < 2 {
		return nil, errors.New("need a row number and its values")
	}
	n, err := strconv.Atoi(cmd.args[0])
	if err != nil {
		return nil, err
	}
	values := make([]int, 0, len(cmd.args)-1)
	for _, a := range cmd.args[1:] {
		v, err := parseCell(a)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	b, err := sc.game.Board().SetRow(n-1, values)
	if err != nil {
		return nil, err
	}
	sc.setBoard(b)
	return sc.show(cmd)
}

func (sc *ShellController) score(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("need a score")
	}
	s, err := strconv.Atoi(cmd.args[0])
	if err != nil {
		return nil, err
	}
	if s < 0 {
		return nil, board.ErrNegativeScore
	}
	sc.setBoard(sc.game.Board().WithScore(s))
	return sc.show(cmd)
}

func (sc *ShellController) spawn(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 3 {
		return nil, errors.New("need row, column and value")
	}
	var rcv [3]int
	for i, a := range cmd.args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, err
		}
		rcv[i] = v
	}
	r, c, v := rcv[0]-1, rcv[1]-1, rcv[2]
	b := sc.game.Board()
	if r < 0 || r >= b.Dim() || c < 0 || c >= b.Dim() {
		return nil, fmt.Errorf("cell %d,%d is off the board", r+1, c+1)
	}
	if b.At(r, c) != 0 {
		return nil, fmt.Errorf("cell %d,%d is not empty", r+1, c+1)
	}
	if v < 2 || v&(v-1) != 0 {
		return nil, fmt.Errorf("%w: %d", board.ErrInvalidTile, v)
	}
	sc.setBoard(b.SetEmptyCell(r, c, v))
	return sc.show(cmd)
}

func (sc *ShellController) direction(cmd *shellcmd) (board.Direction, error) {
	if len(cmd.args) != 1 {
		return board.NoDirection, errors.New("need a direction")
	}
	return board.ParseDirection(cmd.args[0])
}

func (sc *ShellController) move(cmd *shellcmd) (*Response, error) {
	d, err := sc.direction(cmd)
	if err != nil {
		return nil, err
	}
	nb, points := sc.game.Board().Move(d)
	sc.setBoard(nb)
	resp, _ := sc.show(cmd)
	return msg(fmt.Sprintf("%v: +%d\n%s", d, points, resp.message)), nil
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	d, err := sc.direction(cmd)
	if err != nil {
		return nil, err
	}
	t, err := sc.game.Play(d)
	if err != nil {
		return nil, err
	}
	resp, _ := sc.show(cmd)
	return msg(t.String() + "\n" + resp.message), nil
}

func (sc *ShellController) hint(cmd *shellcmd) (*Response, error) {
	depth := sc.cfg.DefaultDepth()
	if len(cmd.args) > 0 {
		var err error
		depth, err = strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
	}
	b := sc.game.Board()

	if addr := cmd.options.String("remote"); addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		c, err := hint.Dial(ctx, addr, 3)
		if err != nil {
			return nil, err
		}
		defer c.Close()
		d, err := c.RequestHint(ctx, b, depth)
		if err != nil {
			return nil, err
		}
		return msg(fmt.Sprintf("Best move (from %s): %v", addr, d)), nil
	}

	solver := minimax.NewSolver()
	solver.SetPruning(!cmd.options.Bool("noprune"))
	if path := cmd.options.String("log"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		solver.SetLogStream(f)
	}
	res := solver.Solve(b, depth)
	d := res.Direction
	if !res.Found() {
		d = minimax.DefaultDirection
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Best move: %v (score %s)\n", d, minimax.ScoreString(res.Score))
	fmt.Fprintf(&sb, "%s\n", solver.PrincipalVariation().NLBString())
	fmt.Fprintf(&sb, "Nodes: %d, leaves: %d, cut-offs: %d, time: %v",
		solver.Nodes(), solver.Leaves(), solver.Cutoffs(), solver.Elapsed())
	return msg(sb.String()), nil
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	opts := automatic.Options{WinningTile: sc.cfg.WinningTile()}
	var err error
	for _, o := range []struct {
		key  string
		dest *int
		def  int
	}{
		{"games", &opts.Games, 100},
		{"threads", &opts.Threads, 4},
		{"depth", &opts.Depth, sc.cfg.DefaultDepth()},
		{"dim", &opts.Dim, board.DefaultDim},
		{"maxturns", &opts.MaxTurns, 0},
	} {
		if *o.dest, err = cmd.options.IntDefault(o.key, o.def); err != nil {
			return nil, err
		}
	}
	if opts.Seed, err = cmd.options.Uint64Default("seed", 0); err != nil {
		return nil, err
	}
	path := cmd.options.String("file")
	if path == "" {
		path = sc.cfg.AutoplayLog()
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	logs, err := automatic.PlayGames(context.Background(), opts, f)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("file", path).Msg("autoplay-log-written")
	return msg(automatic.Summarize(logs).String() + "Log: " + path), nil
}

func (sc *ShellController) analyze(cmd *shellcmd) (*Response, error) {
	path := sc.cfg.AutoplayLog()
	if len(cmd.args) > 0 {
		path = cmd.args[0]
	}
	out, err := automatic.AnalyzeLogFile(path)
	if err != nil {
		return nil, err
	}
	return msg(out), nil
}
