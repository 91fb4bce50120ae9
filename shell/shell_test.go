package shell

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domino14/tilesolver/board"
	"github.com/domino14/tilesolver/config"
	"github.com/domino14/tilesolver/game"
	"github.com/domino14/tilesolver/hint"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func newTestController(t *testing.T) *ShellController {
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigAutoplayLog, filepath.Join(t.TempDir(), "autoplay.yaml"))
	return newController(&cfg)
}

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"autoplay -file /path/to/log.yaml",
			&shellcmd{"autoplay", nil, CmdOptions{"file": {"/path/to/log.yaml"}}},
			nil},
		{"hint 3 -remote 'localhost:9000' -noprune true",
			&shellcmd{"hint", []string{"3"},
				CmdOptions{"remote": {"localhost:9000"}, "noprune": {"true"}}},
			nil},
		{"row 2 . 4 \"8\" 16",
			&shellcmd{"row", []string{"2", ".", "4", "8", "16"}, CmdOptions{}},
			nil},
		{"score -5",
			&shellcmd{"score", []string{"-5"}, CmdOptions{}},
			nil},
		{"hint 3 -log",
			nil, errWrongOptionSyntax},
	}
	for _, tc := range cases {
		cmd, err := extractFields(tc.line)
		is.Equal(cmd, tc.expCmd)
		is.Equal(err, tc.expErr)
	}
}

func TestNewGame(t *testing.T) {
	is := is.New(t)
	sc := newTestController(t)
	out, err := sc.Execute("new -seed 5 -dim 3 -winning-tile 64")
	is.NoErr(err)
	is.True(strings.HasPrefix(out, "score: 0\n"))
	is.True(strings.HasSuffix(out, "[playing, winning tile 64]"))
	is.Equal(sc.game.Board().Dim(), 3)
	is.Equal(sc.game.Board().NumEmptyCells(), 9-game.StartingTiles)

	// Same seed, same game.
	first := sc.game.Board()
	_, err = sc.Execute("new -seed 5 -dim 3 -winning-tile 64")
	is.NoErr(err)
	is.True(sc.game.Board().Equal(first))

	_, err = sc.Execute("new -dim 1")
	is.True(err != nil)
}

func TestEditBoard(t *testing.T) {
	is := is.New(t)
	sc := newTestController(t)
	steps := []string{
		"new -dim 2",
		"row 1 2 2",
		"row 2 . .",
		"score 12",
		"spawn 2 1 4",
	}
	for _, s := range steps {
		_, err := sc.Execute(s)
		is.NoErr(err)
	}
	want := board.MustFromGrid([][]int{{2, 2}, {4, 0}}, 12)
	is.Equal(sc.game.Board().Grid(), want.Grid())
	is.Equal(sc.game.Board().Score(), 12)

	out, err := sc.Execute("move left")
	is.NoErr(err)
	is.True(strings.HasPrefix(out, "Left: +4\n"))
	is.Equal(sc.game.Board().Grid(), [][]int{{4, 0}, {4, 0}})
	is.Equal(sc.game.Board().Score(), 16)

	for _, bad := range []string{
		"spawn 1 1 2",   // occupied
		"spawn 3 1 2",   // off the board
		"spawn 1 2 6",   // not a tile
		"row 1 2 3",     // not a tile
		"row 1 2 2 2",   // too long
		"row 7 2 2",     // no such row
		"score -1",      // negative
		"move sideways", // no such direction
	} {
		_, err := sc.Execute(bad)
		is.True(err != nil)
	}
	_, err = sc.Execute("score -1")
	is.True(errors.Is(err, board.ErrNegativeScore))
}

func TestPlay(t *testing.T) {
	is := is.New(t)
	sc := newTestController(t)
	_, err := sc.Execute("load onlydown")
	is.NoErr(err)

	_, err = sc.Execute("play up")
	is.True(errors.Is(err, game.ErrIllegalMove))

	out, err := sc.Execute("play d")
	is.NoErr(err)
	is.True(strings.HasPrefix(out, "Down (+0), "))
	is.Equal(sc.game.Board().NumEmptyCells(), 11)

	_, err = sc.Execute("load stuck")
	is.NoErr(err)
	_, err = sc.Execute("play left")
	is.True(errors.Is(err, game.ErrGameOver))

	_, err = sc.Execute("load nosuchthing")
	is.True(err != nil)
}

func TestHint(t *testing.T) {
	sc := newTestController(t)
	_, err := sc.Execute("load onlydown")
	require.NoError(t, err)

	out, err := sc.Execute("hint 2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Best move: Down"), out)
	assert.Contains(t, out, "PV; val ")
	assert.Contains(t, out, "1: Down; ")

	noprune, err := sc.Execute("hint 2 -noprune true")
	require.NoError(t, err)
	assert.Equal(t, strings.SplitN(out, "\n", 2)[0], strings.SplitN(noprune, "\n", 2)[0])

	_, err = sc.Execute("load almostwon")
	require.NoError(t, err)
	logPath := filepath.Join(t.TempDir(), "search.log")
	out, err = sc.Execute("hint 1 -log " + logPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Best move: Right (score win)"), out)
	searchLog, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(searchLog), "- move: Right")
}

func TestRemoteHint(t *testing.T) {
	sc := newTestController(t)
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- hint.NewServer(hint.NewService(sc.cfg), 2).Serve(ctx, l)
	}()
	defer func() {
		cancel()
		<-done
	}()

	_, err = sc.Execute("load onlydown")
	require.NoError(t, err)
	out, err := sc.Execute("hint 2 -remote " + l.Addr().String())
	require.NoError(t, err)
	assert.Equal(t, "Best move (from "+l.Addr().String()+"): Down", out)
}

func TestAutoplayAndAnalyze(t *testing.T) {
	is := is.New(t)
	sc := newTestController(t)
	out, err := sc.Execute("autoplay -games 3 -threads 2 -depth 1 -dim 3 -seed 9 -maxturns 50")
	is.NoErr(err)
	is.True(strings.HasPrefix(out, "Games played: 3\n"))
	is.True(strings.HasSuffix(out, "Log: "+sc.cfg.AutoplayLog()))

	out, err = sc.Execute("analyze")
	is.NoErr(err)
	is.True(strings.HasPrefix(out, "Games played: 3\n"))

	_, err = sc.Execute("analyze /no/such/file.yaml")
	is.True(err != nil)
}

func TestHelpAndExit(t *testing.T) {
	is := is.New(t)
	sc := newTestController(t)
	out, err := sc.Execute("help")
	is.NoErr(err)
	is.True(strings.HasPrefix(out, "Commands:"))

	out, err = sc.Execute("help hint")
	is.NoErr(err)
	is.True(strings.Contains(out, "-remote"))

	out, err = sc.Execute("help tetris")
	is.NoErr(err)
	is.Equal(out, "There is no help text for the topic tetris")

	_, err = sc.Execute("exit")
	is.True(errors.Is(err, errExit))

	_, err = sc.Execute("frobnicate")
	is.True(err != nil)
}

func TestCompleter(t *testing.T) {
	is := is.New(t)
	c := &ShellCompleter{}

	line := []rune("au")
	matches, n := c.Do(line, len(line))
	is.Equal(n, 2)
	is.Equal(matches, [][]rune{[]rune("toplay")})

	line = []rune("load mid")
	matches, n = c.Do(line, len(line))
	is.Equal(n, 3)
	is.Equal(matches, [][]rune{[]rune("game")})

	line = []rune("hint 3 -re")
	matches, _ = c.Do(line, len(line))
	is.Equal(matches, [][]rune{[]rune("mote")})
}
