package main

import (
	"context"
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/tilesolver/board"
	"github.com/domino14/tilesolver/config"
	"github.com/domino14/tilesolver/hint"
)

func TestHandleRequest(t *testing.T) {
	is := is.New(t)
	dc := config.DefaultConfig()
	cfg = &dc
	svc = hint.NewService(cfg)

	evt := hint.LambdaEvent{
		RequestID: "foo",
		State: hint.State{
			Board: [][]int{{2, 4, 8, 16}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
			Score: 60,
		},
		Depth: 3,
	}
	ret, err := HandleRequest(context.Background(), evt)
	is.NoErr(err)
	is.Equal(ret, "Down")

	evt.State.Board = [][]int{{3}}
	_, err = HandleRequest(context.Background(), evt)
	is.True(errors.Is(err, board.ErrInvalidTile))
}
