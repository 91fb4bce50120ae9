package hint

import (
	"github.com/domino14/tilesolver/board"
	"github.com/domino14/tilesolver/minimax"
)

// Message kinds and fixed texts on the wire.
const (
	MsgGetHint  = "getHint"
	MsgExit     = "exit"
	MsgBestMove = "This is the best next move"
	// GameName is the only game this server gives hints for.
	GameName = "2048"
	// ServerName is announced to every client on connect.
	ServerName = "Solver server"
)

// State is a board snapshot as a client sends it.
type State struct {
	Board [][]int `json:"board"`
	Score int     `json:"score"`
}

// Message is the single envelope used in both directions. Requests fill
// State and Depth; hint replies fill Direction with a direction code.
type Message struct {
	Msg       string `json:"msg"`
	State     *State `json:"state,omitempty"`
	Direction int    `json:"direction,omitempty"`
	Game      string `json:"game,omitempty"`
	Depth     int    `json:"depth,omitempty"`
}

// NewHintRequest builds the getHint message for b.
func NewHintRequest(b board.Board, depth int) Message {
	return Message{
		Msg:   MsgGetHint,
		State: &State{Board: b.Grid(), Score: b.Score()},
		Game:  GameName,
		Depth: depth,
	}
}

func greeting() Message {
	return Message{Msg: "You are connected to " + ServerName}
}

// BestMove is the reply carrying d.
func BestMove(d board.Direction, game string, depth int) Message {
	return Message{Msg: MsgBestMove, Direction: d.Code(), Game: game, Depth: depth}
}

// DefaultDirection is the answer when no better move can be given.
func DefaultDirection() board.Direction {
	return minimax.DefaultDirection
}

// LambdaEvent is a hint request delivered by AWS Lambda. When
// ReplyChannel is set the answer is also published there over NATS.
type LambdaEvent struct {
	RequestID    string `json:"request_id"`
	State        State  `json:"state"`
	Depth        int    `json:"depth"`
	ReplyChannel string `json:"reply_channel,omitempty"`
}
