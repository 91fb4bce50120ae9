package hint

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tilesolver/board"
)

var ErrNotSolverServer = errors.New("peer is not a solver server")

// Client talks to a hint Server over one TCP connection. It is not safe
// for concurrent use.
type Client struct {
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder
}

// Dial connects to addr, retrying with backoff up to attempts times, and
// reads the server's greeting.
func Dial(ctx context.Context, addr string, attempts uint) (*Client, error) {
	var d net.Dialer
	var conn net.Conn
	err := retry.Do(
		func() error {
			var err error
			conn, err = d.DialContext(ctx, "tcp", addr)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(50*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			log.Debug().Err(err).Uint("n", n).Str("addr", addr).Msg("dial-failed-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
	if err != nil {
		return nil, err
	}
	c := &Client{
		conn: conn,
		enc:  json.NewEncoder(conn),
		dec:  json.NewDecoder(bufio.NewReader(conn)),
	}
	var hello Message
	if err := c.read(ctx, &hello); err != nil {
		conn.Close()
		return nil, err
	}
	if !strings.HasSuffix(hello.Msg, ServerName) {
		conn.Close()
		return nil, fmt.Errorf("%w: greeted with %q", ErrNotSolverServer, hello.Msg)
	}
	return c, nil
}

// RequestHint sends b and waits for the server's move.
func (c *Client) RequestHint(ctx context.Context, b board.Board, depth int) (board.Direction, error) {
	if err := c.write(ctx, NewHintRequest(b, depth)); err != nil {
		return board.NoDirection, err
	}
	var resp Message
	if err := c.read(ctx, &resp); err != nil {
		return board.NoDirection, err
	}
	if resp.Msg != MsgBestMove {
		return board.NoDirection, errors.New("unexpected reply: " + resp.Msg)
	}
	return board.DirectionFromCode(resp.Direction)
}

// Close says goodbye and closes the connection.
func (c *Client) Close() error {
	c.conn.SetWriteDeadline(time.Now().Add(time.Second))
	err := c.enc.Encode(Message{Msg: MsgExit})
	return errors.Join(err, c.conn.Close())
}

func (c *Client) write(ctx context.Context, m Message) error {
	c.setDeadline(ctx)
	return c.enc.Encode(m)
}

func (c *Client) read(ctx context.Context, m *Message) error {
	c.setDeadline(ctx)
	return c.dec.Decode(m)
}

func (c *Client) setDeadline(ctx context.Context) {
	dl, _ := ctx.Deadline()
	c.conn.SetDeadline(dl)
}
