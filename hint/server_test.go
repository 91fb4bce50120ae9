package hint

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domino14/tilesolver/board"
)

type testServer struct {
	addr   string
	cancel context.CancelFunc
	done   chan error
}

func startServer(t *testing.T, workers int) *testServer {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	ts := &testServer{addr: l.Addr().String(), cancel: cancel, done: make(chan error, 1)}
	go func() {
		ts.done <- NewServer(newTestService(), workers).Serve(ctx, l)
	}()
	t.Cleanup(func() {
		cancel()
		<-ts.done
	})
	return ts
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// rawConn speaks the line protocol by hand.
type rawConn struct {
	net.Conn
	lines *bufio.Scanner
}

func dialRaw(t *testing.T, addr string) *rawConn {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &rawConn{Conn: conn, lines: bufio.NewScanner(conn)}
}

func (r *rawConn) send(t *testing.T, line string) {
	t.Helper()
	_, err := io.WriteString(r, line+"\n")
	require.NoError(t, err)
}

func (r *rawConn) recv(t *testing.T, timeout time.Duration) (Message, error) {
	t.Helper()
	r.SetReadDeadline(time.Now().Add(timeout))
	if !r.lines.Scan() {
		err := r.lines.Err()
		if err == nil {
			err = io.EOF
		}
		return Message{}, err
	}
	var m Message
	require.NoError(t, json.Unmarshal(r.lines.Bytes(), &m))
	return m, nil
}

func TestClientRequestHint(t *testing.T) {
	is := is.New(t)
	ts := startServer(t, 2)
	ctx := testContext(t)

	c, err := Dial(ctx, ts.addr, 3)
	is.NoErr(err)
	d, err := c.RequestHint(ctx, board.OnlyDown.MustLoad(), 2)
	is.NoErr(err)
	is.Equal(d, board.Down)

	// The connection stays open for more requests.
	d, err = c.RequestHint(ctx, board.AlmostWon.MustLoad(), 1)
	is.NoErr(err)
	is.Equal(d, board.Right)
	is.NoErr(c.Close())
}

func TestGreetingAndIgnoredMessages(t *testing.T) {
	ts := startServer(t, 2)
	rc := dialRaw(t, ts.addr)

	hello, err := rc.recv(t, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "You are connected to Solver server", hello.Msg)

	rc.send(t, `{"msg":"hello"}`)
	rc.send(t, `{"msg":"ping","depth":"x"}`)
	rc.send(t, `{"msg":"getHint","game":"chess","state":{"board":"oops"},"depth":1}`)
	rc.send(t, `{"msg":"getHint","game":"chess","state":{"board":[[2,0],[0,0]],"score":0},"depth":1}`)
	rc.send(t, `{"msg":"getHint","game":"2048","state":{"board":[[2,4,8,16],[0,0,0,0],[0,0,0,0],[0,0,0,0]],"score":60},"depth":2}`)

	// Only the last message is answered.
	reply, err := rc.recv(t, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, MsgBestMove, reply.Msg)
	assert.Equal(t, board.CodeDown, reply.Direction)
	assert.Equal(t, "2048", reply.Game)
	assert.Equal(t, 2, reply.Depth)
}

func TestMalformedStateGetsDefault(t *testing.T) {
	ts := startServer(t, 2)
	rc := dialRaw(t, ts.addr)
	_, err := rc.recv(t, 2*time.Second)
	require.NoError(t, err)

	rc.send(t, `{"msg":"getHint","game":"2048","state":{"board":[[3,0],[0,0]],"score":0},"depth":2}`)
	reply, err := rc.recv(t, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, board.CodeUp, reply.Direction)

	rc.send(t, `{"msg":"getHint","game":"2048","state":{"board":"oops","score":0},"depth":2}`)
	reply, err = rc.recv(t, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, board.CodeUp, reply.Direction)

	rc.send(t, `{"msg":"getHint","game":"2048","state":{"board":[[4294967296,0,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,0]],"score":0},"depth":2}`)
	reply, err = rc.recv(t, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, board.CodeUp, reply.Direction)

	// Still serving after all of them.
	rc.send(t, `{"msg":"getHint","game":"2048","state":{"board":[[2,4,8,16],[0,0,0,0],[0,0,0,0],[0,0,0,0]],"score":60},"depth":2}`)
	reply, err = rc.recv(t, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, board.CodeDown, reply.Direction)
}

func TestExitClosesConnection(t *testing.T) {
	ts := startServer(t, 2)
	rc := dialRaw(t, ts.addr)
	_, err := rc.recv(t, 2*time.Second)
	require.NoError(t, err)

	rc.send(t, `{"msg":"exit"}`)
	_, err = rc.recv(t, 2*time.Second)
	assert.ErrorIs(t, err, io.EOF)
}

func TestWorkerLimit(t *testing.T) {
	ts := startServer(t, 1)
	ctx := testContext(t)

	first, err := Dial(ctx, ts.addr, 3)
	require.NoError(t, err)

	// The kernel accepts the second connection but no worker is free to
	// greet it.
	second := dialRaw(t, ts.addr)
	_, err = second.recv(t, 300*time.Millisecond)
	var netErr net.Error
	require.True(t, errors.As(err, &netErr) && netErr.Timeout(), "expected timeout, got %v", err)

	require.NoError(t, first.Close())
	// A timed out Scanner is done for; read the greeting with a fresh one.
	second.lines = bufio.NewScanner(second.Conn)
	hello, err := second.recv(t, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "You are connected to Solver server", hello.Msg)
}

func TestShutdownClosesClients(t *testing.T) {
	is := is.New(t)
	ts := startServer(t, 2)
	rc := dialRaw(t, ts.addr)
	_, err := rc.recv(t, 2*time.Second)
	is.NoErr(err)

	ts.cancel()
	select {
	case err := <-ts.done:
		is.NoErr(err)
		ts.done <- nil // for Cleanup
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	_, err = rc.recv(t, 2*time.Second)
	is.True(err != nil)
}

func TestDialRetriesThenFails(t *testing.T) {
	is := is.New(t)
	l, err := net.Listen("tcp", "127.0.0.1:0")
	is.NoErr(err)
	addr := l.Addr().String()
	l.Close()

	_, err = Dial(testContext(t), addr, 2)
	is.True(err != nil)
}

func TestDialRejectsOtherServers(t *testing.T) {
	is := is.New(t)
	l, err := net.Listen("tcp", "127.0.0.1:0")
	is.NoErr(err)
	defer l.Close()
	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		io.WriteString(conn, `{"msg":"You are connected to Quiz server"}`+"\n")
		io.Copy(io.Discard, conn)
	}()

	_, err = Dial(testContext(t), l.Addr().String(), 1)
	is.True(errors.Is(err, ErrNotSolverServer))
}
