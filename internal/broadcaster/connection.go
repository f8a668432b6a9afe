package broadcaster

import (
	"context"
	"errors"
	"sync/atomic"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrSendBufferFull   = errors.New("connection send buffer is full")
	ErrConnectionClosed = errors.New("connection is closed")
)

type ConnectionState int32

const (
	StateConnecting ConnectionState = iota
	StateOpen
	StateClosing
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Connection is the registry's handle on one transport. Frames are handed to
// the transport writer through Send; only the registry closes it.
type Connection struct {
	Id string

	send  chan []byte
	state atomic.Int32
}

func NewConnection(bufferSize int) *Connection {
	return &Connection{
		Id:   gonanoid.Must(),
		send: make(chan []byte, bufferSize),
	}
}

// Send yields encoded frames until the connection is unregistered.
func (c *Connection) Send() <-chan []byte {
	return c.send
}

func (c *Connection) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

func (c *Connection) Ready() bool {
	return c.State() == StateOpen
}

// MarkOpen is called by the transport once its writer is running.
func (c *Connection) MarkOpen() {
	c.state.CompareAndSwap(int32(StateConnecting), int32(StateOpen))
}

// MarkClosing stops further fan-outs from targeting a transport that is going
// away but has not been unregistered yet.
func (c *Connection) MarkClosing() {
	c.state.CompareAndSwap(int32(StateConnecting), int32(StateClosing))
	c.state.CompareAndSwap(int32(StateOpen), int32(StateClosing))
}

// enqueue must be called with the registry lock held.
func (c *Connection) enqueue(frame []byte) error {
	if c.State() == StateClosed {
		return ErrConnectionClosed
	}

	select {
	case c.send <- frame:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// close must be called with the registry lock held.
func (c *Connection) close() {
	if ConnectionState(c.state.Swap(int32(StateClosed))) == StateClosed {
		return
	}

	close(c.send)
}

type contextKey string

const connectionKey contextKey = "connection"

func WithConnection(ctx context.Context, conn *Connection) context.Context {
	return context.WithValue(ctx, connectionKey, conn)
}

func ConnectionFromContext(ctx context.Context) (*Connection, bool) {
	conn, ok := ctx.Value(connectionKey).(*Connection)

	return conn, ok
}
