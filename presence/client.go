package presence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	// ErrOutboxFull is returned when a send is dropped because earlier sends are still
	// waiting for the connection.
	ErrOutboxFull = errors.New("presence outbox full")
	// ErrClientClosed is returned by sends after Close.
	ErrClientClosed = errors.New("presence client closed")
)

// Client is a presence connection as seen from the engine. Incoming messages are decoded
// on a background goroutine and delivered on Messages; the render thread drains it.
type Client interface {
	// Messages returns the inbox. It is closed when the connection ends.
	//
	// Returns:
	//   - <-chan Message: decoded server messages in arrival order
	Messages() <-chan Message

	// SendIntersect queues the local cursor hit point for a background writer. It never
	// blocks; a full queue drops the point.
	//
	// Parameters:
	//   - i: the hit point with the click flag in W, or the zero value for no hit
	//
	// Returns:
	//   - error: ErrOutboxFull if the point was dropped, ErrClientClosed after Close
	SendIntersect(i Intersect) error

	// Done is closed once the read goroutine has exited.
	Done() <-chan struct{}

	// Close sends a close frame and closes the connection.
	//
	// Returns:
	//   - error: error if the connection could not be closed cleanly
	Close() error
}

// ClientBuilderOption is a functional option for configuring a Client.
type ClientBuilderOption func(*client)

// WithInboxSize sets the capacity of the Messages channel. Messages arriving while the
// inbox is full are dropped.
//
// Parameters:
//   - n: inbox capacity
//
// Returns:
//   - ClientBuilderOption: option function
func WithInboxSize(n int) ClientBuilderOption {
	return func(c *client) {
		if n > 0 {
			c.inboxSize = n
		}
	}
}

// WithOutboxSize sets how many outgoing messages may wait for the connection.
//
// Parameters:
//   - n: outbox capacity
//
// Returns:
//   - ClientBuilderOption: option function
func WithOutboxSize(n int) ClientBuilderOption {
	return func(c *client) {
		if n > 0 {
			c.outboxSize = n
		}
	}
}

// client is the implementation of the Client interface.
type client struct {
	conn       *websocket.Conn
	inboxSize  int
	inbox      chan Message
	outboxSize int
	outbox     chan Message
	done       chan struct{}
	// quit stops the writer. The outbox itself is never closed, so sends cannot panic.
	quit chan struct{}

	closeOnce sync.Once
}

var _ Client = &client{}

// Dial connects to a presence server and starts reading.
//
// Parameters:
//   - ctx: bounds the handshake
//   - url: websocket URL, e.g. "ws://localhost:8989/ws"
//   - options: functional options to configure the client
//
// Returns:
//   - Client: the connected client
//   - error: error if the handshake fails
func Dial(ctx context.Context, url string, options ...ClientBuilderOption) (Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial presence server %s: %w", url, err)
	}
	c := &client{
		conn:       conn,
		inboxSize:  64,
		outboxSize: 16,
		done:       make(chan struct{}),
		quit:       make(chan struct{}),
	}
	for _, opt := range options {
		opt(c)
	}
	c.inbox = make(chan Message, c.inboxSize)
	c.outbox = make(chan Message, c.outboxSize)
	conn.SetReadLimit(maxMessageSize * 4)

	go c.readLoop()
	go c.writeLoop()
	logger().Info("presence connected", zap.String("url", url))
	return c, nil
}

func (c *client) readLoop() {
	defer close(c.done)
	defer close(c.inbox)
	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger().Warn("presence read failed", zap.Error(err))
			}
			return
		}
		select {
		case c.inbox <- msg:
		default:
			logger().Debug("presence inbox full, message dropped", zap.String("type", string(msg.Type)))
		}
	}
}

func (c *client) Messages() <-chan Message {
	return c.inbox
}

func (c *client) Done() <-chan struct{} {
	return c.done
}

func (c *client) SendIntersect(i Intersect) error {
	select {
	case <-c.quit:
		return ErrClientClosed
	default:
	}
	select {
	case c.outbox <- IntersectMessage(i):
		return nil
	default:
		return ErrOutboxFull
	}
}

// writeLoop is the only goroutine writing data frames. It stops on Close, when the read
// side ends, or after a failed write.
func (c *client) writeLoop() {
	for {
		select {
		case <-c.quit:
			return
		case <-c.done:
			return
		case msg := <-c.outbox:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger().Warn("presence write deadline not set", zap.Error(err))
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				logger().Warn("presence send failed", zap.String("type", string(msg.Type)), zap.Error(err))
				_ = c.conn.Close()
				return
			}
		}
	}
}

func (c *client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.quit)
		// WriteControl may run concurrently with the writer's WriteJSON.
		werr := c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		if werr != nil && werr != websocket.ErrCloseSent {
			logger().Debug("presence close frame not sent", zap.Error(werr))
		}
		err = c.conn.Close()
	})
	return err
}
