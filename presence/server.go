package presence

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gl/engine/logging"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait       = 5 * time.Second
	shutdownWait    = 5 * time.Second
	maxMessageSize  = 4096
	maxPendingSends = 64
)

// Server is the presence server. It accepts websocket connections on /ws, places each
// connection in a room and relays cursor hit points between room members.
type Server interface {
	// Handler returns the HTTP handler serving /ws.
	//
	// Returns:
	//   - http.Handler: the handler, usable with httptest or a custom http.Server
	Handler() http.Handler

	// ListenAndServe serves on the configured address until ctx is cancelled.
	//
	// Parameters:
	//   - ctx: cancelling it shuts the server down and disconnects every client
	//
	// Returns:
	//   - error: listener errors; nil after a clean shutdown
	ListenAndServe(ctx context.Context) error

	// Rooms returns the room assignment table.
	//
	// Returns:
	//   - *Rooms: the live room set
	Rooms() *Rooms

	// Clients returns the number of connected clients.
	Clients() int

	// Close disconnects every client.
	Close()
}

// peer is one connected client. Outbound messages are queued and written in order by at
// most one pool task at a time.
type peer struct {
	id   string
	room int
	conn *websocket.Conn

	mu        sync.Mutex
	intersect Intersect
	queue     []Message
	flushing  bool
	closed    bool
}

// server is the implementation of the Server interface.
type server struct {
	addr        string
	roomSize    int
	workers     int
	queueSize   int
	checkOrigin func(*http.Request) bool

	rooms    *Rooms
	upgrader websocket.Upgrader
	pool     worker.DynamicWorkerPool
	taskID   atomic.Int64
	nextID   atomic.Uint64

	mu    sync.RWMutex
	peers map[string]*peer
}

var _ Server = &server{}

// NewServer creates a presence server. Applies default values first, then each option
// in order.
//
// Parameters:
//   - options: functional options to configure the server
//
// Returns:
//   - Server: the server, not yet listening
func NewServer(options ...ServerBuilderOption) Server {
	s := &server{
		addr:      ":8989",
		roomSize:  DefaultRoomSize,
		workers:   4,
		queueSize: 256,
		peers:     make(map[string]*peer),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.checkOrigin == nil {
		s.checkOrigin = func(*http.Request) bool { return true }
	}

	s.rooms = NewRooms(s.roomSize)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	s.pool = worker.NewDynamicWorkerPool(s.workers, s.queueSize, time.Second)
	return s
}

func logger() *zap.Logger {
	return logging.Named("presence")
}

func (s *server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	return mux
}

func (s *server) Rooms() *Rooms {
	return s.rooms
}

func (s *server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.peers)
}

func (s *server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger().Info("presence server listening", zap.String("addr", s.addr), zap.Int("roomSize", s.roomSize))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("presence server: %w", err)
	case <-ctx.Done():
	}

	// Hijacked websocket connections are not tracked by Shutdown.
	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("presence server shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("presence server: %w", err)
	}
	logger().Info("presence server stopped")
	return nil
}

func (s *server) Close() {
	s.mu.RLock()
	peers := make([]*peer, 0, len(s.peers))
	for _, p := range s.peers {
		peers = append(peers, p)
	}
	s.mu.RUnlock()
	for _, p := range peers {
		p.close()
	}
}

// serveWS upgrades the request and runs the connection's read loop on the request
// goroutine until the client goes away.
func (s *server) serveWS(w http.ResponseWriter, req *http.Request) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		logger().Warn("websocket upgrade failed", zap.String("remote", req.RemoteAddr), zap.Error(err))
		return
	}
	conn.SetReadLimit(maxMessageSize)

	id := strconv.FormatUint(s.nextID.Add(1), 10)
	room, ordinal := s.rooms.Join(id)
	p := &peer{id: id, room: room, conn: conn}

	s.mu.Lock()
	s.peers[id] = p
	total := len(s.peers)
	s.mu.Unlock()

	logger().Info("client joined",
		zap.String("client", id),
		zap.String("remote", req.RemoteAddr),
		zap.Int("room", room),
		zap.Int("ordinal", ordinal),
		zap.Int("clients", total),
	)

	s.deliver(p, initMessage(room, ordinal, total))
	s.broadcast(userCountMessage(total))

	s.readLoop(p)
	s.disconnect(p)
}

func (s *server) readLoop(p *peer) {
	for {
		var msg Message
		if err := p.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger().Warn("client read failed", zap.String("client", p.id), zap.Error(err))
			}
			return
		}
		switch msg.Type {
		case TypeIntersect:
			if msg.Intersect == nil {
				continue
			}
			p.mu.Lock()
			p.intersect = *msg.Intersect
			p.mu.Unlock()
			s.publishRoom(p)
		default:
			logger().Debug("message ignored", zap.String("client", p.id), zap.String("type", string(msg.Type)))
		}
	}
}

// publishRoom sends the room state to every member of p's room except p. Each receiver
// gets the records of the other members only.
func (s *server) publishRoom(p *peer) {
	ids, err := s.rooms.Members(p.room)
	if err != nil {
		logger().Warn("room lookup failed", zap.String("client", p.id), zap.Error(err))
		return
	}

	s.mu.RLock()
	total := len(s.peers)
	members := make([]*peer, 0, len(ids))
	for _, id := range ids {
		if m, ok := s.peers[id]; ok {
			members = append(members, m)
		}
	}
	s.mu.RUnlock()

	states := make([]UserState, len(members))
	for i, m := range members {
		m.mu.Lock()
		states[i] = UserState{Room: m.room, Intersect: m.intersect}
		m.mu.Unlock()
	}

	for i, m := range members {
		if m == p {
			continue
		}
		users := make([]UserState, 0, len(states)-1)
		users = append(users, states[:i]...)
		users = append(users, states[i+1:]...)
		s.deliver(m, dataMessage(p.room, total, len(members), users))
	}
}

// broadcast sends msg to every connected client.
func (s *server) broadcast(msg Message) {
	s.mu.RLock()
	peers := make([]*peer, 0, len(s.peers))
	for _, p := range s.peers {
		peers = append(peers, p)
	}
	s.mu.RUnlock()
	for _, p := range peers {
		s.deliver(p, msg)
	}
}

func (s *server) disconnect(p *peer) {
	p.close()
	room, err := s.rooms.Leave(p.id)
	if err != nil {
		logger().Warn("leave failed", zap.String("client", p.id), zap.Error(err))
	}

	s.mu.Lock()
	delete(s.peers, p.id)
	total := len(s.peers)
	remaining := make([]*peer, 0, s.rooms.Capacity())
	for _, other := range s.peers {
		if other.room == room {
			remaining = append(remaining, other)
		}
	}
	s.mu.Unlock()

	logger().Info("client left", zap.String("client", p.id), zap.Int("room", room), zap.Int("clients", total))

	s.broadcast(userCountMessage(total))
	left := userLeftMessage(room, s.rooms.Occupancy(room))
	for _, other := range remaining {
		s.deliver(other, left)
	}
}

// deliver queues msg for p and starts a flush task on the worker pool when none is
// running for p. A full queue drops the message.
func (s *server) deliver(p *peer, msg Message) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if len(p.queue) >= maxPendingSends {
		p.mu.Unlock()
		logger().Debug("send queue full, message dropped", zap.String("client", p.id), zap.String("type", string(msg.Type)))
		return
	}
	p.queue = append(p.queue, msg)
	start := !p.flushing
	p.flushing = true
	p.mu.Unlock()

	if !start {
		return
	}
	s.pool.SubmitTask(worker.Task{
		ID: int(s.taskID.Add(1)),
		Do: func() (any, error) {
			return nil, s.flush(p)
		},
	})
}

// flush writes p's queued messages in order until the queue is empty.
func (s *server) flush(p *peer) error {
	for {
		p.mu.Lock()
		if len(p.queue) == 0 || p.closed {
			p.flushing = false
			p.queue = nil
			p.mu.Unlock()
			return nil
		}
		batch := p.queue
		p.queue = nil
		p.mu.Unlock()

		for _, msg := range batch {
			if err := p.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				p.close()
				return err
			}
			if err := p.conn.WriteJSON(msg); err != nil {
				logger().Warn("client write failed", zap.String("client", p.id), zap.Error(err))
				p.close()
				return err
			}
		}
	}
}

// close marks the peer closed and closes its connection, which ends its read loop.
func (p *peer) close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.queue = nil
	p.mu.Unlock()
	_ = p.conn.Close()
}
