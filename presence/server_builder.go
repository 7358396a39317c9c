package presence

import "net/http"

// ServerBuilderOption is a functional option for configuring a Server.
type ServerBuilderOption func(*server)

// WithAddr sets the listen address used by ListenAndServe.
//
// Parameters:
//   - addr: host:port, e.g. ":8989"
//
// Returns:
//   - ServerBuilderOption: option function
func WithAddr(addr string) ServerBuilderOption {
	return func(s *server) {
		s.addr = addr
	}
}

// WithRoomSize sets the member cap of each room.
//
// Parameters:
//   - size: maximum members per room; values below 1 use DefaultRoomSize
//
// Returns:
//   - ServerBuilderOption: option function
func WithRoomSize(size int) ServerBuilderOption {
	return func(s *server) {
		s.roomSize = size
	}
}

// WithWorkers sets the number of pool workers writing to clients.
//
// Parameters:
//   - n: maximum concurrent writer tasks
//
// Returns:
//   - ServerBuilderOption: option function
func WithWorkers(n int) ServerBuilderOption {
	return func(s *server) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithQueueSize sets the capacity of the worker pool task queue.
//
// Parameters:
//   - n: queued writer tasks before submission blocks
//
// Returns:
//   - ServerBuilderOption: option function
func WithQueueSize(n int) ServerBuilderOption {
	return func(s *server) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithCheckOrigin sets the websocket origin check. All origins are accepted by default.
//
// Parameters:
//   - check: returns true for accepted requests
//
// Returns:
//   - ServerBuilderOption: option function
func WithCheckOrigin(check func(*http.Request) bool) ServerBuilderOption {
	return func(s *server) {
		s.checkOrigin = check
	}
}
