package presence

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stalledServer accepts websocket connections and never reads from them.
func stalledServer(t *testing.T) string {
	t.Helper()
	release := make(chan struct{})
	upgrader := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		<-release
	}))
	t.Cleanup(func() {
		close(release)
		ts.Close()
	})
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func TestSendIntersectDoesNotBlockOnStalledPeer(t *testing.T) {
	url := stalledServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := Dial(ctx, url, WithOutboxSize(1))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	// Enough data to fill the socket buffers of a peer that never reads.
	const sends = 20000
	dropped := 0
	start := time.Now()
	for i := 0; i < sends; i++ {
		err := c.SendIntersect(Intersect{float32(i), 0, 0, 1})
		if err != nil {
			require.ErrorIs(t, err, ErrOutboxFull)
			dropped++
		}
	}
	assert.Less(t, time.Since(start), time.Second)
	assert.Positive(t, dropped)
}

func TestSendIntersectAfterClose(t *testing.T) {
	url := stalledServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := Dial(ctx, url)
	require.NoError(t, err)

	require.NoError(t, c.Close())
	err = c.SendIntersect(Intersect{})
	assert.True(t, errors.Is(err, ErrClientClosed))
	assert.NoError(t, c.Close(), "second close is a no-op")
}
