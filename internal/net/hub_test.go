package net

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyHub(t *testing.T) {
	h := NewHub()
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, 0, h.Broadcast(1, []byte("x")))
	h.Close()
}

func TestViewerKeepsNewestMessage(t *testing.T) {
	v := newViewer(nil)
	assert.True(t, v.enqueue(1, []byte("one")))
	assert.True(t, v.enqueue(2, []byte("two")))
	assert.False(t, v.enqueue(1, []byte("stale")))

	require.Len(t, v.send, 1)
	assert.Equal(t, []byte("two"), <-v.send)
}

// hubServer upgrades every request and registers the connection with h.
func hubServer(t *testing.T, h *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.add(conn)
	}))
	t.Cleanup(func() {
		h.Close()
		srv.Close()
	})
	return srv
}

func TestBroadcastDoesNotWaitForStalledViewer(t *testing.T) {
	h := NewHub()
	srv := hubServer(t, h)

	// This client never reads, so the socket buffers fill up.
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return h.Len() == 1 }, 5*time.Second, 10*time.Millisecond)

	msg := bytes.Repeat([]byte("x"), 256<<10)
	start := time.Now()
	for rev := uint64(1); rev <= 200; rev++ {
		assert.Equal(t, 1, h.Broadcast(rev, msg))
	}
	assert.Less(t, time.Since(start), time.Second)
}

func TestViewerReceivesLatest(t *testing.T) {
	h := NewHub()
	srv := hubServer(t, h)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return h.Len() == 1 }, 5*time.Second, 10*time.Millisecond)

	for _, s := range []string{"a", "b", "c"} {
		h.Broadcast(uint64(s[0]), []byte(s))
	}

	var last string
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for last != "c" {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		last = string(data)
	}
	assert.Equal(t, "c", last)
}

func TestViewerURL(t *testing.T) {
	url := ViewerURL(8080)
	assert.Contains(t, url, ":8080/api/snapshot")
	assert.Regexp(t, `^http://`, url)
}
