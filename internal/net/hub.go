package net

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const writeWait = 5 * time.Second

// viewer is one websocket connection with its own writer goroutine. At most
// one message waits to be written; a newer revision replaces it, so a slow
// viewer only ever misses intermediate states.
type viewer struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once

	mu     sync.Mutex // orders enqueues
	queued bool
	last   uint64
}

func newViewer(conn *websocket.Conn) *viewer {
	return &viewer{
		conn: conn,
		send: make(chan []byte, 1),
		done: make(chan struct{}),
	}
}

// enqueue hands msg to the writer without blocking. It reports false when
// rev is older than a message already queued for this viewer.
func (v *viewer) enqueue(rev uint64, msg []byte) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.queued && rev < v.last {
		return false
	}
	v.queued, v.last = true, rev

	select {
	case <-v.send:
	default:
	}
	v.send <- msg
	return true
}

func (v *viewer) stop() {
	v.once.Do(func() { close(v.done) })
}

// Hub tracks the connected viewers and fans messages out to them.
type Hub struct {
	mu      sync.RWMutex
	viewers map[*viewer]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{viewers: make(map[*viewer]struct{})}
}

func (h *Hub) add(conn *websocket.Conn) *viewer {
	v := newViewer(conn)
	h.mu.Lock()
	h.viewers[v] = struct{}{}
	n := len(h.viewers)
	h.mu.Unlock()

	go h.writeLoop(v)

	logrus.WithFields(logrus.Fields{
		"remote":  conn.RemoteAddr().String(),
		"viewers": n,
	}).Info("Viewer connected")
	return v
}

func (h *Hub) writeLoop(v *viewer) {
	for {
		select {
		case <-v.done:
			return
		case msg := <-v.send:
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logrus.WithError(err).Debug("Dropping viewer after failed write")
				h.remove(v)
				return
			}
		}
	}
}

func (h *Hub) remove(v *viewer) {
	h.mu.Lock()
	_, ok := h.viewers[v]
	delete(h.viewers, v)
	n := len(h.viewers)
	h.mu.Unlock()

	if !ok {
		return
	}
	v.stop()
	v.conn.Close()
	logrus.WithFields(logrus.Fields{
		"remote":  v.conn.RemoteAddr().String(),
		"viewers": n,
	}).Info("Viewer disconnected")
}

// Len returns the number of connected viewers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.viewers)
}

// Broadcast queues msg, the state at revision rev, for every viewer and
// returns how many took it. It never waits for the network.
func (h *Hub) Broadcast(rev uint64, msg []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	queued := 0
	for v := range h.viewers {
		if v.enqueue(rev, msg) {
			queued++
		}
	}
	return queued
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.mu.Lock()
	viewers := h.viewers
	h.viewers = make(map[*viewer]struct{})
	h.mu.Unlock()

	for v := range viewers {
		v.stop()
		v.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "board closed"),
			time.Now().Add(writeWait))
		v.conn.Close()
	}
}
