// Package net publishes a live, read-only view of a drawing session to other
// machines on the LAN.
package net

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"InkBoard/internal/core"
	"InkBoard/internal/state"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Message is what viewers receive on the websocket.
type Message struct {
	Type     string        `json:"type"`
	Revision uint64        `json:"revision"`
	Canvas   *state.Canvas `json:"canvas"`
}

// Info summarises the session for GET /api/info.
type Info struct {
	SessionID string  `json:"session_id"`
	Revision  uint64  `json:"revision"`
	Strokes   int     `json:"strokes"`
	Zoom      float32 `json:"zoom"`
}

// Mirror serves the session over HTTP and pushes every change to websocket
// viewers. Viewers never mutate the session.
type Mirror struct {
	session  *state.Session
	store    core.SnapshotStore
	hub      *Hub
	upgrader websocket.Upgrader
	log      *logrus.Entry
}

// NewMirror creates a mirror of session and subscribes it to the session's
// changes. store may be nil, in which case /api/saved is not served.
func NewMirror(session *state.Session, store core.SnapshotStore) *Mirror {
	m := &Mirror{
		session: session,
		store:   store,
		hub:     NewHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Read-only feed, any origin may watch.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: logrus.WithField("session_id", session.ID()),
	}
	session.OnChange(m.publish)
	return m
}

// Viewers returns the number of connected websocket viewers.
func (m *Mirror) Viewers() int { return m.hub.Len() }

// Router returns the mirror's HTTP routes.
func (m *Mirror) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", m.handleSnapshot)
		r.Get("/strokes", m.handleStrokes)
		r.Get("/info", m.handleInfo)
		if m.store != nil {
			r.Get("/saved", m.handleSaved)
		}
	})
	r.Get("/ws", m.handleWS)
	return r
}

// Serve answers requests on ln until ctx is cancelled, then disconnects all
// viewers and shuts the server down.
func (m *Mirror) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		m.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			m.log.WithError(err).Warn("Mirror shutdown")
		}
	}()

	m.log.WithField("addr", ln.Addr().String()).Info("Mirror listening")
	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}

func (m *Mirror) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, m.session.Snapshot(false))
}

func (m *Mirror) handleStrokes(w http.ResponseWriter, r *http.Request) {
	var strokes []state.Stroke
	m.session.View(func(c *state.Canvas) {
		strokes = make([]state.Stroke, 0, c.Len())
		for _, s := range c.Strokes() {
			strokes = append(strokes, s.Clone())
		}
	})
	render.JSON(w, r, strokes)
}

func (m *Mirror) handleInfo(w http.ResponseWriter, r *http.Request) {
	info := Info{SessionID: m.session.ID()}
	m.session.View(func(c *state.Canvas) {
		info.Strokes = c.Len()
		info.Zoom = c.Zoom()
	})
	info.Revision = m.session.Revision()
	render.JSON(w, r, info)
}

func (m *Mirror) handleSaved(w http.ResponseWriter, r *http.Request) {
	records, err := m.store.List(r.Context())
	if err != nil {
		m.log.WithError(err).Error("Failed to list saved snapshots")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "failed to list snapshots"})
		return
	}
	if records == nil {
		records = []*core.Record{}
	}
	render.JSON(w, r, records)
}

func (m *Mirror) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.log.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	v := m.hub.add(conn)

	rev, msg, err := m.message()
	if err != nil {
		m.log.WithError(err).Warn("Failed to encode initial snapshot")
		m.hub.remove(v)
		return
	}
	v.enqueue(rev, msg)

	// Drain until the viewer goes away. Anything a viewer sends is ignored.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			m.hub.remove(v)
			return
		}
	}
}

func (m *Mirror) message() (uint64, []byte, error) {
	snap := m.session.Snapshot(false)
	msg, err := json.Marshal(Message{
		Type:     "snapshot",
		Revision: snap.Revision,
		Canvas:   snap.Canvas,
	})
	return snap.Revision, msg, err
}

// publish runs on whichever goroutine changed the session, often the UI
// thread. It only queues; the viewers' writers do the network I/O.
func (m *Mirror) publish(uint64) {
	if m.hub.Len() == 0 {
		return
	}
	rev, msg, err := m.message()
	if err != nil {
		m.log.WithError(err).Error("Failed to encode snapshot")
		return
	}
	n := m.hub.Broadcast(rev, msg)
	m.log.WithFields(logrus.Fields{"revision": rev, "viewers": n}).Debug("Published")
}
