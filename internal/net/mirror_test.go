package net

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"InkBoard/internal/core"
	"InkBoard/internal/state"
	"InkBoard/internal/stores/memory"

	"fyne.io/fyne/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStroke() state.Stroke {
	return state.Stroke{
		ID:       "s1",
		Style:    state.DefaultStyle,
		Segments: []state.Segment{state.NewSegment(fyne.NewPos(1, 1), fyne.NewPos(5, 5))},
	}
}

func newTestMirror(t *testing.T, store core.SnapshotStore) (*Mirror, *state.Session, *httptest.Server) {
	t.Helper()
	session := state.NewSession(fyne.NewSize(200, 100))
	m := NewMirror(session, store)
	srv := httptest.NewServer(m.Router())
	t.Cleanup(func() {
		m.hub.Close()
		srv.Close()
	})
	return m, session, srv
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestInfo(t *testing.T) {
	_, session, srv := newTestMirror(t, nil)
	session.Run(state.AddStroke{Stroke: testStroke()})

	var info Info
	getJSON(t, srv.URL+"/api/info", &info)
	assert.Equal(t, session.ID(), info.SessionID)
	assert.Equal(t, uint64(1), info.Revision)
	assert.Equal(t, 1, info.Strokes)
	assert.InDelta(t, state.DefaultZoom, info.Zoom, 1e-6)
}

func TestStrokes(t *testing.T) {
	_, session, srv := newTestMirror(t, nil)

	var strokes []state.Stroke
	getJSON(t, srv.URL+"/api/strokes", &strokes)
	assert.Empty(t, strokes)

	session.Run(state.AddStroke{Stroke: testStroke()})
	getJSON(t, srv.URL+"/api/strokes", &strokes)
	require.Len(t, strokes, 1)
	assert.Equal(t, testStroke(), strokes[0])
}

func TestSnapshotEndpoint(t *testing.T) {
	_, session, srv := newTestMirror(t, nil)
	session.Run(state.AddStroke{Stroke: testStroke()})

	resp, err := http.Get(srv.URL + "/api/snapshot")
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	snap, err := state.DecodeSnapshot(raw)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Canvas.Len())
	assert.Nil(t, snap.History)
}

func TestSaved(t *testing.T) {
	store := memory.NewStore()
	_, err := store.Save(context.Background(), &core.Record{Name: "kept", Data: []byte("{}")})
	require.NoError(t, err)
	_, _, srv := newTestMirror(t, store)

	var records []core.Record
	getJSON(t, srv.URL+"/api/saved", &records)
	require.Len(t, records, 1)
	assert.Equal(t, "kept", records[0].Name)
	assert.Empty(t, records[0].Data)
}

func TestSavedNeedsStore(t *testing.T) {
	_, _, srv := newTestMirror(t, nil)
	resp, err := http.Get(srv.URL + "/api/saved")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebsocketFollowsSession(t *testing.T) {
	m, session, srv := newTestMirror(t, nil)
	conn := dial(t, srv)

	first := readMessage(t, conn)
	assert.Equal(t, "snapshot", first.Type)
	assert.Equal(t, uint64(0), first.Revision)
	assert.Equal(t, 0, first.Canvas.Len())
	assert.Equal(t, 1, m.Viewers())

	session.Run(state.AddStroke{Stroke: testStroke()})
	next := readMessage(t, conn)
	assert.Equal(t, uint64(1), next.Revision)
	assert.Equal(t, 1, next.Canvas.Len())

	require.True(t, session.Undo())
	undone := readMessage(t, conn)
	assert.Equal(t, uint64(2), undone.Revision)
	assert.Equal(t, 0, undone.Canvas.Len())
}

func TestViewerDisconnect(t *testing.T) {
	m, _, srv := newTestMirror(t, nil)
	conn := dial(t, srv)
	readMessage(t, conn)
	require.Equal(t, 1, m.Viewers())

	conn.Close()
	assert.Eventually(t, func() bool { return m.Viewers() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestServeStopsOnCancel(t *testing.T) {
	session := state.NewSession(fyne.NewSize(10, 10))
	m := NewMirror(session, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- m.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return")
	}
}
