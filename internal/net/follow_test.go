package net

import (
	"context"
	"testing"
	"time"

	"InkBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowURL(t *testing.T) {
	tests := map[string]string{
		"192.168.1.5:7420":        "ws://192.168.1.5:7420/ws",
		"http://host:80/":         "ws://host:80/ws",
		"https://board.example":   "wss://board.example/ws",
		"ws://host:1/ws":          "ws://host:1/ws",
		"wss://secure.example/ws": "wss://secure.example/ws",
	}
	for in, want := range tests {
		assert.Equal(t, want, FollowURL(in), in)
	}
}

func TestFollow(t *testing.T) {
	_, session, srv := newTestMirror(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs := make(chan Message, 8)
	errc := make(chan error, 1)
	go func() {
		errc <- Follow(ctx, srv.URL, func(m Message) { msgs <- m })
	}()

	next := func() Message {
		select {
		case m := <-msgs:
			return m
		case <-time.After(5 * time.Second):
			t.Fatal("no message from mirror")
			return Message{}
		}
	}

	first := next()
	assert.Equal(t, 0, first.Canvas.Len())

	session.Run(state.AddStroke{Stroke: testStroke()})
	second := next()
	assert.Equal(t, 1, second.Canvas.Len())
	assert.Equal(t, session.Revision(), second.Revision)

	// A follower can mirror the host into its own session.
	viewer := state.NewSession(second.Canvas.Area().Size())
	viewer.Restore(state.Snapshot{Version: state.SnapshotVersion, Revision: second.Revision, Canvas: second.Canvas})
	viewer.View(func(c *state.Canvas) { assert.Equal(t, 1, c.Len()) })

	cancel()
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Follow did not return after cancel")
	}
}

func TestFollowUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := Follow(ctx, "127.0.0.1:1", func(Message) {})
	assert.Error(t, err)
}
