package net

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// FollowURL turns a host:port into the mirror's websocket URL. Full ws://
// and http:// URLs are accepted as well.
func FollowURL(addr string) string {
	switch {
	case strings.HasPrefix(addr, "ws://"), strings.HasPrefix(addr, "wss://"):
		return addr
	case strings.HasPrefix(addr, "http://"):
		return "ws://" + strings.TrimSuffix(strings.TrimPrefix(addr, "http://"), "/") + "/ws"
	case strings.HasPrefix(addr, "https://"):
		return "wss://" + strings.TrimSuffix(strings.TrimPrefix(addr, "https://"), "/") + "/ws"
	default:
		return "ws://" + addr + "/ws"
	}
}

// Follow connects to the mirror at addr and calls fn with every message it
// sends, until ctx is done or the mirror goes away. Cancelling ctx is not an
// error.
func Follow(ctx context.Context, addr string, fn func(Message)) error {
	url := FollowURL(addr)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", url, err)
	}
	defer conn.Close()
	log := logrus.WithField("mirror", url)
	log.Info("Following mirror")

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("Mirror closed")
				return nil
			}
			return fmt.Errorf("read from mirror: %w", err)
		}
		if msg.Canvas == nil {
			log.WithField("type", msg.Type).Warn("Ignoring message without canvas")
			continue
		}
		fn(msg)
	}
}

// ErrNoPeers is returned by Discover when no board answered.
var ErrNoPeers = errors.New("no boards found on the network")

// Discover returns the address of the first board found by Browse.
func Discover(ctx context.Context) (string, error) {
	peers, err := Browse(ctx, browseTimeout)
	if err != nil {
		return "", err
	}
	if len(peers) == 0 {
		return "", ErrNoPeers
	}
	return peers[0].Addr, nil
}
