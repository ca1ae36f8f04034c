package net

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/mdns"
	"github.com/sirupsen/logrus"
)

const (
	serviceType   = "_inkboard._tcp"
	browseTimeout = 3 * time.Second
)

// Peer is another board advertising itself on the LAN.
type Peer struct {
	Name string `json:"name"`
	Addr string `json:"addr"`
}

// Advertise announces the mirror on port via mDNS. The returned server must
// be shut down when the mirror stops.
func Advertise(port int, sessionID string) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(
		host,
		serviceType,
		"",
		"",
		port,
		nil,
		[]string{"InkBoard", "session=" + sessionID},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}

	logrus.WithFields(logrus.Fields{"service": serviceType, "port": port}).Info("Advertising on mDNS")
	return server, nil
}

// Browse looks for other boards for up to timeout, or until ctx is done.
func Browse(ctx context.Context, timeout time.Duration) ([]Peer, error) {
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}

	entries := make(chan *mdns.ServiceEntry, 8)
	collected := make(chan []Peer, 1)
	go func() {
		var peers []Peer
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			peers = append(peers, Peer{
				Name: e.Name,
				Addr: fmt.Sprintf("%s:%d", e.AddrV4, e.Port),
			})
		}
		collected <- peers
	}()

	params := mdns.DefaultParams(serviceType)
	params.Entries = entries
	params.Timeout = timeout
	err := mdns.Query(params)
	close(entries)

	peers := <-collected
	if err != nil {
		return peers, fmt.Errorf("mdns browse: %w", err)
	}
	return peers, nil
}
