package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"InkBoard/internal/config"
	"InkBoard/internal/core"
	inknet "InkBoard/internal/net"
	"InkBoard/internal/state"
	"InkBoard/internal/stores"
	"InkBoard/internal/ui"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/sirupsen/logrus"
)

func main() {
	config.LoadDotEnv()
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	level, _ := cfg.Level()
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.View != "" {
		runViewer(ctx, cfg)
		return
	}
	runHost(ctx, cfg)
}

func runHost(ctx context.Context, cfg config.Config) {
	logrus.Info("Starting board")
	store, err := stores.GetStore(ctx, cfg.Storage)
	if err != nil {
		logrus.WithError(err).Fatal("Could not open storage")
	}

	session := state.NewSession(cfg.CanvasSize())
	opts := ui.Options{Store: store}
	if cfg.Snapshot != "" {
		if err := stores.LoadSession(ctx, store, session, cfg.Snapshot); err != nil {
			logrus.WithError(err).WithField("snapshot_id", cfg.Snapshot).Fatal("Could not restore snapshot")
		}
		opts.RecordID = cfg.Snapshot
	}

	if cfg.Mirror {
		url, shutdown, err := startMirror(ctx, cfg.Listen, session, store)
		if err != nil {
			logrus.WithError(err).Error("Mirror disabled")
		} else {
			defer shutdown()
			opts.ViewerURL = url
		}
	}

	a := app.New()
	board := ui.NewApp(a, session, opts)
	go func() {
		<-ctx.Done()
		fyne.Do(a.Quit)
	}()
	board.ShowAndRun()

	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := board.Save(saveCtx); err != nil {
		logrus.WithError(err).Error("Could not save board on exit")
	}
}

// startMirror serves session on addr and advertises it via mDNS. The
// returned func stops both.
func startMirror(ctx context.Context, addr string, session *state.Session, store core.SnapshotStore) (string, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	port := ln.Addr().(*net.TCPAddr).Port

	ctx, cancel := context.WithCancel(ctx)
	mirror := inknet.NewMirror(session, store)
	go func() {
		if err := mirror.Serve(ctx, ln); err != nil {
			logrus.WithError(err).Error("Mirror stopped")
		}
	}()

	mdnsServer, err := inknet.Advertise(port, session.ID())
	if err != nil {
		logrus.WithError(err).Warn("mDNS advertisement failed, viewers need the address")
	}

	url := inknet.ViewerURL(port)
	logrus.WithField("url", url).Info("Mirror ready")
	return url, func() {
		cancel()
		if mdnsServer != nil {
			mdnsServer.Shutdown()
		}
	}, nil
}

func runViewer(ctx context.Context, cfg config.Config) {
	addr := cfg.View
	if addr == "auto" {
		found, err := inknet.Discover(ctx)
		if err != nil {
			logrus.WithError(err).Fatal("Could not find a board to follow")
		}
		addr = found
	}
	logrus.WithField("addr", addr).Info("Starting as viewer")

	session := state.NewSession(cfg.CanvasSize())
	a := app.New()
	board := ui.NewApp(a, session, ui.Options{ReadOnly: true})

	go func() {
		err := inknet.Follow(ctx, addr, func(msg inknet.Message) {
			board.ShowRemote(state.Snapshot{
				Version:  state.SnapshotVersion,
				Revision: msg.Revision,
				Canvas:   msg.Canvas,
			})
		})
		if err != nil {
			logrus.WithError(err).Error("Lost the board")
		}
	}()
	go func() {
		<-ctx.Done()
		fyne.Do(a.Quit)
	}()
	board.ShowAndRun()
}
