// Package config collects the command line flags and environment settings of
// the board.
package config

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"

	"InkBoard/internal/stores"

	"fyne.io/fyne/v2"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	DefaultWidth  = 2000
	DefaultHeight = 1500
	DefaultListen = ":7420"
)

var ErrCanvasSize = errors.New("canvas size must be positive")

// Config is the resolved application configuration.
type Config struct {
	LogLevel string
	Width    float32
	Height   float32
	Mirror   bool
	Listen   string
	Snapshot string // ID of a stored snapshot to restore at start
	View     string // mirror to follow read-only: host:port, URL or "auto"
	Storage  stores.Config
}

// CanvasSize returns the logical canvas size.
func (c Config) CanvasSize() fyne.Size {
	return fyne.NewSize(c.Width, c.Height)
}

// Level parses LogLevel.
func (c Config) Level() (logrus.Level, error) {
	return logrus.ParseLevel(c.LogLevel)
}

// Validate rejects configurations the board cannot start with.
func (c Config) Validate() error {
	if !(c.Width > 0) || !(c.Height > 0) || math.IsInf(float64(c.Width), 0) || math.IsInf(float64(c.Height), 0) {
		return fmt.Errorf("%w: got %vx%v", ErrCanvasSize, c.Width, c.Height)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Mirror && c.Listen == "" {
		return errors.New("mirror needs a listen address")
	}
	if c.View != "" && c.Snapshot != "" {
		return errors.New("-view and -snapshot cannot be combined")
	}
	if c.Storage.Type == "s3" && c.Storage.Bucket == "" {
		return errors.New("S3_BUCKET_NAME must be set for s3 storage")
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files, or ./.env when none
// are named. Variables already set in the environment win.
func LoadDotEnv(filenames ...string) {
	if err := godotenv.Load(filenames...); err != nil {
		logrus.Debug("No .env file found")
	}
}

// Parse builds a Config from args (without the program name). Environment
// variables provide the defaults and flags override them.
func Parse(args []string) (Config, error) {
	cfg := Config{
		LogLevel: "info",
		Width:    DefaultWidth,
		Height:   DefaultHeight,
		Listen:   envOr("INKBOARD_LISTEN", DefaultListen),
		Storage:  stores.ConfigFromEnv(),
	}
	if v, ok := os.LookupEnv("INKBOARD_MIRROR"); ok {
		mirror, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("INKBOARD_MIRROR: %w", err)
		}
		cfg.Mirror = mirror
	}

	fs := flag.NewFlagSet("inkboard", flag.ContinueOnError)
	fs.StringVar(&cfg.LogLevel, "loglevel", cfg.LogLevel, "Set the logging level: debug, info, warn, error, fatal, panic")
	width := fs.Float64("width", float64(cfg.Width), "Logical canvas width")
	height := fs.Float64("height", float64(cfg.Height), "Logical canvas height")
	fs.BoolVar(&cfg.Mirror, "mirror", cfg.Mirror, "Serve a read-only mirror of the board to the LAN")
	fs.StringVar(&cfg.Listen, "listen", cfg.Listen, "Mirror listen address")
	fs.StringVar(&cfg.Snapshot, "snapshot", "", "ID of a stored snapshot to restore")
	fs.StringVar(&cfg.View, "view", "", `Follow another board read-only: host:port, URL, or "auto" to find one via mDNS`)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Width, cfg.Height = float32(*width), float32(*height)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
