package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"INKBOARD_LISTEN", "INKBOARD_MIRROR", "STORAGE_TYPE", "LOCAL_STORAGE_PATH", "DATA_SOURCE_NAME", "S3_BUCKET_NAME"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestParseDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, float32(DefaultWidth), cfg.Width)
	assert.Equal(t, float32(DefaultHeight), cfg.Height)
	assert.False(t, cfg.Mirror)
	assert.Equal(t, DefaultListen, cfg.Listen)
	assert.Empty(t, cfg.Snapshot)
	assert.Empty(t, cfg.Storage.Type)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, level)
}

func TestParseFlags(t *testing.T) {
	clearEnv(t)
	cfg, err := Parse([]string{"-width", "800", "-height", "600", "-mirror", "-listen", ":9000", "-snapshot", "abc", "-loglevel", "debug"})
	require.NoError(t, err)

	assert.Equal(t, float32(800), cfg.CanvasSize().Width)
	assert.Equal(t, float32(600), cfg.CanvasSize().Height)
	assert.True(t, cfg.Mirror)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, "abc", cfg.Snapshot)
	assert.Equal(t, "debug", cfg.LogLevel)

	cfg, err = Parse([]string{"-view", "10.0.0.2:7420"})
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2:7420", cfg.View)
}

func TestParseEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("INKBOARD_LISTEN", ":1234")
	t.Setenv("INKBOARD_MIRROR", "true")
	t.Setenv("STORAGE_TYPE", "sqlite")
	t.Setenv("DATA_SOURCE_NAME", "boards.db")

	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, ":1234", cfg.Listen)
	assert.True(t, cfg.Mirror)
	assert.Equal(t, "sqlite", cfg.Storage.Type)
	assert.Equal(t, "boards.db", cfg.Storage.DataSourceName)

	cfg, err = Parse([]string{"-listen", ":5678", "-mirror=false"})
	require.NoError(t, err)
	assert.Equal(t, ":5678", cfg.Listen, "flags override the environment")
	assert.False(t, cfg.Mirror)
}

func TestParseRejects(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		args []string
	}{
		{"zero width", []string{"-width", "0"}},
		{"negative height", []string{"-height", "-5"}},
		{"bad level", []string{"-loglevel", "loud"}},
		{"unknown flag", []string{"-colour", "red"}},
		{"mirror without address", []string{"-mirror", "-listen", ""}},
		{"view with snapshot", []string{"-view", "auto", "-snapshot", "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestValidateCanvasSize(t *testing.T) {
	cfg := Config{LogLevel: "info", Width: -1, Height: 10}
	assert.ErrorIs(t, cfg.Validate(), ErrCanvasSize)
}

func TestParseBadMirrorEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("INKBOARD_MIRROR", "perhaps")
	_, err := Parse(nil)
	assert.Error(t, err)
}

func TestS3NeedsBucket(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_TYPE", "s3")
	_, err := Parse(nil)
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("STORAGE_TYPE=filesystem\nLOCAL_STORAGE_PATH=/tmp/boards\n"), 0o644))

	LoadDotEnv(path)

	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, "filesystem", cfg.Storage.Type)
	assert.Equal(t, "/tmp/boards", cfg.Storage.LocalPath)
}
