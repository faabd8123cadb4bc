package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
	assert.Len(t, Default().DeviceOptions(), 6)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[window]
title = "cubes"
width = 800

[renderer]
present_mode = "uncapped"
msaa = 1
features = ["timestamp-query"]

[log]
level = "debug"
`))
	require.NoError(t, err)
	assert.Equal(t, "cubes", cfg.Window.Title)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, "uncapped", cfg.Renderer.PresentMode)
	assert.Equal(t, 1, cfg.Renderer.MSAA)
	assert.Equal(t, []string{"timestamp-query"}, cfg.Renderer.Features)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":  "[window]\ncolour = 1\n",
		"present mode": "[renderer]\npresent_mode = \"mailbox\"\n",
		"msaa":         "[renderer]\nmsaa = 8\n",
		"clear color":  "[renderer]\nclear_color = [2.0, 0.0, 0.0, 1.0]\n",
		"log level":    "[log]\nlevel = \"loud\"\n",
		"size":         "[window]\nheight = 0\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	_, err := Parse([]byte("[window\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skygen.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"info\"\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloaded := make(chan Config, 4)
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, func(c Config) { reloaded <- c }) }()

	// the watcher registers asynchronously; keep writing until it reports
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	var got Config
wait:
	for {
		select {
		case got = <-reloaded:
			break wait
		case <-tick.C:
			require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"warn\"\n"), 0o644))
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
	assert.Equal(t, "warn", got.Log.Level)

	cancel()
	assert.NoError(t, <-done)
}
