package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/isqad/livelook-grid/internal/core"
	"github.com/isqad/livelook-grid/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	conf, err := Load(New(), "")
	require.Nil(t, err)

	assert.Equal(t, core.DevelopmentEnv, conf.Environment())
	assert.Equal(t, RedisBackend, conf.Bus.Backend)
	assert.Equal(t, layout.DefaultChrome, conf.Layout.Chrome())
	assert.Equal(t, layout.DefaultWindowSize, conf.Layout.WindowSize)
	assert.Equal(t, 100*time.Millisecond, conf.Layout.ResizeDebounce)
	assert.Equal(t, 24*time.Hour, conf.Redis.StateTTL)

	engineConf := conf.Layout.Engine()
	assert.Equal(t, layout.DefaultRowGap, engineConf.RowGap)
	assert.Equal(t, layout.DefaultSpeakerBorder, engineConf.SpeakerBorder)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yml")
	yml := []byte(`
env: production
bus:
  backend: nats
layout:
  window_size: 6
  chrome:
    side_rail: 240
  resize_debounce: 250ms
`)
	require.Nil(t, os.WriteFile(path, yml, 0o600))
	t.Setenv("LIVELOOK_REDIS_ADDR", "redis:6380")

	conf, err := Load(New(), path)
	require.Nil(t, err)

	assert.Equal(t, core.ProductionEnv, conf.Environment())
	assert.Equal(t, NatsBackend, conf.Bus.Backend)
	assert.Equal(t, 6, conf.Layout.WindowSize)
	assert.Equal(t, 240.0, conf.Layout.Chrome().SideRail)
	assert.Equal(t, 92.0, conf.Layout.Chrome().Normal)
	assert.Equal(t, 250*time.Millisecond, conf.Layout.ResizeDebounce)
	assert.Equal(t, "redis:6380", conf.Redis.Addr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yml"))
	assert.NotNil(t, err)
}

func TestValidate(t *testing.T) {
	v := New()
	v.Set("bus.backend", "kafka")
	_, err := Load(v, "")
	assert.Equal(t, errUnknownBusBackend, err)

	v = New()
	v.Set("layout.window_size", 0)
	_, err = Load(v, "")
	assert.Equal(t, errWindowSize, err)

	v = New()
	v.Set("layout.chrome.normal", -1)
	_, err = Load(v, "")
	assert.Equal(t, errChrome, err)

	v = New()
	v.Set("env", "staging")
	_, err = Load(v, "")
	assert.NotNil(t, err)
}
