package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Database.Path)
	assert.Equal(t, "v2", cfg.Cache.Version)
	assert.Contains(t, cfg.Cache.Precache, "/manifest.json")
	assert.Equal(t, 12*time.Hour, cfg.Notify.WakeInterval)
	assert.Equal(t, "default", cfg.Notify.Permission)
}

func TestWakeIntervalFloor(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("notify.wake_interval", time.Minute)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 12*time.Hour, cfg.Notify.WakeInterval)
}

func TestInvalidPermissionRejected(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("notify.permission", "maybe")

	_, err := Load(v)
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "data"), ExpandPath("~/data"))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, "", ExpandPath(""))

	t.Setenv("HIVELY_TEST_DIR", "/tmp/hively")
	assert.Equal(t, "/tmp/hively/db", ExpandPath("$HIVELY_TEST_DIR/db"))
}
