package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigRoundTrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config", "config.json")

	saved := DefaultConfig()
	saved.UI.WindowWidth = 1024
	saved.Log.Level = "debug"
	require.NoError(t, SaveConfig(configPath, saved))

	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, 1024, loaded.UI.WindowWidth)
	assert.Equal(t, "debug", loaded.Log.Level)
	// DB path is expanded to an absolute path on load
	assert.True(t, filepath.IsAbs(loaded.Data.DBPath))
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", parseLevel("debug").String())
	assert.Equal(t, "warn", parseLevel("warn").String())
	// Unknown levels fall back to info
	assert.Equal(t, "info", parseLevel("loud").String())
}
