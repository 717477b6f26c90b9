package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
server_url: "wss://play.emberveil.net"
api_url: "https://api.emberveil.net"
token: "tok-123"
defaults:
  world_id: w1
  character_id: c1
  zone_id: z1
keep_alive: 45s
no_color: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "wss://play.emberveil.net", cfg.ServerURL)
	assert.Equal(t, "https://api.emberveil.net", cfg.APIURL)
	assert.Equal(t, "tok-123", cfg.Token)
	assert.Equal(t, "w1", cfg.Defaults.WorldID)
	assert.Equal(t, "c1", cfg.Defaults.CharacterID)
	assert.Equal(t, "z1", cfg.Defaults.ZoneID)
	assert.Equal(t, 45*time.Second, cfg.KeepAlive.Std())
	assert.True(t, cfg.NoColor)
	assert.False(t, cfg.Debug)
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/mudlark/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "ws://127.0.0.1:8600", cfg.ServerURL)
	assert.Equal(t, "http://127.0.0.1:8600", cfg.APIURL)
	assert.Empty(t, cfg.Token)
	assert.Equal(t, 20*time.Second, cfg.KeepAlive.Std())
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token: abc\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "abc", cfg.Token)
	// Unspecified fields keep their defaults.
	assert.Equal(t, "ws://127.0.0.1:8600", cfg.ServerURL)
	assert.Equal(t, 20*time.Second, cfg.KeepAlive.Std())
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":::not yaml"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDurationHumanForms(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"20s", 20 * time.Second},
		{"1m30s", 90 * time.Second},
		{"1h", time.Hour},
		{"1d", 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte("keep_alive: "+tt.raw+"\n"), 0o644))

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.KeepAlive.Std())
		})
	}
}

func TestDurationInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keep_alive: soon\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid duration")
}
