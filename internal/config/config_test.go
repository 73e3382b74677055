package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://acenet.aceservices.com/", cfg.Catalog.BaseURL)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 20*time.Second, cfg.Browser.LoginTimeout())
	assert.Equal(t, 30*time.Second, cfg.Browser.NavTimeout())
	assert.Equal(t, 5*time.Second, cfg.Browser.FrameTimeout())
	assert.Equal(t, 1000, cfg.Navigate.SettleMs)
	assert.Equal(t, 10000, cfg.Navigate.FirstSettleMs)
	assert.Equal(t, 2, cfg.Navigate.DiscoveryAttempts)
	assert.Equal(t, 3, cfg.Navigate.FirstDiscoveryAttempts)
	assert.Equal(t, 50, cfg.Run.MaxRestarts)
	assert.Equal(t, 1, cfg.Run.Sessions)
	assert.Equal(t, "PARTNUMBER", cfg.Input.Column)
	assert.Equal(t, "No Discovery Check", cfg.Output.Sheet)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
catalog:
  store_code: "16719"
  username: auditor
browser:
  headless: false
  login_timeout_secs: 5
run:
  max_restarts: 3
  sessions: 2
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "16719", cfg.Catalog.StoreCode)
	assert.Equal(t, "auditor", cfg.Catalog.Username)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 5*time.Second, cfg.Browser.LoginTimeout())
	assert.Equal(t, 3, cfg.Run.MaxRestarts)
	assert.Equal(t, 2, cfg.Run.Sessions)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("CATALOG_AUDIT_CATALOG_STORE_CODE", "18181")
	t.Setenv("CATALOG_AUDIT_RUN_MAX_RESTARTS", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "18181", cfg.Catalog.StoreCode)
	assert.Equal(t, 7, cfg.Run.MaxRestarts)
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}

func TestInitLogger_Console(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
}
