package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BIGYEAR_CONFIG_PATH", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "bigyear.db", cfg.DB.Path)
	require.Equal(t, 2*time.Second, cfg.Sync.Debounce)
	require.Equal(t, "stdio", cfg.MCP.Mode)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)
	require.False(t, cfg.Store.AllowUserDataReset)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bigyear.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db:
  path: /data/app.db
assets:
  base_url: https://assets.example
  week_stat_cache_ttl: 10m
  s3:
    bucket: ref-data
sync:
  base_url: https://sync.example
  debounce: 500ms
log:
  level: debug
`), 0o600))

	t.Setenv("BIGYEAR_CONFIG_PATH", path)
	t.Setenv("BIGYEAR_LOG_LEVEL", "warn")
	t.Setenv("BIGYEAR_SERVER_PORT", "9000")
	t.Setenv("BIGYEAR_STORE_ALLOW_USER_DATA_RESET", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "/data/app.db", cfg.DB.Path)
	require.Equal(t, "https://assets.example", cfg.Assets.BaseURL)
	require.Equal(t, 10*time.Minute, cfg.Assets.WeekStatCacheTTL)
	require.Equal(t, 30*time.Second, cfg.Assets.Timeout, "unset fields keep defaults")
	require.Equal(t, "ref-data", cfg.Assets.S3.Bucket)
	require.Equal(t, 500*time.Millisecond, cfg.Sync.Debounce)
	require.Equal(t, "warn", cfg.Log.Level)
	require.Equal(t, 9000, cfg.Server.Port)
	require.True(t, cfg.Store.AllowUserDataReset)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoad_ExplicitPathWins(t *testing.T) {
	dir := t.TempDir()
	explicit := filepath.Join(dir, "explicit.yaml")
	require.NoError(t, os.WriteFile(explicit, []byte("db:\n  path: explicit.db\n"), 0o600))

	t.Setenv("BIGYEAR_CONFIG_PATH", filepath.Join(dir, "missing.yaml"))
	cfg, err := Load(explicit)
	require.NoError(t, err)
	require.Equal(t, "explicit.db", cfg.DB.Path)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("BIGYEAR_CONFIG_PATH", "")

	t.Setenv("BIGYEAR_MCP_PORT", "eighty")
	_, err := Load("")
	require.ErrorContains(t, err, "BIGYEAR_MCP_PORT")

	t.Setenv("BIGYEAR_MCP_PORT", "")
	t.Setenv("BIGYEAR_SYNC_DEBOUNCE", "soon")
	_, err = Load("")
	require.ErrorContains(t, err, "BIGYEAR_SYNC_DEBOUNCE")

	_, err = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorContains(t, err, "read config file")
}
