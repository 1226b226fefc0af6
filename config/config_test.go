package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
env:
  env: test
  serviceName: waypoint
  log:
    level: debug
    pretty: true
http:
  port: 8080
location:
  cacheTtl: 5m
  resolveTimeout: 15s
  permissionCooldown: 30s
  useFallback: true
  fallbackCity:
    name: Yaoundé
    region: Centre
    latitude: 3.8480
    longitude: 11.5021
notification:
  enabled: true
  historyLimit: 100
storage:
  bucket: mem://
`

func writeTestConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(testYAML), 0o600))
	t.Chdir(dir)
}

func TestLoadWithEnv_ReadsYAML(t *testing.T) {
	writeTestConfig(t)

	cfg, err := LoadWithEnv[Config]("config")
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Env.Env)
	assert.Equal(t, "debug", cfg.Env.Log.Level)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	require.NotNil(t, cfg.Location)
	assert.Equal(t, 5*time.Minute, cfg.Location.CacheTTL)
	assert.Equal(t, 15*time.Second, cfg.Location.ResolveTimeout)
	assert.Equal(t, "Yaoundé", cfg.Location.FallbackCity.Name)
	assert.Equal(t, 3.8480, cfg.Location.FallbackCity.Latitude)
	assert.Equal(t, "mem://", cfg.Storage.Bucket)
}

func TestLoadWithEnv_EnvOverridesFile(t *testing.T) {
	writeTestConfig(t)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("ENV_LOG_LEVEL", "warn")

	cfg, err := LoadWithEnv[Config]("config")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "warn", cfg.Env.Log.Level)
}

func TestLoadWithEnv_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadWithEnv[Config]("config")
	assert.ErrorContains(t, err, "not found")
}

func TestApplyDefaults_FillsMissingSections(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	require.NotNil(t, cfg.Location)
	assert.Equal(t, DefaultCacheTTL, cfg.Location.CacheTTL)
	assert.Equal(t, DefaultResolveTimeout, cfg.Location.ResolveTimeout)
	assert.Equal(t, DefaultPermissionCooldown, cfg.Location.PermissionCooldown)
	require.NotNil(t, cfg.Notification)
	assert.True(t, cfg.Notification.Enabled)
	assert.Equal(t, DefaultHistoryLimit, cfg.Notification.HistoryLimit)
	assert.Equal(t, "mem://", cfg.Storage.Bucket)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		Location: &LocationConfig{
			CacheTTL:           time.Minute,
			ResolveTimeout:     5 * time.Second,
			PermissionCooldown: 10 * time.Second,
		},
		Notification: &NotificationConfig{Enabled: false, HistoryLimit: 10},
		Storage:      StorageConfig{Bucket: "file:///tmp/waypoint"},
	}
	applyDefaults(cfg)

	assert.Equal(t, time.Minute, cfg.Location.CacheTTL)
	assert.Equal(t, 10, cfg.Notification.HistoryLimit)
	assert.False(t, cfg.Notification.Enabled)
	assert.Equal(t, "file:///tmp/waypoint", cfg.Storage.Bucket)
}
