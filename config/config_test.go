package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.HTTP.Port)
	assert.Equal(t, "decision_tree", cfg.Model.Type)
	assert.Equal(t, 0.5, cfg.Model.Threshold)
	assert.Equal(t, 1024, cfg.Cache.Size)
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
http:
  port: 9090
  timeout: 5s
log:
  level: debug
  format: json
model:
  type: onnx
  path: /srv/model.onnx
  schema_path: /srv/feature_order.json
  labels: [Occupied, Vacant]
  threshold: 0.6
cache:
  size: 0
`)
	t.Setenv("OCCUPANCY_HTTP_PORT", "9191")
	t.Setenv("OCCUPANCY_MODEL_THRESHOLD", "0.7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "onnx", cfg.Model.Type)
	assert.Equal(t, []string{"Occupied", "Vacant"}, cfg.Model.Labels)
	assert.Equal(t, 0.7, cfg.Model.Threshold)
	assert.Equal(t, 0, cfg.Cache.Size)
	assert.Equal(t, int64(1<<20), cfg.HTTP.MaxBodyBytes)
}

func TestLoadIgnoresUnprefixedEnv(t *testing.T) {
	t.Setenv("PATH", "/usr/bin:/bin")
	t.Setenv("PORT", "3000")
	t.Setenv("LEVEL", "trace")
	t.Setenv("TYPE", "svm")
	t.Setenv("SIZE", "-1")
	t.Setenv("DIR", "/tmp/pages")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "artifacts/model.json", cfg.Model.Path)
	assert.Equal(t, 8000, cfg.HTTP.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "decision_tree", cfg.Model.Type)
	assert.Equal(t, 1024, cfg.Cache.Size)
	assert.Empty(t, cfg.Templates.Dir)
}

func TestLoadSplitWordEnvNames(t *testing.T) {
	t.Setenv("OCCUPANCY_MODEL_SCHEMA_PATH", "/srv/order.json")
	t.Setenv("OCCUPANCY_HTTP_MAX_BODY_BYTES", "4096")
	t.Setenv("OCCUPANCY_LOG_MAX_SIZE_MB", "7")
	t.Setenv("OCCUPANCY_HTTP_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/srv/order.json", cfg.Model.SchemaPath)
	assert.Equal(t, int64(4096), cfg.HTTP.MaxBodyBytes)
	assert.Equal(t, 7, cfg.Log.MaxSizeMB)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "open config")

	_, err = Load(writeConfig(t, "http: [not, a, map]"))
	assert.ErrorContains(t, err, "decode config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "port", mutate: func(c *Config) { c.HTTP.Port = 70000 }, want: "http.port"},
		{name: "threshold zero", mutate: func(c *Config) { c.Model.Threshold = 0 }, want: "model.threshold"},
		{name: "threshold above one", mutate: func(c *Config) { c.Model.Threshold = 1.01 }, want: "model.threshold"},
		{name: "model type", mutate: func(c *Config) { c.Model.Type = "svm" }, want: "model.type"},
		{name: "onnx labels", mutate: func(c *Config) { c.Model.Type = "onnx" }, want: "model.labels"},
		{name: "log level", mutate: func(c *Config) { c.Log.Level = "trace" }, want: "log.level"},
		{name: "reload without dir", mutate: func(c *Config) { c.Templates.Reload = true }, want: "templates.reload"},
		{name: "schema path", mutate: func(c *Config) { c.Model.SchemaPath = "" }, want: "model.schema_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}

	assert.NoError(t, Default().Validate())
}
