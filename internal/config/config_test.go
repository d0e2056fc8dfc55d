package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aerrors "github.com/matzehuels/busarchive/pkg/errors"
	"github.com/matzehuels/busarchive/pkg/store"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))

	cfg, err := Load(Options{EnvFile: filepath.Join(dir, "missing.env"), LookupEnv: noEnv})
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, BackendFile, cfg.Store.Backend)
	assert.Equal(t, filepath.Join(dir, "data", "busarchive", "archives"), cfg.Store.Dir)
	ttl, err := cfg.Store.TTLDuration()
	require.NoError(t, err)
	assert.Zero(t, ttl)
}

func TestLoadLayers(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", `
log_level = "warn"
metrics_file = "/tmp/file.prom"

[store]
backend = "redis"
ttl = "72h"

[store.redis]
addr = "cache:6379"
db = 2
`)
	envFile := writeFile(t, dir, ".env", "BUSARCHIVE_LOG_LEVEL=error\nBUSARCHIVE_REDIS_ADDR=dotenv:6379\n")

	cfg, err := Load(Options{
		Path:      path,
		EnvFile:   envFile,
		LookupEnv: envMap(map[string]string{"BUSARCHIVE_REDIS_ADDR": "env:6379"}),
	})
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.LogLevel, "dotenv overrides the file")
	assert.Equal(t, "env:6379", cfg.Store.Redis.Addr, "environment overrides dotenv")
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "/tmp/file.prom", cfg.MetricsFile)

	ttl, err := cfg.Store.TTLDuration()
	require.NoError(t, err)
	assert.Equal(t, 72*time.Hour, ttl)

	assert.Equal(t, "archives", cfg.Store.Mongo.Collection, "unset fields keep defaults")
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	missingEnv := filepath.Join(dir, "missing.env")

	tests := []struct {
		name string
		toml string
		env  map[string]string
		code aerrors.Code
	}{
		{"syntax", "log_level = ", nil, aerrors.ErrCodeInvalidInput},
		{"unknown key", "colour = \"blue\"\n", nil, aerrors.ErrCodeInvalidInput},
		{"bad level", "log_level = \"loud\"\n", nil, aerrors.ErrCodeInvalidInput},
		{"bad backend", "[store]\nbackend = \"s3\"\n", nil, aerrors.ErrCodeInvalidInput},
		{"bad ttl", "[store]\nttl = \"soon\"\n", nil, aerrors.ErrCodeInvalidInput},
		{"bad redis db", "", map[string]string{"BUSARCHIVE_REDIS_DB": "x"}, aerrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.toml", tt.toml)
			_, err := Load(Options{Path: path, EnvFile: missingEnv, LookupEnv: envMap(tt.env)})
			require.Error(t, err)
			assert.Equal(t, tt.code, aerrors.GetCode(err), "error: %v", err)
		})
	}

	_, err := Load(Options{Path: filepath.Join(dir, "nope.toml"), EnvFile: missingEnv, LookupEnv: noEnv})
	assert.Equal(t, aerrors.ErrCodeNotFound, aerrors.GetCode(err))
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	cfg := Default()
	cfg.Store.Dir = t.TempDir()
	st, err := cfg.OpenStore(ctx)
	require.NoError(t, err)
	defer st.Close()
	assert.IsType(t, &store.FileStore{}, st)

	cfg.Store.Backend = BackendNone
	st, err = cfg.OpenStore(ctx)
	require.NoError(t, err)
	assert.IsType(t, &store.NullStore{}, st)
}
