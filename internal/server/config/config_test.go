package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rbustosc/fieldsync/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8080", cfg.EndpointAddr)
	assert.Equal(t, "secretKey", cfg.SecretKey)
	assert.Equal(t, 12*time.Hour, cfg.TokenValidityDuration)
	assert.Contains(t, cfg.DatabaseDSN, "postgres://")
}

func TestParseJson_Overlay(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "conf.json")
	raw, err := json.Marshal(JsonConfig{
		EndpointAddr:          ":9090",
		SecretKey:             "json-secret",
		TokenValidityDuration: timex.Duration{Duration: time.Hour},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(file, raw, 0o600))

	oldArgs := os.Args
	os.Args = []string{"server", "-c", file}
	t.Cleanup(func() { os.Args = oldArgs })

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, ":9090", cfg.EndpointAddr)
	assert.Equal(t, "json-secret", cfg.SecretKey)
	assert.Equal(t, time.Hour, cfg.TokenValidityDuration)
	// Untouched fields keep their defaults.
	assert.Contains(t, cfg.DatabaseDSN, "postgres://")
}

func TestParseFlags_Overlay(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"server", "-a", ":7070", "-t", "30"}
	t.Cleanup(func() { os.Args = oldArgs })

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":7070", cfg.EndpointAddr)
	assert.Equal(t, 30*time.Minute, cfg.TokenValidityDuration)
}

func TestParseEnv_Overlay(t *testing.T) {
	t.Setenv("FIELDSYNC_ENDPOINT_ADDR", ":6060")
	t.Setenv("FIELDSYNC_TOKEN_VALIDITY", "45m")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, ":6060", cfg.EndpointAddr)
	assert.Equal(t, 45*time.Minute, cfg.TokenValidityDuration)
	assert.Equal(t, "secretKey", cfg.SecretKey)
}
