// Package config handles configuration for the field-device client,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the device client.
//
// Fields:
//   - ServerBaseURL: base URL of the sync backend.
//   - DatabasePath: path of the local mirror SQLite file.
//   - DeviceCode: this device's registration code.
//   - DefaultFieldID: the operator's default field, passed to attendance
//     capture at construction; 0 means none.
//   - SuppressionWindow: the duplicate-scan window.
type Config struct {
	ServerBaseURL     string
	DatabasePath      string
	DeviceCode        string
	DefaultFieldID    int64
	SuppressionWindow time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.DatabasePath = "fieldsync.db"
	c.DeviceCode = ""
	c.DefaultFieldID = 0
	c.SuppressionWindow = 90 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
