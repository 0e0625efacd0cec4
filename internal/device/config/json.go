package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rbustosc/fieldsync/internal/flagx"
	"github.com/rbustosc/fieldsync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "90s"
// or as integer nanoseconds.
type JsonConfig struct {
	ServerBaseURL     string         `json:"server_base_url"`
	DatabasePath      string         `json:"database_path"`
	DeviceCode        string         `json:"device_code"`
	DefaultFieldID    int64          `json:"default_field_id"`
	SuppressionWindow timex.Duration `json:"suppression_window"`
}

// parseJson overlays Config with values loaded from a JSON file named via
// the -c or -config flags. Absent file path means no overlay. Read or
// unmarshal errors panic; intended usage is defaults -> parseJson ->
// parseFlags, where later stages override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.DeviceCode != "" {
		cfg.DeviceCode = jc.DeviceCode
	}
	if jc.DefaultFieldID != 0 {
		cfg.DefaultFieldID = jc.DefaultFieldID
	}
	if jc.SuppressionWindow.Duration != 0 {
		cfg.SuppressionWindow = time.Duration(jc.SuppressionWindow.Duration)
	}
}
