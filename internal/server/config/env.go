package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with environment variables, loading a .env file
// first when one is present. Deployment environments set these instead of
// flags:
//
//	FIELDSYNC_ENDPOINT_ADDR
//	FIELDSYNC_DATABASE_DSN
//	FIELDSYNC_SECRET_KEY
//	FIELDSYNC_TOKEN_VALIDITY   (Go duration string, e.g. "12h")
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("FIELDSYNC_ENDPOINT_ADDR"); v != "" {
		config.EndpointAddr = v
	}
	if v := os.Getenv("FIELDSYNC_DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("FIELDSYNC_SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("FIELDSYNC_TOKEN_VALIDITY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.TokenValidityDuration = d
		}
	}
}
