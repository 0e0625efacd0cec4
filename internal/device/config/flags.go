package config

import (
	"flag"
	"os"
	"time"

	"github.com/rbustosc/fieldsync/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   base URL of the sync backend
//	-b string   path of the local mirror database
//	-d string   device registration code
//	-f int      default field id (0 = none)
//	-w int      duplicate-scan window in seconds
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-b", "-d", "-f", "-w"})

	fs := flag.NewFlagSet("device", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the sync backend")
	fs.StringVar(&cfg.DatabasePath, "b", cfg.DatabasePath, "path of the local mirror database")
	fs.StringVar(&cfg.DeviceCode, "d", cfg.DeviceCode, "device registration code")
	fs.Int64Var(&cfg.DefaultFieldID, "f", cfg.DefaultFieldID, "default field id (0 = none)")
	window := fs.Int("w", int(cfg.SuppressionWindow.Seconds()), "duplicate-scan window (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SuppressionWindow = time.Duration(*window) * time.Second
}
