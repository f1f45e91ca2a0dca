package config

import (
	"flag"
	"os"
	"time"

	"github.com/ADevelopere/storagegate/internal/flagx"
)

// parseFlags overlays selected settings from the command line.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-d string   PostgreSQL DSN
//	-b string   storage backend ("local" or "s3")
//	-r string   local storage root directory
//	-s string   JWT secret for protected downloads
//	-k string   shared secret for the cron cleanup endpoint
//	-i int      cleanup interval in minutes (0 disables the loop)
//
// Arguments are pre-filtered with flagx.FilterArgs so flags owned by other
// packages (like -c/-config) do not trip the parser.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-b", "-r", "-s", "-k", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.StorageBackend, "b", config.StorageBackend, "storage backend (local|s3)")
	fs.StringVar(&config.StorageRoot, "r", config.StorageRoot, "local storage root")
	fs.StringVar(&config.JWTSecret, "s", config.JWTSecret, "JWT secret")
	fs.StringVar(&config.CronSecret, "k", config.CronSecret, "cron cleanup shared secret")

	cleanupMinutes := fs.Int("i", int(config.CleanupInterval.Minutes()), "cleanup interval (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only overwrite the interval when -i was actually given; the int
	// round-trip would otherwise truncate sub-minute values set by
	// earlier layers.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			config.CleanupInterval = time.Duration(*cleanupMinutes) * time.Minute
		}
	})
}
