package config

import (
	"flag"
	"os"

	"usermgmt/internal/flagx"
)

// parseFlags overlays selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-e string   application environment (dev, testing, ...)
//
// os.Args is filtered to the flags handled here so that test binaries
// and other components can carry their own flags.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTP.Addr, "a", config.HTTP.Addr, "address and port to run server")
	fs.StringVar(&config.PG.DSN, "d", config.PG.DSN, "database DSN")
	fs.StringVar(&config.JWT.Secret, "s", config.JWT.Secret, "JWT secret key")
	fs.StringVar(&config.Env, "e", config.Env, "application environment")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
