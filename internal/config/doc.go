// Package config provides configuration management for the devops API.
//
// Configuration is loaded once from environment variables using the env package
// and is treated as immutable for the lifetime of the process.
// All configuration values have sensible defaults for development use.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("HTTP server will listen on %s\n", cfg.GetHTTPAddr())
package config
