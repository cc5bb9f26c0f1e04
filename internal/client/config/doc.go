// Package config loads runtime configuration for the companion CLI.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. CLIPBOARD_* environment variables, e.g. CLIPBOARD_BASE_URL.
//  3. Optional JSON file given with -c or -config.
//  4. Command-line flags.
//
// Flags
//
//	-a string    address:port of the backend gRPC endpoint
//	-i int       online status check interval (seconds)
//	-b string    base URL of the checkout site
//	-db string   path of the local SQLite store
//	-l string    log level
//	-no-browser  print the checkout URL instead of opening it
//
// # JSON schema
//
// Intervals use timex.Duration, so they can be strings like "3s" or integer
// nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "base_url": "https://clipboardhistory.io",
//	  "database_path": "companion.db",
//	  "open_browser": true
//	}
package config
