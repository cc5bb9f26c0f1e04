package config

import (
	"flag"
	"os"
	"time"

	"github.com/clipboardhistoryio/companion/internal/flagx"
)

var clientFlags = flagx.Set{
	Valued: []string{"-a", "-i", "-b", "-db", "-l"},
	Bool:   []string{"-no-browser"},
}

// parseFlags overlays command-line flags. os.Args is filtered first so flags
// owned by other parsers do not fail the parse.
func parseFlags(cfg *Config) {
	args := clientFlags.Filter(os.Args[1:])

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.BaseURL, "b", cfg.BaseURL, "base URL of the checkout site")
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	noBrowser := fs.Bool("no-browser", !cfg.OpenBrowser, "print the checkout URL instead of opening a browser")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// -i only overrides when passed so sub-second values from the
	// environment or JSON survive.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		}
	})
	cfg.OpenBrowser = !*noBrowser
}
