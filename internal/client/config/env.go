package config

import (
	"github.com/spf13/viper"
)

const envPrefix = "CLIPBOARD"

// parseEnv overlays values from CLIPBOARD_* environment variables that are set.
func parseEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if v.IsSet("server_endpoint_addr") {
		cfg.ServerEndpointAddr = v.GetString("server_endpoint_addr")
	}
	if v.IsSet("online_check_interval") {
		cfg.OnlineCheckInterval = v.GetDuration("online_check_interval")
	}
	if v.IsSet("base_url") {
		cfg.BaseURL = v.GetString("base_url")
	}
	if v.IsSet("database_path") {
		cfg.DatabasePath = v.GetString("database_path")
	}
	if v.IsSet("open_browser") {
		cfg.OpenBrowser = v.GetBool("open_browser")
	}
	if v.IsSet("log_level") {
		cfg.LogLevel = v.GetString("log_level")
	}
}
