package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/clipboardhistoryio/companion/internal/flagx"
	"github.com/clipboardhistoryio/companion/internal/timex"
)

// JsonConfig is the JSON file layout. Absent fields keep their current value.
type JsonConfig struct {
	ServerEndpointAddr  *string         `json:"server_endpoint_addr"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	BaseURL             *string         `json:"base_url"`
	DatabasePath        *string         `json:"database_path"`
	OpenBrowser         *bool           `json:"open_browser"`
	LogLevel            *string         `json:"log_level"`
}

// parseJson overlays the file named by -c/-config, if any. Read and unmarshal
// errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigPath()
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

	if jc.ServerEndpointAddr != nil {
		cfg.ServerEndpointAddr = *jc.ServerEndpointAddr
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	if jc.BaseURL != nil {
		cfg.BaseURL = *jc.BaseURL
	}
	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.OpenBrowser != nil {
		cfg.OpenBrowser = *jc.OpenBrowser
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
}
