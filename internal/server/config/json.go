package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/clipboardhistoryio/companion/internal/flagx"
	"github.com/clipboardhistoryio/companion/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations accept "10m" or
// integer nanoseconds. Absent fields keep their current value.
type JsonConfig struct {
	EndpointAddrGRPC             *string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP             *string         `json:"endpoint_addr_http"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	SecretKey                    *string         `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	MagicCodeTTL                 *timex.Duration `json:"magic_code_ttl"`
	MagicCodeMaxAttempts         *int            `json:"magic_code_max_attempts"`
	MagicCodeSendLimit           *int            `json:"magic_code_send_limit"`
	MagicCodeSendWindow          *timex.Duration `json:"magic_code_send_window"`
	RedisAddr                    *string         `json:"redis_addr"`
	MailgunDomain                *string         `json:"mailgun_domain"`
	MailgunAPIKey                *string         `json:"mailgun_api_key"`
	MailSender                   *string         `json:"mail_sender"`
	StripeWebhookSecret          *string         `json:"stripe_webhook_secret"`
	LogLevel                     *string         `json:"log_level"`
	LogDev                       *bool           `json:"log_dev"`
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setDurationIf(dst *time.Duration, src *timex.Duration) {
	if src != nil {
		*dst = time.Duration(src.Duration)
	}
}

// parseJson overlays the file named by -c/-config, if any. Unreadable or
// invalid files panic.
func parseJson(config *Config) {
	path := flagx.ConfigPath()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setIf(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setIf(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.SecretKey, c.SecretKey)
	setDurationIf(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDurationIf(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setDurationIf(&config.MagicCodeTTL, c.MagicCodeTTL)
	setIf(&config.MagicCodeMaxAttempts, c.MagicCodeMaxAttempts)
	setIf(&config.MagicCodeSendLimit, c.MagicCodeSendLimit)
	setDurationIf(&config.MagicCodeSendWindow, c.MagicCodeSendWindow)
	setIf(&config.RedisAddr, c.RedisAddr)
	setIf(&config.MailgunDomain, c.MailgunDomain)
	setIf(&config.MailgunAPIKey, c.MailgunAPIKey)
	setIf(&config.MailSender, c.MailSender)
	setIf(&config.StripeWebhookSecret, c.StripeWebhookSecret)
	setIf(&config.LogLevel, c.LogLevel)
	setIf(&config.LogDev, c.LogDev)
}
