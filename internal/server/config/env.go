package config

import (
	"github.com/spf13/viper"
)

const envPrefix = "CLIPBOARD_SERVER"

// parseEnv overlays values from CLIPBOARD_SERVER_* environment variables.
// Only variables that are present override the current value.
func parseEnv(config *Config) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	str("endpoint_addr_grpc", &config.EndpointAddrGRPC)
	str("endpoint_addr_http", &config.EndpointAddrHTTP)
	str("database_dsn", &config.DatabaseDSN)
	str("secret_key", &config.SecretKey)
	str("redis_addr", &config.RedisAddr)
	str("mailgun_domain", &config.MailgunDomain)
	str("mailgun_api_key", &config.MailgunAPIKey)
	str("mail_sender", &config.MailSender)
	str("stripe_webhook_secret", &config.StripeWebhookSecret)
	str("log_level", &config.LogLevel)

	if v.IsSet("access_token_validity_duration") {
		config.AccessTokenValidityDuration = v.GetDuration("access_token_validity_duration")
	}
	if v.IsSet("refresh_token_validity_duration") {
		config.RefreshTokenValidityDuration = v.GetDuration("refresh_token_validity_duration")
	}
	if v.IsSet("magic_code_ttl") {
		config.MagicCodeTTL = v.GetDuration("magic_code_ttl")
	}
	if v.IsSet("magic_code_send_window") {
		config.MagicCodeSendWindow = v.GetDuration("magic_code_send_window")
	}
	if v.IsSet("magic_code_max_attempts") {
		config.MagicCodeMaxAttempts = v.GetInt("magic_code_max_attempts")
	}
	if v.IsSet("magic_code_send_limit") {
		config.MagicCodeSendLimit = v.GetInt("magic_code_send_limit")
	}
	if v.IsSet("log_dev") {
		config.LogDev = v.GetBool("log_dev")
	}
}
