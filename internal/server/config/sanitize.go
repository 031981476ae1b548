package config

import "github.com/yndnr/dew-go/internal/telemetry/logger"

// Sanitize returns a copy of the config with sensitive fields masked.
// It is safe to log or return from the admin API.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg
	sanitized.Security.EncryptionKey = logger.RedactString(cfg.Security.EncryptionKey)
	sanitized.Security.Passphrase = logger.RedactString(cfg.Security.Passphrase)
	return &sanitized
}
