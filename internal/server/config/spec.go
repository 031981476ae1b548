package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/yndnr/dew-go/internal/storage"
	"github.com/yndnr/dew-go/internal/storage/snapshot"
)

// ServerConfig is the root configuration for dew-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server" json:"server"`
	Storage  StorageSection  `koanf:"storage" json:"storage"`
	Security SecuritySection `koanf:"security" json:"security"`
	Log      LogSection      `koanf:"log" json:"log"`
}

// ServerSection configures the HTTP endpoint.
type ServerSection struct {
	HTTP  HTTPConfig  `koanf:"http" json:"http"`
	Local LocalConfig `koanf:"local" json:"local"`

	// RateLimit is the per-client request rate in requests per second.
	// Zero disables rate limiting.
	RateLimit float64 `koanf:"rate_limit" json:"rate_limit"`

	// RateBurst is the number of requests a client may send at once.
	RateBurst int `koanf:"rate_burst" json:"rate_burst"`

	// CORSAllowedOrigins lists browser origins allowed to call the API.
	// Empty allows any origin, which the original web client relies on.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" json:"cors_allowed_origins"`

	// AuditLog writes one log line per request.
	AuditLog bool `koanf:"audit_log" json:"audit_log"`
}

// HTTPConfig configures the HTTP server.
// TLS is enabled when both files are set.
type HTTPConfig struct {
	Addr        string `koanf:"addr" json:"addr"`
	TLSCertFile string `koanf:"tls_cert_file" json:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file" json:"tls_key_file"`
}

// TLSEnabled reports whether a certificate pair is configured.
func (c HTTPConfig) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// LocalConfig configures the Unix socket endpoint.
// An empty SocketPath disables it.
type LocalConfig struct {
	SocketPath string `koanf:"socket_path" json:"socket_path"`
}

// StorageSection configures the snapshot file.
// SnapshotInterval reads a bare number as seconds.
type StorageSection struct {
	SnapshotPath     string        `koanf:"snapshot_path" json:"snapshot_path"`
	SnapshotInterval time.Duration `koanf:"snapshot_interval" json:"snapshot_interval"`
}

// SecuritySection configures snapshot encryption.
// EncryptionKey is hex encoded. Passphrase takes precedence when both are set.
type SecuritySection struct {
	EncryptionKey string `koanf:"encryption_key" json:"encryption_key"`
	Passphrase    string `koanf:"passphrase" json:"passphrase"`
	Cipher        string `koanf:"cipher" json:"cipher"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" json:"level"`
	Format string `koanf:"format" json:"format"`
}

// Encryption converts the security section into snapshot settings.
func (s SecuritySection) Encryption() (snapshot.EncryptionConfig, error) {
	enc := snapshot.EncryptionConfig{Algorithm: s.Cipher}
	if s.Passphrase != "" {
		enc.Passphrase = []byte(s.Passphrase)
		return enc, nil
	}
	if s.EncryptionKey != "" {
		key, err := hex.DecodeString(strings.TrimSpace(s.EncryptionKey))
		if err != nil {
			return enc, fmt.Errorf("security.encryption_key: not valid hex: %w", err)
		}
		enc.Key = key
	}
	return enc, nil
}

// EngineConfig builds the storage engine configuration.
// The logger is left for the caller to set.
func (c *ServerConfig) EngineConfig() (storage.Config, error) {
	enc, err := c.Security.Encryption()
	if err != nil {
		return storage.Config{}, err
	}

	cfg := storage.DefaultConfig(c.Storage.SnapshotPath)
	cfg.SnapshotInterval = c.Storage.SnapshotInterval
	cfg.Snapshot.Encryption = enc
	return cfg, nil
}
