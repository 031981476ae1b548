package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/yndnr/dew-go/internal/storage"
	"github.com/yndnr/dew-go/internal/storage/snapshot"
)

// Verify validates the configuration.
// All problems are reported together.
func Verify(cfg *ServerConfig) error {
	return errors.Join(
		verifyServer(&cfg.Server),
		verifyStorage(&cfg.Storage),
		verifySecurity(&cfg.Security),
		verifyLog(&cfg.Log),
	)
}

func verifyServer(cfg *ServerSection) error {
	var errs []error

	if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
		errs = append(errs, fmt.Errorf("server.http.addr: %w", err))
	}
	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		errs = append(errs, errors.New("server.http: tls_cert_file and tls_key_file must be set together"))
	}
	if len(cfg.Local.SocketPath) > maxSocketPath {
		errs = append(errs, fmt.Errorf("server.local.socket_path: longer than %d bytes", maxSocketPath))
	}
	for _, origin := range cfg.CORSAllowedOrigins {
		if err := verifyOrigin(origin); err != nil {
			errs = append(errs, fmt.Errorf("server.cors_allowed_origins: %w", err))
		}
	}
	if cfg.RateLimit < 0 {
		errs = append(errs, errors.New("server.rate_limit must not be negative"))
	}
	if cfg.RateLimit > 0 && cfg.RateBurst < 1 {
		errs = append(errs, errors.New("server.rate_burst must be at least 1 when rate_limit is set"))
	}
	return errors.Join(errs...)
}

// maxSocketPath is the smallest sun_path limit among supported platforms.
const maxSocketPath = 103

func verifyOrigin(origin string) error {
	if origin == "*" {
		return nil
	}
	u, err := url.Parse(origin)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" || (u.Path != "" && u.Path != "/") {
		return fmt.Errorf("%q is not an origin (want scheme://host[:port])", origin)
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	var errs []error

	if strings.TrimSpace(cfg.SnapshotPath) == "" {
		errs = append(errs, errors.New("storage.snapshot_path is required"))
	}
	if cfg.SnapshotInterval < storage.MinSnapshotInterval {
		errs = append(errs, fmt.Errorf("storage.snapshot_interval must be at least %s", storage.MinSnapshotInterval))
	}
	return errors.Join(errs...)
}

func verifySecurity(cfg *SecuritySection) error {
	enc, err := cfg.Encryption()
	if err != nil {
		return err
	}
	if err := snapshot.ValidateConfig(enc); err != nil {
		return fmt.Errorf("security: %w", err)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format: unknown format %q", cfg.Format)
	}
	return nil
}
