// Package config provides the dew-server configuration.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default values
//   - verify.go: validation run before the engine is built
//   - sanitize.go: redacted copy for logs and /admin/v1/status
//
// Configuration is loaded via internal/infra/confloader from a yaml file
// and DEW_ environment variables.
package config
