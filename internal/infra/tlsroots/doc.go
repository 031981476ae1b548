// Package tlsroots provides TLS certificate handling for dew-server and dew-cli.
//
//   - roots.go: trusted roots for the CLI (system pool plus a custom CA)
//   - watcher.go: server certificate hot-reload via fsnotify
//
// The server hands Watcher.GetCertificate to its tls.Config so a rotated
// certificate is picked up on the next handshake without a restart.
package tlsroots
