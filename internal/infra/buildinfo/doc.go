// Package buildinfo provides build information for dew-server and dew-cli.
//
// Version, Commit and BuildTime are injected with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/dew-go/internal/infra/buildinfo.Version=v1.0.0"
//
// When a binary is built without them, the commit and time recorded by the
// Go toolchain's VCS stamping are used instead.
package buildinfo
