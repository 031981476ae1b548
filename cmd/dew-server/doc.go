// Package main provides the entry point for dew-server.
//
// dew-server keeps todos in memory, snapshots them to a single JSON file
// and serves them over HTTP:
//
//   - /api/v1: list, create, status and title updates, clear completed,
//     and the generation counter clients poll
//   - /admin/v1: on-demand snapshot and status report
//   - /health, /ready and /metrics
//
// Usage:
//
//	dew-server [flags]
//	dew-server --config /etc/dew/server.yaml
//
// Every setting can also come from DEW_* environment variables, for
// example DEW_SERVER_HTTP_ADDR or DEW_STORAGE_SNAPSHOT_PATH.
package main
