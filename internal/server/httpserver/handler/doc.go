// Package handler provides the HTTP handlers for dew-server.
//
//   - todo.go: /api/v1/todos and /api/v1/generation
//   - admin.go: on-demand snapshot and server status
//   - health.go: liveness and readiness checks
//
// Todo routes answer with raw JSON bodies (a todo, an array of todos, a
// bare generation number) so existing clients can decode them directly.
// Errors always use the Response envelope and set X-Error-Code.
package handler
